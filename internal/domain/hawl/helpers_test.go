package hawl

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
)

var testUser = uuid.MustParse("7f1d3c2a-5b6e-4f80-9a1b-2c3d4e5f6a7b")

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func snapshotAt(when time.Time, wealth string, met bool) *entity.AssetSnapshot {
	return &entity.AssetSnapshot{
		ID:           uuid.New(),
		UserID:       testUser,
		TotalWealth:  dec(wealth),
		NisabMet:     met,
		Currency:     "BDT",
		SnapshotDate: when,
		CreatedAt:    when,
	}
}

func trackingFrom(start time.Time) *entity.HawlCycle {
	return entity.NewHawlCycle(testUser, uuid.New(), start, "BDT", start)
}

func dueCycle(zakat string) *entity.HawlCycle {
	c := trackingFrom(date(2023, time.January, 1))
	c.Status = entity.HawlStatusDue
	c.ZakatAmount = decimal.NewNullDecimal(dec(zakat))
	return c
}
