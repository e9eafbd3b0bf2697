// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/zakat"
)

// DefaultCurrency is used when a snapshot does not name one.
const DefaultCurrency = "BDT"

// AssetSnapshot is a user's wealth at a point in time. TotalWealth,
// NisabThreshold and NisabMet are frozen when the snapshot is created.
type AssetSnapshot struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Breakdown zakat.Breakdown

	// Metal prices at capture time, per vori. Null when not supplied.
	GoldPricePerVori   decimal.NullDecimal
	SilverPricePerVori decimal.NullDecimal

	// Metal quantities in vori, for display only.
	GoldVori   decimal.NullDecimal
	SilverVori decimal.NullDecimal

	TotalWealth    decimal.Decimal
	NisabThreshold decimal.Decimal
	NisabMet       bool

	Currency     string
	Notes        *string
	SnapshotDate time.Time
	CreatedAt    time.Time
}

// NewAssetSnapshot creates a snapshot carrying the given assessment.
func NewAssetSnapshot(userID uuid.UUID, breakdown zakat.Breakdown, assessment zakat.Assessment, snapshotDate time.Time, currency string, now time.Time) *AssetSnapshot {
	if currency == "" {
		currency = DefaultCurrency
	}

	return &AssetSnapshot{
		ID:             uuid.New(),
		UserID:         userID,
		Breakdown:      breakdown,
		TotalWealth:    assessment.TotalWealth,
		NisabThreshold: assessment.Threshold,
		NisabMet:       assessment.NisabMet,
		Currency:       currency,
		SnapshotDate:   snapshotDate,
		CreatedAt:      now,
	}
}
