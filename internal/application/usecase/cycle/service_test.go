package cycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakat-tracker/backend/internal/application/adapter/adaptertest"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
)

var testUser = uuid.MustParse("9c0e1f2a-3b4c-4d5e-8f60-718293a4b5c6")

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func snapshotAt(on time.Time, wealth string, met bool) *entity.AssetSnapshot {
	return &entity.AssetSnapshot{
		ID:           uuid.New(),
		UserID:       testUser,
		TotalWealth:  dec(wealth),
		NisabMet:     met,
		Currency:     "BDT",
		SnapshotDate: on,
		CreatedAt:    on,
	}
}

func trackingFrom(start, created time.Time) *entity.HawlCycle {
	return entity.NewHawlCycle(testUser, uuid.New(), start, "BDT", created)
}

func dueFrom(start time.Time, zakat string) *entity.HawlCycle {
	c := trackingFrom(start, start)
	c.Status = entity.HawlStatusDue
	c.ZakatAmount = decimal.NewNullDecimal(dec(zakat))
	c.WealthAtDue = decimal.NewNullDecimal(dec(zakat).Mul(decimal.NewFromInt(40)))
	end := c.HawlDueDate
	c.EndDate = &end
	return c
}

func TestService_Sweep(t *testing.T) {
	now := date(2025, time.March, 1)
	store := adaptertest.NewStore()
	service := NewService(store.Cycles(), nil, 0, fixedClock(now))

	t.Run("no tracking cycle", func(t *testing.T) {
		kept, err := service.Sweep(context.Background(), testUser)
		require.NoError(t, err)
		assert.Nil(t, kept)
	})

	t.Run("keeps the newest", func(t *testing.T) {
		a := trackingFrom(date(2024, time.May, 1), now.Add(-2*time.Hour))
		b := trackingFrom(date(2024, time.June, 1), now.Add(-time.Hour))
		c := trackingFrom(date(2024, time.July, 1), now)
		store.PutCycle(a)
		store.PutCycle(b)
		store.PutCycle(c)

		kept, err := service.Sweep(context.Background(), testUser)
		require.NoError(t, err)
		require.NotNil(t, kept)
		assert.Equal(t, c.ID, kept.ID)

		tracking, err := store.Cycles().ListTracking(context.Background(), testUser)
		require.NoError(t, err)
		require.Len(t, tracking, 1)
		assert.Equal(t, c.ID, tracking[0].ID)

		for _, id := range []uuid.UUID{a.ID, b.ID} {
			swept, err := store.Cycles().FindByID(context.Background(), testUser, id)
			require.NoError(t, err)
			assert.Equal(t, entity.HawlStatusReset, swept.Status)
			assert.Nil(t, swept.ResetSnapshotID)
		}
	})
}

func TestService_ContinuationDate(t *testing.T) {
	ctx := context.Background()

	t.Run("no closed cycle", func(t *testing.T) {
		store := adaptertest.NewStore()
		from, err := NewService(store.Cycles(), nil, 0, nil).ContinuationDate(ctx, testUser)
		require.NoError(t, err)
		assert.Nil(t, from)
	})

	t.Run("latest closed cycle unpaid", func(t *testing.T) {
		store := adaptertest.NewStore()
		old := dueFrom(date(2022, time.January, 1), "100")
		last := dueFrom(date(2023, time.January, 1), "100")
		store.PutCycle(last)
		store.PutCycle(old)

		from, err := NewService(store.Cycles(), nil, 0, nil).ContinuationDate(ctx, testUser)
		require.NoError(t, err)
		require.NotNil(t, from)
		assert.Equal(t, last.HawlDueDate, *from)
	})

	t.Run("latest closed cycle reset", func(t *testing.T) {
		store := adaptertest.NewStore()
		store.PutCycle(dueFrom(date(2022, time.January, 1), "100"))
		reset := trackingFrom(date(2023, time.January, 1), date(2023, time.January, 1))
		reset.Status = entity.HawlStatusReset
		store.PutCycle(reset)

		from, err := NewService(store.Cycles(), nil, 0, nil).ContinuationDate(ctx, testUser)
		require.NoError(t, err)
		assert.Nil(t, from)
	})

	t.Run("latest closed cycle paid", func(t *testing.T) {
		store := adaptertest.NewStore()
		store.PutCycle(dueFrom(date(2022, time.January, 1), "100"))
		paid := dueFrom(date(2023, time.January, 1), "100")
		paid.Status = entity.HawlStatusPaid
		store.PutCycle(paid)

		from, err := NewService(store.Cycles(), nil, 0, nil).ContinuationDate(ctx, testUser)
		require.NoError(t, err)
		assert.Nil(t, from)
	})
}

func TestService_Open(t *testing.T) {
	ctx := context.Background()
	store := adaptertest.NewStore()
	service := NewService(store.Cycles(), nil, 0, nil)

	first := trackingFrom(date(2024, time.December, 13), date(2024, time.December, 13))
	opened, reused, err := service.Open(ctx, first)
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, first.ID, opened.ID)

	second := trackingFrom(date(2025, time.January, 1), date(2025, time.January, 1))
	opened, reused, err = service.Open(ctx, second)
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, first.ID, opened.ID)
	assert.Len(t, store.AllCycles(testUser), 1)
}

func TestService_CatchUp(t *testing.T) {
	ctx := context.Background()
	now := date(2025, time.March, 1)

	t.Run("one due cycle per elapsed hawl", func(t *testing.T) {
		store := adaptertest.NewStore()
		emails := &adaptertest.EmailRecorder{}
		service := NewService(store.Cycles(), emails, 0, fixedClock(now))

		tracking := trackingFrom(date(2022, time.January, 1), date(2022, time.January, 1))
		store.PutCycle(tracking)
		latest := snapshotAt(date(2022, time.January, 1), "200000", true)

		result, err := service.CatchUp(ctx, tracking, latest, now, Recipient{Email: "amina@example.com", Name: "Amina"})
		require.NoError(t, err)

		require.Len(t, result.Completed, 3)
		assert.False(t, result.Exhausted)
		for i, due := range result.Completed {
			assert.Equal(t, entity.HawlStatusDue, due.Status)
			assert.True(t, due.ZakatAmount.Decimal.Equal(dec("5000")))
			assert.False(t, due.HawlDueDate.After(now))
			if i > 0 {
				assert.Equal(t, result.Completed[i-1].HawlDueDate, due.HawlStartDate)
			}
		}
		assert.True(t, result.Tracking.IsTracking())
		assert.True(t, result.Tracking.HawlDueDate.After(now))
		assert.Equal(t, result.Completed[2].HawlDueDate, result.Tracking.HawlStartDate)

		assert.Len(t, emails.Queued(), 3)
		assert.Len(t, store.AllCycles(testUser), 4)
	})

	t.Run("iteration cap", func(t *testing.T) {
		store := adaptertest.NewStore()
		service := NewService(store.Cycles(), nil, 2, fixedClock(now))

		tracking := trackingFrom(date(2022, time.January, 1), date(2022, time.January, 1))
		store.PutCycle(tracking)
		latest := snapshotAt(date(2022, time.January, 1), "200000", true)

		result, err := service.CatchUp(ctx, tracking, latest, now, Recipient{})
		require.NoError(t, err)
		assert.Len(t, result.Completed, 2)
		assert.True(t, result.Exhausted)

		// The next evaluation picks up where the cap stopped.
		result, err = service.CatchUp(ctx, result.Tracking, latest, now, Recipient{})
		require.NoError(t, err)
		assert.Len(t, result.Completed, 1)
		assert.False(t, result.Exhausted)
	})

	t.Run("latest snapshot below nisab", func(t *testing.T) {
		store := adaptertest.NewStore()
		service := NewService(store.Cycles(), nil, 0, fixedClock(now))

		tracking := trackingFrom(date(2022, time.January, 1), date(2022, time.January, 1))
		store.PutCycle(tracking)

		result, err := service.CatchUp(ctx, tracking, snapshotAt(date(2022, time.June, 1), "10", false), now, Recipient{})
		require.NoError(t, err)
		assert.Empty(t, result.Completed)
		assert.Equal(t, tracking.ID, result.Tracking.ID)
	})

	t.Run("no email without recipient", func(t *testing.T) {
		store := adaptertest.NewStore()
		emails := &adaptertest.EmailRecorder{}
		service := NewService(store.Cycles(), emails, 0, fixedClock(now))

		tracking := trackingFrom(date(2024, time.January, 1), date(2024, time.January, 1))
		store.PutCycle(tracking)

		result, err := service.CatchUp(ctx, tracking, snapshotAt(date(2024, time.January, 1), "200000", true), now, Recipient{})
		require.NoError(t, err)
		assert.Len(t, result.Completed, 1)
		assert.Empty(t, emails.Queued())
	})

	t.Run("email failure aborts", func(t *testing.T) {
		store := adaptertest.NewStore()
		emails := &adaptertest.EmailRecorder{Err: errors.New("queue down")}
		service := NewService(store.Cycles(), emails, 0, fixedClock(now))

		tracking := trackingFrom(date(2024, time.January, 1), date(2024, time.January, 1))
		store.PutCycle(tracking)

		_, err := service.CatchUp(ctx, tracking, snapshotAt(date(2024, time.January, 1), "200000", true), now, Recipient{Email: "amina@example.com"})
		assert.Error(t, err)
	})
}

func TestRunLocked(t *testing.T) {
	ctx := context.Background()

	t.Run("nil locker runs directly", func(t *testing.T) {
		ran := false
		err := RunLocked(ctx, nil, testUser, func() error { ran = true; return nil })
		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("releases after fn", func(t *testing.T) {
		locker := &adaptertest.Locker{}
		want := errors.New("boom")
		err := RunLocked(ctx, locker, testUser, func() error { return want })
		assert.ErrorIs(t, err, want)

		locks, unlocks := locker.Counts()
		assert.Equal(t, 1, locks)
		assert.Equal(t, 1, unlocks)
	})

	t.Run("busy", func(t *testing.T) {
		locker := &adaptertest.Locker{Err: errors.New("timeout")}
		ran := false
		err := RunLocked(ctx, locker, testUser, func() error { ran = true; return nil })
		assert.ErrorIs(t, err, domainerror.ErrUserBusy)
		assert.False(t, ran)
	})
}
