package cycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakat-tracker/backend/internal/application/adapter/adaptertest"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
)

type dashboardFixture struct {
	store  *adaptertest.Store
	emails *adaptertest.EmailRecorder
	locker *adaptertest.Locker
	uc     *GetDashboardUseCase
}

func newDashboard(store *adaptertest.Store, now time.Time) *dashboardFixture {
	f := &dashboardFixture{
		store:  store,
		emails: &adaptertest.EmailRecorder{},
		locker: &adaptertest.Locker{},
	}
	service := NewService(store.Cycles(), f.emails, 0, fixedClock(now))
	f.uc = NewGetDashboardUseCase(service, store, f.locker, store.Snapshots(), store.Cycles(), store.Payments(), 0)
	return f
}

func dashboardInput() GetDashboardInput {
	return GetDashboardInput{UserID: testUser, UserEmail: "amina@example.com", UserName: "Amina"}
}

func TestGetDashboard_Idle(t *testing.T) {
	f := newDashboard(adaptertest.NewStore(), date(2025, time.March, 1))

	out, err := f.uc.Execute(context.Background(), dashboardInput())
	require.NoError(t, err)

	assert.True(t, out.StorageReady)
	assert.Equal(t, entity.HawlStatusIdle, out.State.Status)
	assert.True(t, out.State.IsStale)
	assert.Nil(t, out.State.CycleID)
	assert.Nil(t, out.LatestSnapshot)
	assert.True(t, out.Outstanding.TotalOutstanding.IsZero())
	assert.Empty(t, out.RecentPayments)
}

func TestGetDashboard_Tracking(t *testing.T) {
	now := date(2025, time.March, 1)
	store := adaptertest.NewStore()
	tracking := trackingFrom(date(2024, time.December, 13), date(2024, time.December, 13))
	store.PutCycle(tracking)
	store.PutSnapshot(snapshotAt(date(2025, time.February, 20), "200000", true))

	f := newDashboard(store, now)
	out, err := f.uc.Execute(context.Background(), dashboardInput())
	require.NoError(t, err)

	assert.Equal(t, entity.HawlStatusTracking, out.State.Status)
	require.NotNil(t, out.State.CycleID)
	assert.Equal(t, tracking.ID, *out.State.CycleID)
	assert.Equal(t, date(2025, time.December, 2), *out.State.HawlDueDate)
	assert.Equal(t, 78, out.State.DaysElapsed)
	assert.False(t, out.State.IsStale)
	require.NotNil(t, out.LatestSnapshot)
	assert.Empty(t, out.Completed)

	locks, unlocks := f.locker.Counts()
	assert.Equal(t, 1, locks)
	assert.Equal(t, 1, unlocks)
}

func TestGetDashboard_LazyCatchUp(t *testing.T) {
	now := date(2025, time.March, 1)
	store := adaptertest.NewStore()
	store.PutCycle(trackingFrom(date(2022, time.January, 1), date(2022, time.January, 1)))
	store.PutSnapshot(snapshotAt(date(2022, time.January, 1), "200000", true))

	f := newDashboard(store, now)
	out, err := f.uc.Execute(context.Background(), dashboardInput())
	require.NoError(t, err)

	require.Len(t, out.Completed, 3)
	assert.Equal(t, entity.HawlStatusTracking, out.State.Status)
	assert.True(t, out.State.HawlDueDate.After(now))
	assert.True(t, out.State.IsStale)

	require.Len(t, out.Outstanding.Cycles, 3)
	assert.True(t, out.Outstanding.TotalOutstanding.Equal(dec("15000")))
	assert.True(t, out.Outstanding.Cycles[0].Cycle.HawlStartDate.Before(out.Outstanding.Cycles[1].Cycle.HawlStartDate))

	queued := f.emails.Queued()
	require.Len(t, queued, 3)
	assert.Equal(t, "Amina", queued[0].UserName)

	// A second read finds nothing left to do.
	again, err := f.uc.Execute(context.Background(), dashboardInput())
	require.NoError(t, err)
	assert.Empty(t, again.Completed)
	assert.Equal(t, *out.State.CycleID, *again.State.CycleID)
	assert.True(t, again.Outstanding.TotalOutstanding.Equal(dec("15000")))
	assert.Len(t, store.AllCycles(testUser), 4)
}

func TestGetDashboard_NoCatchUpBelowNisab(t *testing.T) {
	now := date(2025, time.March, 1)
	store := adaptertest.NewStore()
	tracking := trackingFrom(date(2022, time.January, 1), date(2022, time.January, 1))
	store.PutCycle(tracking)
	store.PutSnapshot(snapshotAt(date(2022, time.March, 1), "10", false))

	out, err := newDashboard(store, now).uc.Execute(context.Background(), dashboardInput())
	require.NoError(t, err)

	assert.Empty(t, out.Completed)
	assert.Equal(t, tracking.ID, *out.State.CycleID)
}

func TestGetDashboard_RecentPayments(t *testing.T) {
	now := date(2025, time.March, 1)
	store := adaptertest.NewStore()
	due := dueFrom(date(2023, time.January, 1), "5000")
	store.PutCycle(due)

	payments := store.Payments()
	for i := 0; i < 7; i++ {
		p := entity.NewZakatPayment(testUser, due.ID, dec("100"), "Masjid", entity.PaymentCategoryPoorNeedy, date(2025, time.January, 1+i), now)
		require.NoError(t, payments.Create(context.Background(), p))
	}

	out, err := newDashboard(store, now).uc.Execute(context.Background(), dashboardInput())
	require.NoError(t, err)

	require.Len(t, out.RecentPayments, DefaultRecentPayments)
	assert.Equal(t, date(2025, time.January, 7), out.RecentPayments[0].Payment.Date)
	assert.Equal(t, "BDT", out.RecentPayments[0].Currency)
	assert.True(t, out.Outstanding.TotalOutstanding.Equal(dec("4300")))
	require.Len(t, out.Outstanding.Cycles, 1)
	assert.Equal(t, 7, out.Outstanding.Cycles[0].PaymentCount)
}

func TestGetDashboard_StorageUnconfigured(t *testing.T) {
	f := newDashboard(adaptertest.Unconfigured(), date(2025, time.March, 1))

	out, err := f.uc.Execute(context.Background(), dashboardInput())
	require.NoError(t, err)

	assert.False(t, out.StorageReady)
	assert.Equal(t, entity.HawlStatusIdle, out.State.Status)
	assert.True(t, out.Outstanding.TotalOutstanding.IsZero())
}

func TestGetDashboard_Failures(t *testing.T) {
	t.Run("user busy", func(t *testing.T) {
		f := newDashboard(adaptertest.NewStore(), date(2025, time.March, 1))
		f.locker.Err = errors.New("timeout")

		_, err := f.uc.Execute(context.Background(), dashboardInput())
		assert.ErrorIs(t, err, domainerror.ErrUserBusy)
	})

	t.Run("storage error", func(t *testing.T) {
		store := adaptertest.NewStore()
		store.Err = errors.New("connection reset")
		f := newDashboard(store, date(2025, time.March, 1))

		_, err := f.uc.Execute(context.Background(), dashboardInput())
		require.Error(t, err)
		assert.NotErrorIs(t, err, domainerror.ErrStorageUnconfigured)
	})
}

func TestListCycles(t *testing.T) {
	store := adaptertest.NewStore()
	old := dueFrom(date(2022, time.January, 1), "1000")
	recent := trackingFrom(date(2024, time.December, 13), date(2024, time.December, 13))
	store.PutCycle(old)
	store.PutCycle(recent)
	store.PutCycle(entity.NewHawlCycle(uuid.New(), uuid.New(), date(2024, time.January, 1), "BDT", date(2024, time.January, 1)))
	require.NoError(t, store.Payments().Create(context.Background(),
		entity.NewZakatPayment(testUser, old.ID, dec("250"), "Madrasa", entity.PaymentCategoryEducation, date(2023, time.February, 1), date(2023, time.February, 1))))

	out, err := NewListCyclesUseCase(store.Cycles()).Execute(context.Background(), ListCyclesInput{UserID: testUser})
	require.NoError(t, err)

	require.Len(t, out.Cycles, 2)
	assert.Equal(t, recent.ID, out.Cycles[0].Cycle.ID)
	assert.Equal(t, old.ID, out.Cycles[1].Cycle.ID)
	assert.True(t, out.Cycles[1].TotalPaid.Equal(dec("250")))
	assert.Equal(t, 1, out.Cycles[1].PaymentCount)

	t.Run("storage unconfigured", func(t *testing.T) {
		out, err := NewListCyclesUseCase(adaptertest.Unconfigured().Cycles()).Execute(context.Background(), ListCyclesInput{UserID: testUser})
		require.NoError(t, err)
		assert.Empty(t, out.Cycles)
	})
}

func TestGetCycle(t *testing.T) {
	ctx := context.Background()
	store := adaptertest.NewStore()
	due := dueFrom(date(2023, time.January, 1), "1000")
	store.PutCycle(due)

	uc := NewGetCycleUseCase(store.Cycles(), store.Payments(), dec("0.01"))

	t.Run("partially paid", func(t *testing.T) {
		require.NoError(t, store.Payments().Create(ctx,
			entity.NewZakatPayment(testUser, due.ID, dec("400"), "Hospital", entity.PaymentCategoryHealthcare, date(2024, time.January, 1), date(2024, time.January, 1))))

		out, err := uc.Execute(ctx, GetCycleInput{UserID: testUser, CycleID: due.ID})
		require.NoError(t, err)
		assert.Equal(t, due.ID, out.Cycle.ID)
		assert.Len(t, out.Payments, 1)
		assert.True(t, out.TotalPaid.Equal(dec("400")))
		assert.True(t, out.Remaining.Equal(dec("600")))
		assert.False(t, out.FullyPaid)
	})

	t.Run("covered within epsilon", func(t *testing.T) {
		require.NoError(t, store.Payments().Create(ctx,
			entity.NewZakatPayment(testUser, due.ID, dec("599.995"), "Orphanage", entity.PaymentCategoryPoorNeedy, date(2024, time.February, 1), date(2024, time.February, 1))))

		out, err := uc.Execute(ctx, GetCycleInput{UserID: testUser, CycleID: due.ID})
		require.NoError(t, err)
		assert.True(t, out.FullyPaid)
		assert.Equal(t, 2, out.PaymentCount)
	})

	t.Run("other user's cycle", func(t *testing.T) {
		_, err := uc.Execute(ctx, GetCycleInput{UserID: uuid.New(), CycleID: due.ID})

		var herr *domainerror.HawlError
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, domainerror.ErrCodeHawlCycleNotFound, herr.Code)
		assert.ErrorIs(t, err, domainerror.ErrHawlCycleNotFound)
	})
}
