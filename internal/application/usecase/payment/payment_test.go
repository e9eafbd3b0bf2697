package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakat-tracker/backend/internal/application/adapter/adaptertest"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/hawl"
)

var (
	testUser = uuid.MustParse("5d6e7f80-91a2-4b3c-8d4e-5f60718293a4")
	testNow  = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	epsilon  = decimal.RequireFromString("0.01")
)

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

type fixture struct {
	store  *adaptertest.Store
	locker *adaptertest.Locker
	cycle  *entity.HawlCycle
	add    *AddPaymentUseCase
	del    *DeletePaymentUseCase
}

func newFixture(status entity.HawlStatus, zakat string) *fixture {
	store := adaptertest.NewStore()

	c := entity.NewHawlCycle(testUser, uuid.New(), time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), "BDT", testNow)
	c.Status = status
	if status != entity.HawlStatusTracking {
		c.ZakatAmount = decimal.NewNullDecimal(decimal.RequireFromString(zakat))
	}
	store.PutCycle(c)

	clock := func() time.Time { return testNow }
	locker := &adaptertest.Locker{}
	return &fixture{
		store:  store,
		locker: locker,
		cycle:  c,
		add:    NewAddPaymentUseCase(store, locker, store.Cycles(), store.Payments(), epsilon, clock),
		del:    NewDeletePaymentUseCase(store, locker, store.Cycles(), store.Payments(), epsilon, clock),
	}
}

func (f *fixture) pay(amount string) AddPaymentInput {
	return AddPaymentInput{
		UserID:    testUser,
		CycleID:   f.cycle.ID,
		Amount:    dec(amount),
		Recipient: "Local food bank",
		Category:  entity.PaymentCategoryPoorNeedy,
		Date:      day(2025, time.February, 1),
	}
}

func (f *fixture) stored(t *testing.T) *entity.HawlCycle {
	t.Helper()
	c, err := f.store.Cycles().FindByID(context.Background(), testUser, f.cycle.ID)
	require.NoError(t, err)
	return c
}

func TestAddPayment_SettlesCycle(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")
	ctx := context.Background()

	partial, err := f.add.Execute(ctx, f.pay("400"))
	require.NoError(t, err)
	assert.Equal(t, hawl.ActionNone, partial.Action)
	assert.Equal(t, entity.HawlStatusDue, partial.Cycle.Status)
	assert.True(t, partial.TotalPaid.Equal(decimal.RequireFromString("400")))
	assert.Equal(t, f.cycle.ID, partial.Payment.HawlCycleID)
	assert.Equal(t, testUser, partial.Payment.UserID)

	rest, err := f.add.Execute(ctx, f.pay("600"))
	require.NoError(t, err)
	assert.Equal(t, hawl.ActionPaid, rest.Action)
	assert.Equal(t, entity.HawlStatusPaid, rest.Cycle.Status)
	assert.True(t, rest.TotalPaid.Equal(decimal.RequireFromString("1000")))

	stored := f.stored(t)
	assert.Equal(t, entity.HawlStatusPaid, stored.Status)
	require.NotNil(t, stored.EndDate)
	assert.Equal(t, testNow, *stored.EndDate)
}

func TestAddPayment_Epsilon(t *testing.T) {
	t.Run("rounding overshoot accepted", func(t *testing.T) {
		f := newFixture(entity.HawlStatusDue, "1000")
		out, err := f.add.Execute(context.Background(), f.pay("1000.01"))
		require.NoError(t, err)
		assert.Equal(t, hawl.ActionPaid, out.Action)
	})

	t.Run("rounding shortfall settles", func(t *testing.T) {
		f := newFixture(entity.HawlStatusDue, "1000")
		out, err := f.add.Execute(context.Background(), f.pay("999.99"))
		require.NoError(t, err)
		assert.Equal(t, hawl.ActionPaid, out.Action)
	})
}

func TestAddPayment_Rejections(t *testing.T) {
	t.Run("exceeds remaining", func(t *testing.T) {
		f := newFixture(entity.HawlStatusDue, "1000")
		_, err := f.add.Execute(context.Background(), f.pay("700"))
		require.NoError(t, err)

		_, err = f.add.Execute(context.Background(), f.pay("300.02"))

		var verr *domainerror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, string(domainerror.ErrCodeAmountExceedsRemaining), verr.Code)
		assert.Contains(t, verr.Fields["amount"], "300.00")
		assert.ErrorIs(t, err, domainerror.ErrAmountExceedsRemaining)

		summary, err := f.store.Payments().SummaryByCycle(context.Background(), f.cycle.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.PaymentCount)
	})

	t.Run("tracking cycle", func(t *testing.T) {
		f := newFixture(entity.HawlStatusTracking, "")
		_, err := f.add.Execute(context.Background(), f.pay("10"))

		var verr *domainerror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, string(domainerror.ErrCodeCycleNotPayable), verr.Code)
		assert.ErrorIs(t, err, domainerror.ErrCycleNotPayable)
	})

	t.Run("reset cycle", func(t *testing.T) {
		f := newFixture(entity.HawlStatusReset, "0")
		_, err := f.add.Execute(context.Background(), f.pay("10"))
		assert.ErrorIs(t, err, domainerror.ErrCycleNotPayable)
	})

	t.Run("unknown cycle", func(t *testing.T) {
		f := newFixture(entity.HawlStatusDue, "1000")
		in := f.pay("10")
		in.CycleID = uuid.New()
		_, err := f.add.Execute(context.Background(), in)

		var herr *domainerror.HawlError
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, domainerror.ErrCodeHawlCycleNotFound, herr.Code)
	})

	t.Run("another user's cycle", func(t *testing.T) {
		f := newFixture(entity.HawlStatusDue, "1000")
		in := f.pay("10")
		in.UserID = uuid.New()
		_, err := f.add.Execute(context.Background(), in)
		assert.ErrorIs(t, err, domainerror.ErrHawlCycleNotFound)
	})
}

func TestAddPayment_Validation(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.add.Execute(context.Background(), AddPaymentInput{UserID: testUser, CycleID: f.cycle.ID, Recipient: "   "})

		var verr *domainerror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, string(domainerror.ErrCodeInvalidPayment), verr.Code)
		for _, field := range []string{"amount", "recipient", "category", "date"} {
			assert.Contains(t, verr.Fields, field)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := f.add.Execute(context.Background(), f.pay("0"))

		var verr *domainerror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "amount")
	})

	t.Run("unknown category", func(t *testing.T) {
		in := f.pay("10")
		in.Category = "Charity Gala"
		_, err := f.add.Execute(context.Background(), in)

		var verr *domainerror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Category is not recognised", verr.Fields["category"])
	})
}

func TestAddPayment_TrimsText(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")
	in := f.pay("10")
	in.Recipient = "  Orphanage  "
	in.Notes = "  Ramadan  "

	out, err := f.add.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Orphanage", out.Payment.Recipient)
	require.NotNil(t, out.Payment.Notes)
	assert.Equal(t, "Ramadan", *out.Payment.Notes)
}

func TestDeletePayment_ReopensCycle(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")
	ctx := context.Background()

	_, err := f.add.Execute(ctx, f.pay("600"))
	require.NoError(t, err)
	last, err := f.add.Execute(ctx, f.pay("400"))
	require.NoError(t, err)
	require.Equal(t, entity.HawlStatusPaid, last.Cycle.Status)

	out, err := f.del.Execute(ctx, DeletePaymentInput{UserID: testUser, CycleID: f.cycle.ID, PaymentID: last.Payment.ID})
	require.NoError(t, err)

	assert.Equal(t, hawl.ActionReopened, out.Action)
	assert.Equal(t, entity.HawlStatusDue, out.Cycle.Status)
	assert.Nil(t, out.Cycle.EndDate)
	assert.True(t, out.TotalPaid.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, entity.HawlStatusDue, f.stored(t).Status)
}

func TestDeletePayment_StaysDue(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")
	ctx := context.Background()

	p, err := f.add.Execute(ctx, f.pay("100"))
	require.NoError(t, err)

	out, err := f.del.Execute(ctx, DeletePaymentInput{UserID: testUser, CycleID: f.cycle.ID, PaymentID: p.Payment.ID})
	require.NoError(t, err)
	assert.Equal(t, hawl.ActionNone, out.Action)
	assert.True(t, out.TotalPaid.IsZero())

	summary, err := f.store.Payments().SummaryByCycle(ctx, f.cycle.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.PaymentCount)
}

func TestDeletePayment_NotFound(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")
	ctx := context.Background()

	t.Run("unknown payment", func(t *testing.T) {
		_, err := f.del.Execute(ctx, DeletePaymentInput{UserID: testUser, CycleID: f.cycle.ID, PaymentID: uuid.New()})
		assert.ErrorIs(t, err, domainerror.ErrPaymentNotFound)
	})

	t.Run("payment of another cycle", func(t *testing.T) {
		other := newFixture(entity.HawlStatusDue, "1000")
		p, err := other.add.Execute(ctx, other.pay("10"))
		require.NoError(t, err)

		_, err = f.del.Execute(ctx, DeletePaymentInput{UserID: testUser, CycleID: f.cycle.ID, PaymentID: p.Payment.ID})
		assert.ErrorIs(t, err, domainerror.ErrPaymentNotFound)
	})

	t.Run("unknown cycle", func(t *testing.T) {
		_, err := f.del.Execute(ctx, DeletePaymentInput{UserID: testUser, CycleID: uuid.New(), PaymentID: uuid.New()})
		assert.ErrorIs(t, err, domainerror.ErrHawlCycleNotFound)
	})
}

// serialLocker grants one user lock at a time.
type serialLocker struct {
	mu sync.Mutex
}

func (l *serialLocker) Lock(_ context.Context, _ uuid.UUID) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

func TestAddPayment_ConcurrentPaymentsCannotOverpay(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")
	clock := func() time.Time { return testNow }
	add := NewAddPaymentUseCase(f.store, &serialLocker{}, f.store.Cycles(), f.store.Payments(), epsilon, clock)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := add.Execute(context.Background(), f.pay("600"))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if errors.Is(err, domainerror.ErrAmountExceedsRemaining) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 7, rejected)

	summary, err := f.store.Payments().SummaryByCycle(context.Background(), f.cycle.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalPaid.Equal(decimal.RequireFromString("600")))
	assert.Equal(t, entity.HawlStatusDue, f.stored(t).Status)
}

func TestPayments_TakeUserLock(t *testing.T) {
	f := newFixture(entity.HawlStatusDue, "1000")
	ctx := context.Background()

	out, err := f.add.Execute(ctx, f.pay("1000"))
	require.NoError(t, err)
	_, err = f.del.Execute(ctx, DeletePaymentInput{UserID: testUser, CycleID: f.cycle.ID, PaymentID: out.Payment.ID})
	require.NoError(t, err)

	locks, unlocks := f.locker.Counts()
	assert.Equal(t, 2, locks)
	assert.Equal(t, 2, unlocks)

	t.Run("busy", func(t *testing.T) {
		f.locker.Err = errors.New("lock held")
		defer func() { f.locker.Err = nil }()

		_, err := f.add.Execute(ctx, f.pay("100"))
		assert.ErrorIs(t, err, domainerror.ErrUserBusy)

		_, err = f.del.Execute(ctx, DeletePaymentInput{UserID: testUser, CycleID: f.cycle.ID, PaymentID: uuid.New()})
		assert.ErrorIs(t, err, domainerror.ErrUserBusy)
	})
}
