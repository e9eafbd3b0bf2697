// Package adaptertest provides in-memory implementations of the adapter
// interfaces for use case tests.
package adaptertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
)

type snapshotRow struct {
	v   entity.AssetSnapshot
	seq int
}

type cycleRow struct {
	v   *entity.HawlCycle
	seq int
}

type paymentRow struct {
	v   entity.ZakatPayment
	seq int
}

type jobRow struct {
	v   entity.EmailJob
	seq int
}

// Store keeps snapshots, cycles, payments and email jobs in memory. Records
// are copied on the way in and out. A failed transaction restores the state
// it started from.
type Store struct {
	// Err, when set, is returned by every call.
	Err error

	mu        sync.Mutex
	seq       int
	snapshots map[uuid.UUID]snapshotRow
	cycles    map[uuid.UUID]cycleRow
	payments  map[uuid.UUID]paymentRow
	jobs      map[uuid.UUID]jobRow
	inTx      bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		snapshots: make(map[uuid.UUID]snapshotRow),
		cycles:    make(map[uuid.UUID]cycleRow),
		payments:  make(map[uuid.UUID]paymentRow),
		jobs:      make(map[uuid.UUID]jobRow),
	}
}

// Unconfigured returns a store that behaves like a deployment without a database.
func Unconfigured() *Store {
	s := NewStore()
	s.Err = domainerror.ErrStorageUnconfigured
	return s
}

// WithinTransaction implements adapter.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	if s.inTx {
		s.mu.Unlock()
		return fn(ctx)
	}
	s.inTx = true
	saved := s.copyState()
	s.mu.Unlock()

	err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.snapshots, s.cycles, s.payments, s.jobs = saved.snapshots, saved.cycles, saved.payments, saved.jobs
	}
	return err
}

func (s *Store) copyState() *Store {
	cp := NewStore()
	for k, v := range s.snapshots {
		cp.snapshots[k] = v
	}
	for k, v := range s.cycles {
		cp.cycles[k] = cycleRow{v: v.v.Clone(), seq: v.seq}
	}
	for k, v := range s.payments {
		cp.payments[k] = v
	}
	for k, v := range s.jobs {
		cp.jobs[k] = v
	}
	return cp
}

func (s *Store) next() int {
	s.seq++
	return s.seq
}

// Snapshots returns the snapshot repository view of the store.
func (s *Store) Snapshots() adapter.SnapshotRepository { return snapshotRepo{s} }

// Cycles returns the Hawl cycle repository view of the store.
func (s *Store) Cycles() adapter.HawlCycleRepository { return cycleRepo{s} }

// Payments returns the payment repository view of the store.
func (s *Store) Payments() adapter.PaymentRepository { return paymentRepo{s} }

// EmailQueue returns the email queue repository view of the store.
func (s *Store) EmailQueue() adapter.EmailQueueRepository { return jobRepo{s} }

// PutCycle stores c as is, bypassing the single tracking cycle rule.
func (s *Store) PutCycle(c *entity.HawlCycle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles[c.ID] = cycleRow{v: c.Clone(), seq: s.next()}
}

// PutSnapshot stores snap as is.
func (s *Store) PutSnapshot(snap *entity.AssetSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = snapshotRow{v: *snap, seq: s.next()}
}

// AllCycles returns every cycle of the user ordered by Hawl start.
func (s *Store) AllCycles(userID uuid.UUID) []*entity.HawlCycle {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.cycleRows(func(c *entity.HawlCycle) bool { return c.UserID == userID })
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].v.HawlStartDate.Equal(rows[j].v.HawlStartDate) {
			return rows[i].v.HawlStartDate.Before(rows[j].v.HawlStartDate)
		}
		return rows[i].seq < rows[j].seq
	})
	return cloneCycles(rows)
}

// Jobs returns every queued email job in creation order.
func (s *Store) Jobs() []*entity.EmailJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]jobRow, 0, len(s.jobs))
	for _, r := range s.jobs {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	jobs := make([]*entity.EmailJob, len(rows))
	for i := range rows {
		j := rows[i].v
		jobs[i] = &j
	}
	return jobs
}

func (s *Store) cycleRows(keep func(*entity.HawlCycle) bool) []cycleRow {
	rows := make([]cycleRow, 0, len(s.cycles))
	for _, r := range s.cycles {
		if keep(r.v) {
			rows = append(rows, r)
		}
	}
	return rows
}

func cloneCycles(rows []cycleRow) []*entity.HawlCycle {
	cycles := make([]*entity.HawlCycle, len(rows))
	for i := range rows {
		cycles[i] = rows[i].v.Clone()
	}
	return cycles
}

type snapshotRepo struct{ s *Store }

func (r snapshotRepo) Create(_ context.Context, snap *entity.AssetSnapshot) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.PutSnapshot(snap)
	return nil
}

func (r snapshotRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*entity.AssetSnapshot, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.snapshots[id]
	if !ok || row.v.UserID != userID {
		return nil, domainerror.ErrSnapshotNotFound
	}
	snap := row.v
	return &snap, nil
}

func (r snapshotRepo) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*entity.AssetSnapshot, error) {
	snaps, err := r.ListByUser(ctx, userID, 1)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return snaps[0], nil
}

func (r snapshotRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.AssetSnapshot, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]snapshotRow, 0)
	for _, row := range r.s.snapshots {
		if row.v.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].v, rows[j].v
		if !a.SnapshotDate.Equal(b.SnapshotDate) {
			return a.SnapshotDate.After(b.SnapshotDate)
		}
		return newer(a.CreatedAt, rows[i].seq, b.CreatedAt, rows[j].seq)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	snaps := make([]*entity.AssetSnapshot, len(rows))
	for i := range rows {
		snap := rows[i].v
		snaps[i] = &snap
	}
	return snaps, nil
}

type cycleRepo struct{ s *Store }

func (r cycleRepo) Create(_ context.Context, c *entity.HawlCycle) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.IsTracking() {
		for _, row := range r.s.cycles {
			if row.v.UserID == c.UserID && row.v.IsTracking() {
				return domainerror.ErrTrackingCycleExists
			}
		}
	}
	r.s.cycles[c.ID] = cycleRow{v: c.Clone(), seq: r.s.next()}
	return nil
}

func (r cycleRepo) Update(_ context.Context, c *entity.HawlCycle) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.cycles[c.ID]
	if !ok {
		row.seq = r.s.next()
	}
	row.v = c.Clone()
	r.s.cycles[c.ID] = row
	return nil
}

func (r cycleRepo) FindByID(_ context.Context, userID, id uuid.UUID) (*entity.HawlCycle, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.cycles[id]
	if !ok || row.v.UserID != userID {
		return nil, domainerror.ErrHawlCycleNotFound
	}
	return row.v.Clone(), nil
}

func (r cycleRepo) ListTracking(_ context.Context, userID uuid.UUID) ([]*entity.HawlCycle, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.cycleRows(func(c *entity.HawlCycle) bool {
		return c.UserID == userID && c.IsTracking()
	})
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].v, rows[j].v
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if !a.HawlStartDate.Equal(b.HawlStartDate) {
			return a.HawlStartDate.After(b.HawlStartDate)
		}
		return rows[i].seq > rows[j].seq
	})
	return cloneCycles(rows), nil
}

func (r cycleRepo) FindLatestTracking(_ context.Context, userID uuid.UUID) (*entity.HawlCycle, error) {
	return r.latest(userID, func(c *entity.HawlCycle) bool { return c.IsTracking() })
}

func (r cycleRepo) FindLatestClosed(_ context.Context, userID uuid.UUID) (*entity.HawlCycle, error) {
	return r.latest(userID, func(c *entity.HawlCycle) bool { return !c.IsTracking() })
}

func (r cycleRepo) latest(userID uuid.UUID, keep func(*entity.HawlCycle) bool) (*entity.HawlCycle, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.cycleRows(func(c *entity.HawlCycle) bool { return c.UserID == userID && keep(c) })
	if len(rows) == 0 {
		return nil, nil
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].v, rows[j].v
		if !a.HawlDueDate.Equal(b.HawlDueDate) {
			return a.HawlDueDate.After(b.HawlDueDate)
		}
		return newer(a.CreatedAt, rows[i].seq, b.CreatedAt, rows[j].seq)
	})
	return rows[0].v.Clone(), nil
}

func (r cycleRepo) ListDueWithPayments(_ context.Context, userID uuid.UUID) ([]entity.CycleWithPayments, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.cycleRows(func(c *entity.HawlCycle) bool {
		return c.UserID == userID && c.Status == entity.HawlStatusDue
	})
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].v.HawlStartDate.Before(rows[j].v.HawlStartDate)
	})
	return r.s.withPayments(rows), nil
}

func (r cycleRepo) ListWithPayments(_ context.Context, userID uuid.UUID) ([]entity.CycleWithPayments, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.cycleRows(func(c *entity.HawlCycle) bool { return c.UserID == userID })
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].v, rows[j].v
		if !a.HawlStartDate.Equal(b.HawlStartDate) {
			return a.HawlStartDate.After(b.HawlStartDate)
		}
		return newer(a.CreatedAt, rows[i].seq, b.CreatedAt, rows[j].seq)
	})
	return r.s.withPayments(rows), nil
}

func (s *Store) withPayments(rows []cycleRow) []entity.CycleWithPayments {
	out := make([]entity.CycleWithPayments, len(rows))
	for i := range rows {
		sum := s.summary(rows[i].v.ID)
		out[i] = entity.CycleWithPayments{
			Cycle:        rows[i].v.Clone(),
			TotalPaid:    sum.TotalPaid,
			PaymentCount: sum.PaymentCount,
		}
	}
	return out
}

func (s *Store) summary(cycleID uuid.UUID) entity.PaymentSummary {
	sum := entity.PaymentSummary{TotalPaid: decimal.Zero}
	for _, row := range s.payments {
		if row.v.HawlCycleID == cycleID {
			sum.TotalPaid = sum.TotalPaid.Add(row.v.Amount)
			sum.PaymentCount++
		}
	}
	return sum
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *entity.ZakatPayment) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cycles[p.HawlCycleID]; !ok {
		return domainerror.ErrHawlCycleNotFound
	}
	r.s.payments[p.ID] = paymentRow{v: *p, seq: r.s.next()}
	return nil
}

func (r paymentRepo) Delete(_ context.Context, cycleID, paymentID uuid.UUID) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.payments[paymentID]
	if !ok || row.v.HawlCycleID != cycleID {
		return domainerror.ErrPaymentNotFound
	}
	delete(r.s.payments, paymentID)
	return nil
}

func (r paymentRepo) FindByID(_ context.Context, cycleID, paymentID uuid.UUID) (*entity.ZakatPayment, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.payments[paymentID]
	if !ok || row.v.HawlCycleID != cycleID {
		return nil, domainerror.ErrPaymentNotFound
	}
	p := row.v
	return &p, nil
}

func (r paymentRepo) ListByCycle(_ context.Context, cycleID uuid.UUID) ([]*entity.ZakatPayment, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.paymentRows(func(p entity.ZakatPayment) bool { return p.HawlCycleID == cycleID })
	payments := make([]*entity.ZakatPayment, len(rows))
	for i := range rows {
		p := rows[i].v
		payments[i] = &p
	}
	return payments, nil
}

func (r paymentRepo) SummaryByCycle(_ context.Context, cycleID uuid.UUID) (*entity.PaymentSummary, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sum := r.s.summary(cycleID)
	return &sum, nil
}

func (r paymentRepo) ListRecentByUser(_ context.Context, userID uuid.UUID, limit int) ([]entity.RecentPayment, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.paymentRows(func(p entity.ZakatPayment) bool { return p.UserID == userID })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]entity.RecentPayment, len(rows))
	for i := range rows {
		p := rows[i].v
		currency := entity.DefaultCurrency
		if c, ok := r.s.cycles[p.HawlCycleID]; ok {
			currency = c.v.Currency
		}
		out[i] = entity.RecentPayment{Payment: &p, Currency: currency}
	}
	return out, nil
}

// paymentRows returns matching payments, latest date first.
func (s *Store) paymentRows(keep func(entity.ZakatPayment) bool) []paymentRow {
	rows := make([]paymentRow, 0)
	for _, row := range s.payments {
		if keep(row.v) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].v, rows[j].v
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return newer(a.CreatedAt, rows[i].seq, b.CreatedAt, rows[j].seq)
	})
	return rows
}

type jobRepo struct{ s *Store }

func (r jobRepo) Create(_ context.Context, job *entity.EmailJob) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.jobs[job.ID] = jobRow{v: *job, seq: r.s.next()}
	return nil
}

func (r jobRepo) GetPendingJobs(_ context.Context, now time.Time, limit int) ([]*entity.EmailJob, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := make([]jobRow, 0)
	for _, row := range r.s.jobs {
		if row.v.Status == entity.EmailStatusPending && !row.v.ScheduledAt.After(now) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].v.ScheduledAt.Equal(rows[j].v.ScheduledAt) {
			return rows[i].v.ScheduledAt.Before(rows[j].v.ScheduledAt)
		}
		return rows[i].seq < rows[j].seq
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	jobs := make([]*entity.EmailJob, len(rows))
	for i := range rows {
		j := rows[i].v
		jobs[i] = &j
	}
	return jobs, nil
}

func (r jobRepo) Update(_ context.Context, job *entity.EmailJob) error {
	if r.s.Err != nil {
		return r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.jobs[job.ID]
	if !ok {
		return domainerror.ErrEmailJobNotFound
	}
	row.v = *job
	r.s.jobs[job.ID] = row
	return nil
}

func (r jobRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.EmailJob, error) {
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.jobs[id]
	if !ok {
		return nil, domainerror.ErrEmailJobNotFound
	}
	j := row.v
	return &j, nil
}

func (r jobRepo) ExistsForReference(_ context.Context, templateType entity.EmailTemplateType, referenceID uuid.UUID) (bool, error) {
	if r.s.Err != nil {
		return false, r.s.Err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.jobs {
		if row.v.TemplateType == templateType && row.v.ReferenceID != nil && *row.v.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

// newer orders by creation time, then by insertion order.
func newer(a time.Time, aSeq int, b time.Time, bSeq int) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aSeq > bSeq
}

var (
	_ adapter.Transactor           = (*Store)(nil)
	_ adapter.SnapshotRepository   = snapshotRepo{}
	_ adapter.HawlCycleRepository  = cycleRepo{}
	_ adapter.PaymentRepository    = paymentRepo{}
	_ adapter.EmailQueueRepository = jobRepo{}
)
