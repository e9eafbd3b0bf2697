package cycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/domain/entity"
	domainerror "github.com/zakat-tracker/backend/internal/domain/error"
	"github.com/zakat-tracker/backend/internal/domain/hawl"
)

// DefaultRecentPayments is how many payments the dashboard lists.
const DefaultRecentPayments = 5

// GetDashboardInput represents the input for the dashboard.
type GetDashboardInput struct {
	UserID    uuid.UUID
	UserEmail string
	UserName  string
}

// GetDashboardOutput represents the dashboard view.
type GetDashboardOutput struct {
	State          hawl.State
	Outstanding    hawl.Outstanding
	LatestSnapshot *entity.AssetSnapshot
	RecentPayments []entity.RecentPayment
	// Completed lists cycles that became due during this read.
	Completed []*entity.HawlCycle
	// StorageReady is false when the view was rendered without a database.
	StorageReady bool
}

// GetDashboardUseCase evaluates pending Hawl transitions lazily and returns
// the user's current state.
type GetDashboardUseCase struct {
	service      *Service
	transactor   adapter.Transactor
	locker       adapter.UserLocker
	snapshotRepo adapter.SnapshotRepository
	cycleRepo    adapter.HawlCycleRepository
	paymentRepo  adapter.PaymentRepository
	staleDays    int
}

// NewGetDashboardUseCase creates a new GetDashboardUseCase instance.
func NewGetDashboardUseCase(
	service *Service,
	transactor adapter.Transactor,
	locker adapter.UserLocker,
	snapshotRepo adapter.SnapshotRepository,
	cycleRepo adapter.HawlCycleRepository,
	paymentRepo adapter.PaymentRepository,
	staleDays int,
) *GetDashboardUseCase {
	if staleDays <= 0 {
		staleDays = hawl.DefaultStaleDays
	}
	return &GetDashboardUseCase{
		service:      service,
		transactor:   transactor,
		locker:       locker,
		snapshotRepo: snapshotRepo,
		cycleRepo:    cycleRepo,
		paymentRepo:  paymentRepo,
		staleDays:    staleDays,
	}
}

// Execute sweeps duplicate tracking cycles, runs the catch-up loop and
// builds the dashboard view.
func (uc *GetDashboardUseCase) Execute(ctx context.Context, input GetDashboardInput) (*GetDashboardOutput, error) {
	var (
		latest    *entity.AssetSnapshot
		tracking  *entity.HawlCycle
		due       []entity.CycleWithPayments
		recent    []entity.RecentPayment
		completed []*entity.HawlCycle
	)

	err := RunLocked(ctx, uc.locker, input.UserID, func() error {
		return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error

			latest, err = uc.snapshotRepo.FindLatestByUser(ctx, input.UserID)
			if err != nil {
				return fmt.Errorf("failed to get latest snapshot: %w", err)
			}

			// Repair racy duplicates before trusting the tracking cycle
			tracking, err = uc.service.Sweep(ctx, input.UserID)
			if err != nil {
				return err
			}

			if tracking != nil {
				result, err := uc.service.CatchUp(ctx, tracking, latest, uc.service.Now(), Recipient{Email: input.UserEmail, Name: input.UserName})
				if err != nil {
					return err
				}
				tracking = result.Tracking
				completed = result.Completed
			}

			due, err = uc.cycleRepo.ListDueWithPayments(ctx, input.UserID)
			if err != nil {
				return fmt.Errorf("failed to list due cycles: %w", err)
			}

			recent, err = uc.paymentRepo.ListRecentByUser(ctx, input.UserID, DefaultRecentPayments)
			if err != nil {
				return fmt.Errorf("failed to list recent payments: %w", err)
			}
			return nil
		})
	})

	storageReady := true
	if err != nil {
		if !errors.Is(err, domainerror.ErrStorageUnconfigured) {
			return nil, err
		}
		// Render an empty state until storage is provisioned
		storageReady = false
		latest, tracking, due, recent, completed = nil, nil, nil, nil, nil
	}

	return &GetDashboardOutput{
		State:          hawl.ComputeState(tracking, latest, uc.service.Now(), uc.staleDays),
		Outstanding:    hawl.ComputeOutstanding(due),
		LatestSnapshot: latest,
		RecentPayments: recent,
		Completed:      completed,
		StorageReady:   storageReady,
	}, nil
}
