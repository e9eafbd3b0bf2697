// Package dependency provides dependency injection for the application.
package dependency

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/zakat-tracker/backend/config"
	"github.com/zakat-tracker/backend/internal/application/adapter"
	"github.com/zakat-tracker/backend/internal/application/usecase/calculator"
	"github.com/zakat-tracker/backend/internal/application/usecase/cycle"
	"github.com/zakat-tracker/backend/internal/application/usecase/payment"
	"github.com/zakat-tracker/backend/internal/application/usecase/snapshot"
	"github.com/zakat-tracker/backend/internal/infra/server/router"
	"github.com/zakat-tracker/backend/internal/integration/adapters"
	"github.com/zakat-tracker/backend/internal/integration/email"
	"github.com/zakat-tracker/backend/internal/integration/email/templates"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/middleware"
	"github.com/zakat-tracker/backend/internal/integration/lock"
	"github.com/zakat-tracker/backend/internal/integration/persistence"
)

// Options carries the optional collaborators of the injector.
type Options struct {
	// DB may be nil; storage-backed endpoints then report it unconfigured.
	DB *gorm.DB
	// Redis may be nil; evaluation then relies on the database constraint alone.
	Redis *redis.Client
	// Sender delivers queued e-mails. Nil disables the worker.
	Sender adapter.EmailSender
	// DBHealth and CacheHealth feed the health endpoint.
	DBHealth    func() bool
	CacheHealth func() bool
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

// Injector holds all application dependencies.
type Injector struct {
	Config       *config.Config
	DB           *gorm.DB
	Router       *router.Router
	TokenService adapter.TokenService
	EmailWorker  *email.Worker
	RateLimiter  *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, opts Options) *Injector {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	db := opts.DB

	// Create repositories
	transactor := persistence.NewTransactor(db)
	snapshotRepo := persistence.NewSnapshotRepository(db)
	cycleRepo := persistence.NewHawlCycleRepository(db)
	paymentRepo := persistence.NewPaymentRepository(db)
	emailQueueRepo := persistence.NewEmailQueueRepository(db)

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)

	var locker adapter.UserLocker
	if opts.Redis != nil {
		locker = lock.NewRedisLocker(opts.Redis, cfg.Redis.LockTTL, cfg.Redis.LockWait)
	}

	var emailService adapter.EmailService
	var emailWorker *email.Worker
	if db != nil {
		emailService = email.NewService(emailQueueRepo, cfg.Email.AppBaseURL, now)
		if opts.Sender != nil {
			renderer, err := templates.NewRenderer()
			if err != nil {
				slog.Error("Failed to load email templates, email worker disabled", "error", err)
			} else {
				emailWorker = email.NewWorker(emailQueueRepo, opts.Sender, renderer, email.WorkerConfig{
					PollInterval: cfg.Email.PollInterval,
					BatchSize:    cfg.Email.BatchSize,
					Now:          now,
				})
			}
		}
	}

	// Create Hawl use cases
	hawlService := cycle.NewService(cycleRepo, emailService, cfg.Hawl.MaxCatchUpSteps, now)
	dashboardUseCase := cycle.NewGetDashboardUseCase(hawlService, transactor, locker, snapshotRepo, cycleRepo, paymentRepo, cfg.Hawl.StaleDays)
	listCyclesUseCase := cycle.NewListCyclesUseCase(cycleRepo)
	getCycleUseCase := cycle.NewGetCycleUseCase(cycleRepo, paymentRepo, cfg.Hawl.PaymentEpsilon)

	// Create snapshot use cases
	createSnapshotUseCase := snapshot.NewCreateSnapshotUseCase(hawlService, transactor, locker, snapshotRepo, cycleRepo, cfg.Hawl.DefaultCurrency)
	listSnapshotsUseCase := snapshot.NewListSnapshotsUseCase(snapshotRepo)

	// Create payment use cases
	addPaymentUseCase := payment.NewAddPaymentUseCase(transactor, locker, cycleRepo, paymentRepo, cfg.Hawl.PaymentEpsilon, now)
	deletePaymentUseCase := payment.NewDeletePaymentUseCase(transactor, locker, cycleRepo, paymentRepo, cfg.Hawl.PaymentEpsilon, now)

	// Create calculator use cases
	calculateUseCase := calculator.NewCalculateUseCase()
	convertDateUseCase := calculator.NewConvertDateUseCase()

	// Create controllers
	dbHealth := opts.DBHealth
	if dbHealth == nil {
		dbHealth = func() bool {
			if db == nil {
				return false
			}
			sqlDB, err := db.DB()
			if err != nil {
				return false
			}
			return sqlDB.Ping() == nil
		}
	}
	healthController := controller.NewHealthController(dbHealth, opts.CacheHealth)
	snapshotController := controller.NewSnapshotController(createSnapshotUseCase, listSnapshotsUseCase)
	hawlController := controller.NewHawlController(dashboardUseCase, listCyclesUseCase, getCycleUseCase)
	paymentController := controller.NewPaymentController(addPaymentUseCase, deletePaymentUseCase)
	calculatorController := controller.NewCalculatorController(calculateUseCase, convertDateUseCase)

	// Create middleware
	writeRateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Create router
	r := router.NewRouter(
		healthController,
		snapshotController,
		hawlController,
		paymentController,
		calculatorController,
		writeRateLimiter,
		authMiddleware,
	)

	return &Injector{
		Config:       cfg,
		DB:           db,
		Router:       r,
		TokenService: tokenService,
		EmailWorker:  emailWorker,
		RateLimiter:  writeRateLimiter,
	}
}
