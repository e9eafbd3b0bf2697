// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/zakat-tracker/backend/internal/integration/entrypoint/controller"
	"github.com/zakat-tracker/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine               *gin.Engine
	healthController     *controller.HealthController
	snapshotController   *controller.SnapshotController
	hawlController       *controller.HawlController
	paymentController    *controller.PaymentController
	calculatorController *controller.CalculatorController
	writeRateLimiter     *middleware.RateLimiter
	authMiddleware       *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	snapshotController *controller.SnapshotController,
	hawlController *controller.HawlController,
	paymentController *controller.PaymentController,
	calculatorController *controller.CalculatorController,
	writeRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:     healthController,
		snapshotController:   snapshotController,
		hawlController:       hawlController,
		paymentController:    paymentController,
		calculatorController: calculatorController,
		writeRateLimiter:     writeRateLimiter,
		authMiddleware:       authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// API v1 group
	v1 := r.engine.Group("/api/v1")
	{
		// Calculator routes (public, stateless)
		if r.calculatorController != nil {
			v1.POST("/calculate", r.calculatorController.Calculate)
			v1.GET("/hijri/convert", r.calculatorController.ConvertDate)
		}

		if r.authMiddleware == nil {
			return
		}
		throttle := r.writeThrottle()

		// Snapshot routes (require authentication)
		if r.snapshotController != nil {
			snapshots := v1.Group("/snapshots")
			snapshots.Use(r.authMiddleware.Authenticate())
			{
				snapshots.GET("", r.snapshotController.List)
				snapshots.POST("", throttle, r.snapshotController.Create)
			}
		}

		// Hawl routes (require authentication)
		if r.hawlController != nil {
			hawl := v1.Group("/hawl")
			hawl.Use(r.authMiddleware.Authenticate())
			{
				hawl.GET("", r.hawlController.Dashboard)
				hawl.GET("/cycles", r.hawlController.ListCycles)
				hawl.GET("/cycles/:id", r.hawlController.GetCycle)

				// Payment routes (nested under cycles)
				if r.paymentController != nil {
					hawl.GET("/payment-categories", r.paymentController.Categories)
					hawl.POST("/cycles/:id/payments", throttle, r.paymentController.Create)
					hawl.DELETE("/cycles/:id/payments/:payment_id", throttle, r.paymentController.Delete)
				}
			}
		}
	}
}

func (r *Router) writeThrottle() gin.HandlerFunc {
	if r.writeRateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return r.writeRateLimiter.Middleware()
}
