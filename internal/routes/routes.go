package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/salon-booking/internal/infra/repository"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/payment"
	"github.com/BruksfildServices01/salon-booking/internal/storage"
	ucAppointment "github.com/BruksfildServices01/salon-booking/internal/usecase/appointment"
)

// Dependencies are the long-lived collaborators built in main.
// Google, Sessions and Uploader are nil when the feature is not configured.
type Dependencies struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *logrus.Logger
	Audit    *audit.Dispatcher
	Notifier notify.Notifier
	Tokens   *auth.TokenIssuer
	Revoked  auth.RevocationStore
	Google   handlers.GoogleProvider
	Sessions sessions.Store
	Payments *payment.Service
	Uploader storage.Uploader
	Limiter  *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(
		deps.DB,
		domain.NewBlockingPolicy(cfg.BlockingStatuses),
	)

	authn := middleware.NewAuthenticator(deps.Tokens, deps.Revoked)

	var limited gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		limited = deps.Limiter.Middleware()
	}

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	appointmentDeps := ucAppointment.Deps{
		Repo:     appointmentRepo,
		Audit:    deps.Audit,
		Notifier: deps.Notifier,
		Settings: ucAppointment.Settings{
			Timezone:   cfg.Timezone,
			MinAdvance: cfg.AppointmentMinAdvance,
			Grid: domain.SlotGrid{
				StartHour: cfg.SlotStartHour,
				EndHour:   cfg.SlotEndHour,
			},
		},
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(deps.DB, cfg, deps.Tokens, deps.Revoked, deps.Audit)
	userHandler := handlers.NewUserHandler(deps.DB, deps.Audit)
	serviceHandler := handlers.NewServiceHandler(deps.DB, appointmentRepo, deps.Audit)
	courseHandler := handlers.NewCourseHandler(deps.DB, deps.Uploader, deps.Audit)
	reviewHandler := handlers.NewReviewHandler(deps.DB, deps.Audit)
	paymentHandler := handlers.NewPaymentHandler(deps.Payments, cfg.DefaultEmailLanguage)
	auditLogsHandler := handlers.NewAuditLogsHandler(deps.DB)

	appointmentHandler := handlers.NewAppointmentHandler(
		ucAppointment.NewCreateAppointment(appointmentDeps),
		ucAppointment.NewCreateClientAppointment(appointmentDeps),
		ucAppointment.NewUpdateAppointmentStatus(appointmentDeps),
		ucAppointment.NewCancelAppointment(appointmentDeps),
		ucAppointment.NewHideAppointment(appointmentDeps),
		ucAppointment.NewListAppointments(appointmentRepo),
		ucAppointment.NewListAppointmentsByDate(appointmentRepo, appointmentDeps.Settings),
		ucAppointment.NewGetSlots(appointmentRepo, appointmentDeps.Settings),
	)

	adminOnly := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{authn.AuthRequired(), middleware.AdminRequired(), h}
	}

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		authAPI := api.Group("/auth")
		authAPI.Use(limited)
		{
			authAPI.POST("/register", authHandler.Register)
			authAPI.POST("/login", authHandler.Login)
			authAPI.POST("/logout", authn.AuthRequired(), authHandler.Logout)
			authAPI.GET("/user", authn.AuthRequired(), authHandler.CurrentUser)
			authAPI.PATCH("/user", authn.AuthRequired(), authHandler.UpdateCurrentUser)

			if deps.Google != nil && deps.Sessions != nil {
				googleHandler := handlers.NewGoogleHandler(deps.DB, cfg, deps.Google, deps.Sessions, deps.Tokens, deps.Audit)
				authAPI.GET("/google", googleHandler.Start)
				authAPI.GET("/google/callback", googleHandler.Callback)
			}
		}

		// ------------------------------
		// USERS (ADMIN)
		// ------------------------------
		users := api.Group("/users", authn.AuthRequired(), middleware.AdminRequired())
		{
			users.GET("", userHandler.List)
			users.PATCH("/:id/admin", userHandler.SetAdmin)
		}

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		appointments := api.Group("/appointments")
		{
			appointments.GET("/by-date", appointmentHandler.ListByDate)
			appointments.GET("/slots", appointmentHandler.Slots)

			appointments.GET("", authn.AuthRequired(), appointmentHandler.List)
			appointments.POST("", authn.AuthRequired(), appointmentHandler.Create)
			appointments.PATCH("/:id/cancel", authn.AuthRequired(), appointmentHandler.Cancel)

			appointments.POST("/admin", adminOnly(appointmentHandler.CreateForClient)...)
			appointments.PUT("/:id", adminOnly(appointmentHandler.UpdateStatus)...)
			appointments.DELETE("/:id", adminOnly(appointmentHandler.Delete)...)
		}

		// ------------------------------
		// CATALOGUE
		// ------------------------------
		services := api.Group("/services")
		{
			services.GET("", authn.OptionalAuth(), serviceHandler.List)
			services.GET("/:id", authn.OptionalAuth(), serviceHandler.Get)
			services.POST("", adminOnly(serviceHandler.Create)...)
			services.PUT("/:id", adminOnly(serviceHandler.Update)...)
			services.DELETE("/:id", adminOnly(serviceHandler.Delete)...)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", authn.OptionalAuth(), courseHandler.List)
			courses.GET("/purchases", adminOnly(paymentHandler.ListPurchases)...)
			courses.GET("/:id", authn.OptionalAuth(), courseHandler.Get)
			courses.POST("", adminOnly(courseHandler.Create)...)
			courses.PUT("/:id", adminOnly(courseHandler.Update)...)
			courses.DELETE("/:id", adminOnly(courseHandler.Delete)...)
			courses.POST("/:id/image", adminOnly(courseHandler.UploadImage)...)
		}

		// ------------------------------
		// PAYMENTS
		// ------------------------------
		api.POST("/create-payment-intent", authn.AuthRequired(), paymentHandler.CreatePaymentIntent)
		api.POST("/webhook/stripe", paymentHandler.StripeWebhook)
		api.POST("/webhook/mercadopago", paymentHandler.MercadoPagoWebhook)

		// ------------------------------
		// REVIEWS
		// ------------------------------
		reviews := api.Group("/reviews")
		{
			reviews.GET("", reviewHandler.ListApproved)
			reviews.POST("", limited, authn.OptionalAuth(), reviewHandler.Create)
			reviews.GET("/all", adminOnly(reviewHandler.ListAll)...)
			reviews.PATCH("/:id/approve", adminOnly(reviewHandler.Approve)...)
			reviews.PATCH("/:id/reject", adminOnly(reviewHandler.Reject)...)
			reviews.DELETE("/:id", adminOnly(reviewHandler.Delete)...)
		}

		// ------------------------------
		// AUDIT
		// ------------------------------
		api.GET("/admin/audit-logs", adminOnly(auditLogsHandler.List)...)
	}
}
