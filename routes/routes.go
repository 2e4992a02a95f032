package routes

import (
	"net/http"
	"time"

	"food-distribution-backend/events"
	"food-distribution-backend/handlers"
	"food-distribution-backend/middleware"
	"food-distribution-backend/policy"
	"food-distribution-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Services       *services.Services
	Bus            *events.Bus
	AllowedOrigins []string
	Log            *zap.Logger
}

func SetupRoutes(r *gin.Engine, deps Deps) *middleware.RateLimiter {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := deps.Services

	authHandler := &handlers.AuthHandler{Sessions: svc.Sessions, Log: log}
	beneficiaryHandler := &handlers.BeneficiaryHandler{Beneficiaries: svc.Beneficiaries, Schedules: svc.Schedules, Workflow: svc.Workflow, Log: log}
	centerHandler := &handlers.CenterHandler{Centers: svc.Centers, Log: log}
	scheduleHandler := &handlers.ScheduleHandler{Schedules: svc.Schedules, Workflow: svc.Workflow, Log: log}
	userHandler := &handlers.UserHandler{Users: svc.Users, Log: log}
	reportHandler := &handlers.ReportHandler{Reports: svc.Reports, Log: log}
	eventsHandler := handlers.NewEventsHandler(deps.Bus, deps.AllowedOrigins, log)

	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/signup", authLimiter.Middleware(), authHandler.Signup)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)
	}

	// Authenticated routes. Services apply the full access policy; the
	// Authorize gates only reject early.
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(svc.Sessions))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/profile", authHandler.Profile)

		protected.GET("/dashboard/stats", reportHandler.Dashboard)

		protected.GET("/beneficiaries", beneficiaryHandler.List)
		protected.GET("/beneficiaries/eligible", beneficiaryHandler.Eligible)
		protected.GET("/beneficiaries/:cnic", beneficiaryHandler.Get)
		protected.POST("/beneficiaries", beneficiaryHandler.Create)
		protected.PUT("/beneficiaries/:cnic", middleware.Authorize(policy.ActionUpdate, policy.KindBeneficiary), beneficiaryHandler.Update)
		protected.POST("/beneficiaries/:cnic/approve", middleware.Authorize(policy.ActionApprove, policy.KindBeneficiary), beneficiaryHandler.Approve)
		protected.POST("/beneficiaries/:cnic/reject", middleware.Authorize(policy.ActionReject, policy.KindBeneficiary), beneficiaryHandler.Reject)

		protected.GET("/centers", centerHandler.List)
		protected.GET("/centers/:id", centerHandler.Get)
		protected.POST("/centers", middleware.Authorize(policy.ActionCreate, policy.KindCenter), centerHandler.Create)
		protected.PUT("/centers/:id", middleware.Authorize(policy.ActionUpdate, policy.KindCenter), centerHandler.Update)
		protected.DELETE("/centers/:id", middleware.Authorize(policy.ActionDelete, policy.KindCenter), centerHandler.Delete)

		protected.GET("/schedules", scheduleHandler.List)
		protected.GET("/schedules/token/:token", scheduleHandler.GetByToken)
		protected.GET("/schedules/:id", scheduleHandler.Get)
		protected.POST("/schedules", middleware.Authorize(policy.ActionCreate, policy.KindSchedule), scheduleHandler.Create)
		protected.POST("/schedules/token/:token/distribute", scheduleHandler.DistributeByToken)
		protected.POST("/schedules/:id/distribute", scheduleHandler.Distribute)

		protected.GET("/reports/distributed", middleware.Authorize(policy.ActionView, policy.KindReport), reportHandler.Distributed)
		protected.GET("/reports/distributed/export", middleware.Authorize(policy.ActionView, policy.KindReport), reportHandler.Export)

		protected.GET("/events", eventsHandler.Stream)
	}

	// User management
	users := protected.Group("/users")
	{
		users.GET("", middleware.Authorize(policy.ActionView, policy.KindPrincipal), userHandler.List)
		users.POST("", userHandler.Create)
		users.PUT("/:id/role", userHandler.UpdateRole)
		users.PUT("/:id/status", userHandler.UpdateStatus)
		users.PUT("/:id/permissions", userHandler.UpdatePermissions)
		users.DELETE("/:id", userHandler.Delete)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return authLimiter
}
