package router

import (
	"time"

	"github.com/plradhouane-dev/gmao/internal/config"
	"github.com/plradhouane-dev/gmao/internal/handler"
	"github.com/plradhouane-dev/gmao/internal/middleware"
	"github.com/plradhouane-dev/gmao/internal/repository"
	"github.com/plradhouane-dev/gmao/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	partRepo := repository.NewPartRepository(db)
	interventionRepo := repository.NewInterventionRepository(db)
	movementRepo := repository.NewPartMovementRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret,
		time.Duration(cfg.JWTExpirationHours)*time.Hour, cfg.InitialAdminPassword)
	equipmentSvc := service.NewEquipmentService(equipmentRepo)
	partsSvc := service.NewPartsService(partRepo, movementRepo, cfg.LowStockThreshold)
	interventionSvc := service.NewInterventionService(interventionRepo, partRepo, equipmentRepo, movementRepo)
	scheduleSvc := service.NewScheduleService(scheduleRepo, equipmentRepo)
	reportSvc := service.NewReportService(interventionRepo, cfg.PDFStoragePath, cfg.CurrencySymbol)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	equipmentH := handler.NewEquipmentHandler(equipmentSvc)
	partsH := handler.NewPartsHandler(partsSvc)
	interventionsH := handler.NewInterventionsHandler(interventionSvc, reportSvc)
	schedulesH := handler.NewSchedulesHandler(scheduleSvc)
	healthH := handler.NewHealthHandler(db, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", healthH.Check)

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	jwtMW := middleware.JWTAuth(authSvc)
	sessionMW := middleware.SessionLoader(userRepo)

	// Change-password is reachable with either token scope: it is the
	// only operation a forced-password-change account may perform.
	r.POST("/v1/auth/change-password", jwtMW, authH.ChangePassword)

	// Everything else requires a full-scope token and a resolved session.
	v1 := r.Group("/v1", jwtMW, middleware.RequireFullScope(), sessionMW)
	{
		v1.GET("/auth/me", authH.Me)

		eq := v1.Group("/equipment")
		{
			eq.POST("", equipmentH.Create)
			eq.GET("", equipmentH.List)
			eq.GET("/:id", equipmentH.Get)
			eq.PUT("/:id", equipmentH.Update)
			eq.GET("/serial/:serial", equipmentH.LookupBySerial)
			eq.GET("/:id/interventions", interventionsH.ListByEquipment)
		}

		parts := v1.Group("/parts")
		{
			parts.POST("", partsH.Create)
			parts.GET("", partsH.List)
			parts.GET("/low-stock", partsH.ListLowStock)
			parts.GET("/movements", partsH.ListMovements)
			parts.GET("/export", partsH.ExportStock)
			parts.GET("/:id", partsH.Get)
			parts.PUT("/:id", partsH.Update)
			parts.DELETE("/:id", partsH.Delete)
			parts.PATCH("/:id/stock", partsH.AdjustStock)
		}

		iv := v1.Group("/interventions")
		{
			iv.POST("", interventionsH.Create)
			iv.GET("/:id", interventionsH.Get)
			iv.PUT("/:id", interventionsH.Update)
			iv.DELETE("/:id", interventionsH.Delete)
			iv.GET("/:id/pdf", interventionsH.ExportPDF)
		}

		sch := v1.Group("/schedules")
		{
			sch.POST("", schedulesH.Create)
			sch.GET("", schedulesH.List)
			sch.GET("/upcoming", schedulesH.ListUpcoming)
			sch.GET("/:id", schedulesH.Get)
			sch.PUT("/:id", schedulesH.Update)
			sch.DELETE("/:id", schedulesH.Delete)
		}

		users := v1.Group("/users")
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.PUT("/:id/permissions", usersH.UpdatePermissions)
			users.POST("/:id/reset-password", usersH.ResetPassword)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	return r
}
