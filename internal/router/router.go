package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tillpos/internal/config"
	"tillpos/internal/handler"
	"tillpos/internal/middleware"
	"tillpos/internal/repository"
	"tillpos/internal/service"
	"tillpos/internal/worker"
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
	productRepo := repository.NewProductRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	stockSvc := service.NewStockService(productRepo, movementRepo)
	productSvc := service.NewProductService(productRepo, stockSvc)
	sessionSvc := service.NewSessionService(sessionRepo, dispatcher)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, sessionSvc, productRepo, stockSvc, dispatcher)
	navigatorSvc := service.NewNavigatorService(invoiceRepo, sessionSvc)
	expenseSvc := service.NewExpenseService(expenseRepo, sessionSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUserHandler(authSvc)
	productsH := handler.NewProductHandler(productSvc, stockSvc, rdb)
	sessionH := handler.NewSessionHandler(sessionSvc)
	invoicesH := handler.NewInvoiceHandler(invoiceSvc, navigatorSvc)
	expensesH := handler.NewExpenseHandler(expenseSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check, no auth required
	r.GET("/v1/price/:barcode", productsH.PriceByBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/me", authH.Me)

		// Roles: cashier, supervisor, admin, declared per-endpoint
		anyRole := middleware.RequireRole("cashier", "supervisor", "admin")
		elevated := middleware.RequireRole("supervisor", "admin")

		session := v1.Group("/session")
		{
			session.POST("/open", anyRole, sessionH.Open)
			session.POST("/close", anyRole, sessionH.Close)
			session.GET("", anyRole, sessionH.Current)
			session.GET("/history", elevated, sessionH.History)
		}

		v1.POST("/invoices", anyRole, invoicesH.Create)
		v1.GET("/invoices/before", anyRole, invoicesH.Before)
		v1.GET("/invoices/after", anyRole, invoicesH.After)
		v1.GET("/invoices/:id", anyRole, invoicesH.Get)
		v1.PATCH("/invoices/:id/payment-type", elevated, invoicesH.Reclassify)

		expenses := v1.Group("/expenses")
		{
			expenses.POST("", anyRole, expensesH.Create)
			expenses.GET("", elevated, expensesH.List)
			expenses.GET("/current", anyRole, expensesH.ListCurrent)
			expenses.DELETE("/:id", elevated, expensesH.Delete)
		}
		v1.GET("/sessions/:id/expenses", elevated, expensesH.ListBySession)

		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.POST("/products/:id/stock", elevated, productsH.AdjustStock)
		v1.GET("/stock-movements", elevated, productsH.ListMovements)
		// Catalog writes are admin only
		prods := v1.Group("/products", middleware.RequireRole("admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Deactivate)
			prods.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		users := v1.Group("/users", middleware.RequireRole("admin"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
