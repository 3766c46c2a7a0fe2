package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/stockhub/backend/internal/application/identity"
	"github.com/stockhub/backend/internal/infrastructure/auth"
	"github.com/stockhub/backend/internal/infrastructure/config"
	"github.com/stockhub/backend/internal/infrastructure/logger"
	"github.com/stockhub/backend/internal/infrastructure/persistence"
	"github.com/stockhub/backend/internal/infrastructure/tenantstore"
	"github.com/stockhub/backend/internal/interfaces/http/handler"
	"github.com/stockhub/backend/internal/interfaces/http/middleware"
	"github.com/stockhub/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting StockHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Control-plane database connected")

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	grantRepo := persistence.NewGormGrantRepository(db.DB)

	// Per-tenant store factory
	storeFactory := tenantstore.NewFactory(tenantRepo, cfg.TenantStore, log)
	defer storeFactory.CloseAll()

	// Token infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		blacklist = redisBlacklist
		log.Info("Redis token blacklist enabled")
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Info("In-memory token blacklist enabled")
	}

	// Application services
	tenantService := identityapp.NewTenantDirectoryService(tenantRepo, log)
	hierarchyService := identityapp.NewHierarchyService(userRepo, log)
	accessService := identityapp.NewAccessService(userRepo, storeFactory, log)
	permissionService := identityapp.NewPermissionService(grantRepo, userRepo, hierarchyService, log)
	userService := identityapp.NewUserAdminService(userRepo, grantRepo, tenantService, hierarchyService, accessService, log)
	authService := identityapp.NewAuthService(userRepo, tenantService, jwtService, blacklist, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	permissionHandler := handler.NewPermissionHandler(permissionService)
	accessHandler := handler.NewAccessHandler(accessService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	systemHandler := handler.NewSystemHandler(db)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	// Health check outside API versioning
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: log,
	}))

	// Public and session routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)

	// Caller-scoped routes
	meRoutes := router.NewDomainGroup("me", "/me")
	meRoutes.GET("/permissions", permissionHandler.GetOwnPermissions)

	accessRoutes := router.NewDomainGroup("access", "/access")
	accessRoutes.GET("/branches", accessHandler.ListBranches)
	accessRoutes.GET("/counters", accessHandler.ListCounters)
	accessRoutes.GET("/branches/:branchId", accessHandler.CheckBranch)
	accessRoutes.GET("/counters/:counterId", accessHandler.CheckCounter)
	accessRoutes.GET("/check", accessHandler.Check)

	permCheckRoutes := router.NewDomainGroup("permissions", "/permissions")
	permCheckRoutes.POST("/check", permissionHandler.CheckPermission)

	// Admin routes guarded by the live admin flag
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(middleware.RequireAdmin(accessService))

	adminRoutes.POST("/users", userHandler.Create)
	adminRoutes.GET("/users", userHandler.List)
	adminRoutes.GET("/users/:userId", userHandler.GetByID)
	adminRoutes.PUT("/users/:userId", userHandler.Update)
	adminRoutes.PUT("/users/:userId/scope", userHandler.Update)
	adminRoutes.POST("/users/:userId/reset-password", userHandler.ResetPassword)
	adminRoutes.POST("/users/:userId/activate", userHandler.Activate)
	adminRoutes.POST("/users/:userId/deactivate", userHandler.Deactivate)
	adminRoutes.DELETE("/users/:userId", userHandler.Deactivate)

	adminRoutes.GET("/users/:userId/permissions", permissionHandler.GetUserPermissions)
	adminRoutes.PUT("/users/:userId/permissions", permissionHandler.SetUserPermissions)
	adminRoutes.POST("/users/:userId/permissions", permissionHandler.SetUserPermissions)
	adminRoutes.DELETE("/users/:userId/permissions", permissionHandler.RemoveAllUserPermissions)
	adminRoutes.DELETE("/users/:userId/permissions/:module", permissionHandler.RemoveUserPermission)
	adminRoutes.GET("/users/:userId/permissions/summary", permissionHandler.GetUserPermissionSummary)

	adminRoutes.GET("/permissions", permissionHandler.GetManagedPermissions)
	adminRoutes.GET("/permissions/modules", permissionHandler.ListModules)
	adminRoutes.POST("/permissions/bulk-update", permissionHandler.BulkUpdatePermissions)
	adminRoutes.POST("/permissions/bulk-remove", permissionHandler.BulkRemovePermissions)

	adminRoutes.POST("/tenants", tenantHandler.Register)
	adminRoutes.GET("/tenants", tenantHandler.List)
	adminRoutes.POST("/tenants/:code/activate", tenantHandler.Activate)
	adminRoutes.POST("/tenants/:code/deactivate", tenantHandler.Deactivate)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(authRoutes)
	r.Register(meRoutes)
	r.Register(accessRoutes)
	r.Register(permCheckRoutes)
	r.Register(adminRoutes)
	r.Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
