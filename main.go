package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"costeo/cache"
	"costeo/config"
	"costeo/controller"
	"costeo/database"
	"costeo/logger"
	"costeo/middleware"
	"costeo/route"
	"costeo/service"
	"costeo/storage"
	"costeo/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	})
	defer logger.Sync()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}
	catalog, err := database.LoadCatalog()
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	err = database.Seed(db, catalog, database.SeedOptions{
		AdminEmail:    cfg.Admin.Email,
		AdminPassword: cfg.Admin.Password,
	})
	if err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}

	store, closeStore := openCache(cfg)
	defer closeStore()

	images := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err := os.MkdirAll(cfg.Upload.Dir, 0755); err != nil {
		logger.Fatal("failed to create uploads directory", zap.Error(err))
	}

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	factor := cfg.Pricing.CostFactor

	ingredients := service.NewIngredientService(db)
	menus := service.NewMenuService(db, factor)
	ctrls := route.Controllers{
		Hotels:      controller.NewHotelController(service.NewHotelService(db, images, factor, catalog.DefaultCategories)),
		Restaurants: controller.NewRestaurantController(service.NewRestaurantService(db, images)),
		Categories:  controller.NewCategoryController(service.NewCategoryService(db), service.NewUnitService(db)),
		Ingredients: controller.NewIngredientController(ingredients),
		Recipes:     controller.NewRecipeController(service.NewRecipeService(db)),
		Dishes:      controller.NewDishController(service.NewDishService(db, images, factor)),
		Menus:       controller.NewMenuController(menus),
		Users:       controller.NewUserController(service.NewUserService(db, tokens, cfg.JWT.AccessTTL)),
		Reports: controller.NewReportController(
			service.NewReportService(menus, ingredients),
			service.NewDashboardService(db, factor),
		),
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	router.Use(middleware.NewMetrics(registry).Handler())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader, middleware.CacheHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Static("/uploads", cfg.Upload.Dir)
	route.Register(router, ctrls, route.Options{
		Tokens:   tokens,
		Cache:    store,
		CacheTTL: cfg.Cache.TTL,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server exited")
}

// openCache returns Redis when enabled and reachable, otherwise the in-memory store.
func openCache(cfg *config.Config) (cache.Store, func()) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryStore(), func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rs, err := cache.NewRedisStore(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("redis unavailable, using in-memory page cache", zap.Error(err))
		return cache.NewMemoryStore(), func() {}
	}
	return rs, func() { rs.Close() }
}
