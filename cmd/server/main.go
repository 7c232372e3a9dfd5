package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/verdanthq/verdant/internal/alerting"
	"github.com/verdanthq/verdant/internal/cache"
	"github.com/verdanthq/verdant/internal/changelog"
	"github.com/verdanthq/verdant/internal/config"
	"github.com/verdanthq/verdant/internal/database"
	"github.com/verdanthq/verdant/internal/export"
	"github.com/verdanthq/verdant/internal/govee"
	"github.com/verdanthq/verdant/internal/handler"
	"github.com/verdanthq/verdant/internal/repository"
	"github.com/verdanthq/verdant/internal/secretbox"
	"github.com/verdanthq/verdant/internal/service"
	"github.com/verdanthq/verdant/internal/weather"
	"github.com/verdanthq/verdant/internal/ws"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	slog.Info("database connected")

	readingCache, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if readingCache != nil {
		defer readingCache.Close()
		slog.Info("redis connected", "addr", cfg.RedisAddr)
	}

	secrets, err := secretbox.New(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("init encryption: %w", err)
	}

	weatherClient := weather.NewClient(cfg.WeatherBaseURL, cfg.GeocodeBaseURL, cfg.OutboundTimeout)
	goveeClient := govee.NewClient(cfg.GoveeBaseURL, cfg.OutboundTimeout)

	userRepo := repository.NewUserRepository(db)
	gardenRepo := repository.NewGardenRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	zoneRepo := repository.NewZoneRepository(db)
	plantRepo := repository.NewPlantRepository(db)
	seedRepo := repository.NewSeedRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	logRepo := repository.NewLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	goveeRepo := repository.NewGoveeRepository(db)
	changeLogRepo := repository.NewChangeLogRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg)
	accessSvc := service.NewAccessService(gardenRepo)
	taskSvc := service.NewTaskService(equipmentRepo)
	tracker := changelog.NewTracker(changeLogRepo, slog.Default())
	hub := ws.NewHub(slog.Default())

	aggregator := alerting.NewAggregator(alerting.Deps{
		Gardens:       gardenRepo,
		Plants:        plantRepo,
		Tasks:         equipmentRepo,
		Devices:       goveeRepo,
		Zones:         zoneRepo,
		Notifications: notificationRepo,
		Weather:       weatherClient,
		Sensors:       goveeClient,
		Secrets:       secrets,
		Cache:         readingCache,
		Notifier:      hub,
		Logger:        slog.Default(),
	})

	exporter := export.New(export.Deps{
		Gardens:  gardenRepo,
		Rooms:    roomRepo,
		Zones:    zoneRepo,
		Plants:   plantRepo,
		Seeds:    seedRepo,
		Logs:     logRepo,
		Readings: goveeRepo,
	})

	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	gardenHandler := handler.NewGardenHandler(gardenRepo, userRepo, accessSvc, tracker)
	roomHandler := handler.NewRoomHandler(roomRepo, gardenRepo, accessSvc, tracker)
	zoneHandler := handler.NewZoneHandler(zoneRepo, roomRepo, goveeRepo, accessSvc, tracker)
	plantHandler := handler.NewPlantHandler(plantRepo, zoneRepo, accessSvc, tracker)
	seedHandler := handler.NewSeedHandler(seedRepo, accessSvc)
	equipmentHandler := handler.NewEquipmentHandler(equipmentRepo, roomRepo, accessSvc, taskSvc)
	logHandler := handler.NewLogHandler(logRepo, plantRepo, zoneRepo, accessSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	goveeHandler := handler.NewGoveeHandler(goveeRepo, zoneRepo, goveeClient, secrets, readingCache, accessSvc)
	changeLogHandler := handler.NewChangeLogHandler(changeLogRepo, gardenRepo, accessSvc)
	exportHandler := handler.NewExportHandler(exporter, gardenRepo, accessSvc)
	cronHandler := handler.NewCronHandler(aggregator)
	wsHandler := handler.NewWSHandler(hub)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewAppValidator()

	e.Use(echomw.RequestID())
	e.Use(handler.RequestLogger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return handler.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/google", authHandler.GoogleRedirect)
	auth.GET("/google/callback", authHandler.GoogleCallback)

	cron := api.Group("/cron", handler.CronAuth(cfg.CronSecret))
	cron.POST("/weather", cronHandler.Weather)
	cron.POST("/sensors", cronHandler.Sensors)
	cron.POST("/maintenance", cronHandler.Maintenance)

	authed := api.Group("", handler.JWTAuth(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/ws", wsHandler.Connect)

	authed.GET("/gardens", gardenHandler.List)
	authed.POST("/gardens", gardenHandler.Create)
	authed.GET("/gardens/:id", gardenHandler.Get)
	authed.PATCH("/gardens/:id", gardenHandler.Update)
	authed.DELETE("/gardens/:id", gardenHandler.Delete)
	authed.GET("/gardens/:id/members", gardenHandler.ListMembers)
	authed.DELETE("/gardens/:id/members/:userID", gardenHandler.RemoveMember)
	authed.POST("/gardens/:id/invites", gardenHandler.CreateInvite)
	authed.POST("/invites/accept", gardenHandler.AcceptInvite)

	authed.GET("/gardens/:id/rooms", roomHandler.List)
	authed.POST("/gardens/:id/rooms", roomHandler.Create)
	authed.GET("/rooms/:id", roomHandler.Get)
	authed.PATCH("/rooms/:id", roomHandler.Update)
	authed.DELETE("/rooms/:id", roomHandler.Delete)

	authed.GET("/rooms/:id/zones", zoneHandler.List)
	authed.POST("/rooms/:id/zones", zoneHandler.Create)
	authed.GET("/zones/:id", zoneHandler.Get)
	authed.PATCH("/zones/:id", zoneHandler.Update)
	authed.DELETE("/zones/:id", zoneHandler.Delete)
	authed.GET("/zones/:id/vpd", zoneHandler.VPD)

	authed.GET("/zones/:id/plants", plantHandler.List)
	authed.POST("/zones/:id/plants", plantHandler.Create)
	authed.GET("/plants/:id", plantHandler.Get)
	authed.PATCH("/plants/:id", plantHandler.Update)
	authed.DELETE("/plants/:id", plantHandler.Delete)

	authed.GET("/gardens/:id/seeds", seedHandler.List)
	authed.POST("/gardens/:id/seeds", seedHandler.Create)
	authed.GET("/seeds/:id", seedHandler.Get)
	authed.PATCH("/seeds/:id", seedHandler.Update)
	authed.DELETE("/seeds/:id", seedHandler.Delete)

	authed.GET("/rooms/:id/equipment", equipmentHandler.List)
	authed.POST("/rooms/:id/equipment", equipmentHandler.Create)
	authed.GET("/equipment/:id", equipmentHandler.Get)
	authed.PATCH("/equipment/:id", equipmentHandler.Update)
	authed.DELETE("/equipment/:id", equipmentHandler.Delete)
	authed.GET("/equipment/:id/tasks", equipmentHandler.ListTasks)
	authed.POST("/equipment/:id/tasks", equipmentHandler.CreateTask)
	authed.PATCH("/tasks/:id", equipmentHandler.UpdateTask)
	authed.DELETE("/tasks/:id", equipmentHandler.DeleteTask)
	authed.POST("/tasks/:id/complete", equipmentHandler.CompleteTask)

	authed.GET("/logs", logHandler.List)
	authed.POST("/logs", logHandler.Create)
	authed.DELETE("/logs/:id", logHandler.Delete)

	authed.GET("/notifications", notificationHandler.List)
	authed.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
	authed.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	authed.PUT("/govee/credential", goveeHandler.PutCredential)
	authed.GET("/govee/credential", goveeHandler.GetCredential)
	authed.GET("/govee/devices", goveeHandler.DiscoverDevices)
	authed.GET("/zones/:id/sensors", goveeHandler.ListSensors)
	authed.POST("/zones/:id/sensors", goveeHandler.RegisterSensor)
	authed.PATCH("/sensors/:id", goveeHandler.UpdateSensor)
	authed.DELETE("/sensors/:id", goveeHandler.DeleteSensor)
	authed.GET("/sensors/:id/readings", goveeHandler.ListReadings)
	authed.GET("/sensors/:id/latest", goveeHandler.LatestReading)

	authed.GET("/gardens/:id/changelog", changeLogHandler.List)
	authed.GET("/gardens/:id/export", exportHandler.Download)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}
