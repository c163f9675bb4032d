package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/bcdservices/dashboard-api/internal/config"
	"github.com/bcdservices/dashboard-api/internal/handler/client"
	"github.com/bcdservices/dashboard-api/internal/handler/health"
	"github.com/bcdservices/dashboard-api/internal/handler/invoice"
	"github.com/bcdservices/dashboard-api/internal/handler/product"
	"github.com/bcdservices/dashboard-api/internal/handler/revenue"
	"github.com/bcdservices/dashboard-api/internal/handler/schedule"
	"github.com/bcdservices/dashboard-api/internal/middleware"
	"github.com/bcdservices/dashboard-api/internal/repository/backend"
	"github.com/bcdservices/dashboard-api/internal/router"
	clientService "github.com/bcdservices/dashboard-api/internal/service/client"
	invoiceService "github.com/bcdservices/dashboard-api/internal/service/invoice"
	revenueService "github.com/bcdservices/dashboard-api/internal/service/revenue"
	"github.com/bcdservices/dashboard-api/internal/service/scheduler"
	"github.com/bcdservices/dashboard-api/internal/worker"
	"github.com/bcdservices/dashboard-api/pkg/auth"
	"github.com/bcdservices/dashboard-api/pkg/logger"
	"github.com/bcdservices/dashboard-api/pkg/messaging"
	"github.com/bcdservices/dashboard-api/pkg/messaging/redis"
	"github.com/bcdservices/dashboard-api/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml")
	flag.Parse()

	// A local .env is optional; real deployments set the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Err(err).Msg("failed to read .env")
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	log.Logger = appLogger.Zerolog()

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Schedule.LoadLocation()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load business time zone")
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.Monitoring.Namespace, reg)

	// Backend client and repositories
	backendClient, err := backend.NewClient(backend.Config{
		BaseURL:             cfg.Backend.URL,
		Token:               cfg.Backend.Token,
		Timeout:             cfg.Backend.Timeout,
		RatePerSecond:       cfg.Backend.RatePerSecond,
		Burst:               cfg.Backend.Burst,
		ConsecutiveFailures: cfg.Backend.Breaker.ConsecutiveFailures,
		OpenTimeout:         cfg.Backend.Breaker.OpenTimeout,
		Interval:            cfg.Backend.Breaker.Interval,
	}, backend.WithMetrics(m), backend.WithLogger(appLogger.With("backend")))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create backend client")
	}

	orderRepo := backend.NewOrderRepository(backendClient)
	blockedRepo := backend.NewBlockedDateRepository(backendClient)
	productRepo := backend.NewProductRepository(backendClient, cfg.Backend.ProductCacheTTL)
	clientRepo := backend.NewClientRepository(backendClient)
	invoiceRepo := backend.NewInvoiceRepository(backendClient)

	checks := map[string]health.Check{
		"backend": func(context.Context) error {
			if !backendClient.Available() {
				return errors.New("circuit breaker open")
			}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event broker
	var publisher messaging.Publisher = messaging.NopPublisher{}
	if cfg.Redis.Enabled() {
		broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
		publisher = messaging.NewChannelPublisher(broker, cfg.Redis.Channel)
		if pinger, ok := broker.(interface{ Ping(context.Context) error }); ok {
			checks["redis"] = pinger.Ping
		}
	}

	// Services
	schedulerSvc := scheduler.NewService(orderRepo, blockedRepo, loc,
		scheduler.WithPublisher(publisher),
		scheduler.WithMetrics(m),
		scheduler.WithLogger(appLogger.With("scheduler")),
	)
	clientSvc := clientService.NewService(clientRepo)
	invoiceSvc := invoiceService.NewService(invoiceRepo)
	revenueSvc := revenueService.NewService(invoiceRepo, revenueService.Config{
		PreviousYear: cfg.Revenue.PreviousYear,
		Adjustments:  cfg.Revenue.Adjustments,
	}, loc, revenueService.WithLogger(appLogger.With("revenue")))

	if err := schedulerSvc.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial week loaded with errors")
	}

	// Handlers
	var gatherer prometheus.Gatherer = reg
	if !cfg.Monitoring.PrometheusEnabled {
		gatherer = prometheus.NewRegistry()
	}
	handlers := router.Handlers{
		Health:   health.NewHandler(gatherer, checks),
		Schedule: schedule.NewHandler(schedulerSvc),
		Product:  product.NewHandler(productRepo),
		Client:   client.NewHandler(clientSvc),
		Invoice:  invoice.NewHandler(invoiceSvc),
		Revenue:  revenue.NewHandler(revenueSvc),
	}

	var authMiddleware *middleware.AuthMiddleware
	if cfg.Auth.Enabled {
		authMiddleware = middleware.NewAuthMiddleware(auth.NewHMACValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Leeway))
	} else {
		log.Warn().Msg("authentication disabled")
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = cfg.CORS.AllowedMethods
	corsConfig.AllowHeaders = cfg.CORS.AllowedHeaders

	routerConfig := router.RouterConfig{
		CORSConfig:     corsConfig,
		RequestTimeout: cfg.Server.RequestTimeout,
		ProductMaxAge:  int(cfg.Backend.ProductCacheTTL / time.Second),
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(handlers, authMiddleware, m, routerConfig)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go worker.NewRefreshWorker(schedulerSvc, cfg.Schedule.RefreshInterval, appLogger).Start(ctx)

	// Start server
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("location", loc.String()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited properly")
}
