package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"

	"RostrDating/config"
	"RostrDating/internal/kvstore"
	"RostrDating/internal/middleware"
	"RostrDating/internal/queue"
	"RostrDating/internal/router"
	"RostrDating/internal/service"
	"RostrDating/pkg/logger"
	"RostrDating/pkg/metrics"
	"RostrDating/pkg/otel"
	"RostrDating/pkg/sms"
	"RostrDating/pkg/snowflake"
	"RostrDating/pkg/token"
	"RostrDating/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	if err := config.Cfg.Validate(); err != nil {
		logger.Logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	// otel 需要先于中间件和存储装饰器初始化，它们在创建时取全局 provider
	if config.Cfg.OTelEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    config.Cfg.ServiceName,
			ServiceVersion: config.Cfg.Version,
			Environment:    config.Cfg.Environment,
			OTLPEndpoint:   config.Cfg.OTelEndpoint,
			SampleRatio:    config.Cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, continuing without export", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()
		}
	}

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := sms.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize SMS client", zap.Error(err))
	}

	// token 在中间件前初始化，middleware 依赖 token
	if err := token.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize token package", zap.Error(err))
	}

	if err := middleware.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize middlewares", zap.Error(err))
	}

	store, err := kvstore.New(config.Cfg, logger.Named("kvstore"))
	if err != nil {
		logger.Logger.Fatal("Failed to initialize key/value store", zap.Error(err))
	}

	var publisher queue.Publisher = queue.NewLogPublisher(logger.Named("events"))
	if config.Cfg.MQEnabled {
		publisher = queue.NewAMQPPublisher(config.Cfg.EventsExchange, logger.Named("events"))
	}

	service.Init(service.Deps{
		Store:     store,
		Publisher: publisher,
		SMS:       sms.GetClient(),
		Logger:    logger.Logger,
		Config:    config.Cfg,
	})

	logger.Logger.Info("Server starting",
		zap.String("service", config.Cfg.ServiceName),
		zap.String("port", config.Cfg.ServerPort),
		zap.String("environment", config.Cfg.Environment),
		zap.String("store_backend", config.Cfg.StoreBackend),
	)

	addr := net.JoinHostPort(config.Cfg.ServerHost, config.Cfg.ServerPort)
	tracer, tracingMiddleware := middleware.NewServerTracerConfig()
	h := server.Default(server.WithHostPorts(addr), tracer)
	h.Use(tracingMiddleware)

	router.Register(h.Engine)

	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}
