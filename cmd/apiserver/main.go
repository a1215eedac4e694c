package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"weightguard/internal/bootstrap"
	"weightguard/internal/server/handlers/maintenance"
	"weightguard/internal/server/handlers/product"
	"weightguard/internal/server/handlers/report"
	"weightguard/internal/server/handlers/settings"
	"weightguard/internal/server/routers"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/apiserver.yaml", "配置文件路径")
	envFile    = flag.String("env", ".env", "环境变量文件路径")
)

func main() {
	flag.Parse()

	// 1. 加载配置
	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}
	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}
	if len(cfg.Server.APIKeys) == 0 {
		log.Fatalf("Config validation failed: server.api_keys is required")
	}

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()
	bootstrap.WatchLogLevel(loader, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 组装服务
	app, err := bootstrap.Build(ctx, cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer app.Close()

	var queue maintenance.JobQueue
	if app.Queue != nil {
		queue = app.Queue
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := routers.SetupRoutes(&routers.Handlers{
		Settings:    settings.NewSettingsHandler(app.Settings),
		Report:      report.NewReportHandler(app.Reports, app.Exporter),
		Product:     product.NewProductHandler(app.Checker, app.Bulk),
		Maintenance: maintenance.NewMaintenanceHandler(app.Reanalysis, app.Digest, queue),
	}, cfg.Server.APIKeys, zapLogger)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	// 4. 启动 HTTP Server，收到信号后优雅停机
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLogger.Infof(gctx, "Starting HTTP server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Infof(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Errorf(context.Background(), "Server exited with error: %v", err)
		return
	}
	zapLogger.Infof(context.Background(), "Application stopped")
}
