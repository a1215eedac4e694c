package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weightguard/internal/bootstrap"
	"weightguard/internal/domains"
	"weightguard/internal/domains/common"
	"weightguard/internal/worker"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

var (
	configPath = flag.String("config", "./config/worker.yaml", "配置文件路径")
	envFile    = flag.String("env", ".env", "环境变量文件路径")
)

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("  WeightGuard Worker Starting...")
	log.Println("========================================")

	// 1. 加载配置
	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}
	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	log.Printf("Config loaded: %s, env: %s, log_level: %s\n", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()
	bootstrap.WatchLogLevel(loader, zapLogger)

	// 3. 组装服务
	app, err := bootstrap.Build(context.Background(), cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	defer app.Close()

	// 4. 创建 Manager
	proc := domains.GetProcess(zapLogger, &common.Services{
		Checker:    app.Checker,
		Reanalysis: app.Reanalysis,
		Digest:     app.Digest,
	})
	mgr, err := worker.NewManagerInstance(cfg, app.Queue, proc, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 告警事件 → 单商品告警邮件
	mgr.AddTask("alert-mailer", func(ctx context.Context) error {
		return app.PubSub.Subscribe(ctx, app.AlertMail.Handle)
	})

	// 汇总邮件调度
	if cfg.Scheduler.Enabled {
		loc, err := time.LoadLocation(cfg.Scheduler.Location)
		if err != nil {
			log.Fatalf("Invalid scheduler.location: %v", err)
		}
		scheduler := worker.NewScheduler(app.Settings, app.Queue, cfg.Scheduler.CheckInterval, loc, zapLogger)
		mgr.AddTask("digest-scheduler", scheduler.Run)
	}

	// 5. 启动 Manager
	go func() {
		if err := mgr.Start(); err != nil {
			log.Printf("Manager start failed: %v\n", err)
		}
	}()

	log.Println("Worker started. Press Ctrl+C to shutdown.")

	// 6. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal: %v, shutting down worker...\n", sig)

	// 7. 优雅关闭 Manager
	mgr.Shutdown()

	log.Println("Worker exited gracefully")
}
