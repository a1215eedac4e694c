package bootstrap

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"weightguard/internal/business"
	"weightguard/pkg/config"
	"weightguard/pkg/infra/mysql"
	"weightguard/pkg/infra/redis"
	"weightguard/pkg/lmstfy"
	"weightguard/pkg/logger"
	"weightguard/pkg/mailer"
)

// App 组装好的业务服务与基础设施
type App struct {
	Settings   *business.SettingsService
	Reports    *business.ReportService
	Exporter   *business.CSVExporter
	Checker    *business.ProductChecker
	Reanalysis *business.ReanalysisService
	Bulk       *business.BulkService
	Digest     *business.DigestService
	AlertMail  *business.AlertMailService
	Purge      *business.PurgeService

	PubSub *redis.PubSub
	// Queue 未配置 lmstfy.host 时为 nil
	Queue *lmstfy.Client

	db    *gorm.DB
	redis *goredis.Client
}

// Build 按配置连接 MySQL / Redis / Lmstfy / SMTP 并组装服务
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	db, err := mysql.Open(cfg.MySQL)
	if err != nil {
		return nil, err
	}

	prefix := cfg.WordPress.TablePrefix
	products := mysql.NewProductDAO(db, prefix)
	statuses := mysql.NewStatusDAO(db, prefix)
	options := mysql.NewOptionsDAO(db, prefix)

	if cfg.MySQL.AutoMigrate {
		if err := statuses.AutoMigrate(ctx); err != nil {
			_ = mysql.Close(db)
			return nil, fmt.Errorf("auto migrate failed: %w", err)
		}
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		_ = mysql.Close(db)
		return nil, err
	}
	pubsub := redis.NewPubSub(rdb, cfg.Redis.AlertChannel, log)
	cache := redis.NewReportCache(rdb, cfg.Redis.ReportCacheKey)

	var mail business.Mailer = mailer.Disabled{}
	if cfg.SMTP.Host != "" {
		m, err := mailer.New(cfg.SMTP, log)
		if err != nil {
			_ = rdb.Close()
			_ = mysql.Close(db)
			return nil, err
		}
		mail = m
	} else {
		log.Warnf(ctx, "[Bootstrap] smtp.host not set, emails are disabled")
	}

	var queue *lmstfy.Client
	if cfg.Lmstfy.Host != "" {
		queue, err = lmstfy.NewClient(cfg.Lmstfy, cfg.Jobs)
		if err != nil {
			_ = rdb.Close()
			_ = mysql.Close(db)
			return nil, err
		}
	}

	settings := business.NewSettingsService(options, cache, log)
	reports := business.NewReportService(products, settings, cache, cfg.Redis.ReportCacheTTL, log)
	exporter := business.NewCSVExporter(reports, cfg.WordPress.SiteURL)
	checker := business.NewProductChecker(products, statuses, settings, pubsub, cache, log)

	return &App{
		Settings:   settings,
		Reports:    reports,
		Exporter:   exporter,
		Checker:    checker,
		Reanalysis: business.NewReanalysisService(products, statuses, settings, pubsub, cache, log),
		Bulk:       business.NewBulkService(products, statuses, settings, checker, pubsub, cache, log),
		Digest:     business.NewDigestService(settings, reports, exporter, mail, cfg.WordPress.SiteName, log),
		AlertMail:  business.NewAlertMailService(settings, exporter, mail, log),
		Purge:      business.NewPurgeService(statuses, options, cache, log),
		PubSub:     pubsub,
		Queue:      queue,
		db:         db,
		redis:      rdb,
	}, nil
}

// Close 释放连接
func (a *App) Close() error {
	return errors.Join(a.redis.Close(), mysql.Close(a.db))
}

// WatchLogLevel 配置文件变更时热更新日志级别
func WatchLogLevel(loader *config.Loader, zl *logger.ZapLogger) {
	loader.Watch(func(c *config.Config) {
		if c.App.LogLevel != zl.Level() {
			zl.SetLevel(c.App.LogLevel)
			zl.Infof(context.Background(), "[Config] log level changed to %s", zl.Level())
		}
	}, func(err error) {
		zl.Warnf(context.Background(), "[Config] reload failed, keeping previous config: %v", err)
	})
}
