package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 WG_MYSQL_DSN 覆盖 mysql.dsn
const EnvPrefix = "WG"

// Config 全局配置
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	WordPress WordPressConfig `mapstructure:"wordpress"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Lmstfy    LmstfyConfig    `mapstructure:"lmstfy"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Workers   []WorkerConfig  `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig 管理 API 配置
type ServerConfig struct {
	Addr            string         `mapstructure:"addr"`
	ShutdownTimeout time.Duration  `mapstructure:"shutdown_timeout"`
	APIKeys         []APIKeyConfig `mapstructure:"api_keys"`
}

// APIKeyConfig API Key 与角色（admin 可写，viewer 只读）
type APIKeyConfig struct {
	Name string `mapstructure:"name"`
	Key  string `mapstructure:"key"`
	Role string `mapstructure:"role"`
}

// WordPressConfig WordPress 站点配置
type WordPressConfig struct {
	TablePrefix string `mapstructure:"table_prefix"`
	SiteURL     string `mapstructure:"site_url"`
	SiteName    string `mapstructure:"site_name"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr           string        `mapstructure:"addr"`
	Password       string        `mapstructure:"password"`
	DB             int           `mapstructure:"db"`
	AlertChannel   string        `mapstructure:"alert_channel"`
	ReportCacheKey string        `mapstructure:"report_cache_key"`
	ReportCacheTTL time.Duration `mapstructure:"report_cache_ttl"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Token     string `mapstructure:"token"`
}

// JobsConfig 任务发布配置
type JobsConfig struct {
	Queue string `mapstructure:"queue"` // 所有动作共用的队列，按 action_type 路由
	TTL   uint32 `mapstructure:"ttl"`   // 任务存活时间（秒），0 表示永不过期
	Tries uint16 `mapstructure:"tries"` // 最大投递次数
}

// SMTPConfig 邮件配置
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	TLS      string        `mapstructure:"tls"` // mandatory / opportunistic / none
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig 汇总邮件调度配置
type SchedulerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Location      string        `mapstructure:"location"`       // 时区，例如 America/Sao_Paulo
	CheckInterval time.Duration `mapstructure:"check_interval"` // 重新读取配置的间隔
}

// WorkerConfig Worker 配置
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数（默认 1，避免同一商品并发写）
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// Loader 配置加载器（持有独立的 viper 实例，支持热更新）
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader 创建配置加载器
func NewLoader(configPath string) *Loader {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{v: v, path: configPath}
}

// Load 读取并解析配置
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	cfg.applyWorkerDefaults()

	return &cfg, nil
}

// Watch 监听配置文件变化，重新加载成功后回调 onChange
// 加载失败时保留旧配置，只回调 onError
func (l *Loader) Watch(onChange func(*Config), onError func(error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.Load()
		if err != nil {
			onError(err)
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}

// LoadEnv 加载 .env 文件到进程环境变量（文件不存在时忽略）
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s failed: %w", f, err)
		}
	}
	return nil
}

// setDefaults 默认值（同时让 AutomaticEnv 能覆盖这些键）
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "weightguard")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("wordpress.table_prefix", "wp_")
	v.SetDefault("wordpress.site_url", "http://localhost")
	v.SetDefault("wordpress.site_name", "")

	v.SetDefault("mysql.dsn", "")
	v.SetDefault("mysql.max_open_conns", 10)
	v.SetDefault("mysql.max_idle_conns", 5)
	v.SetDefault("mysql.conn_max_lifetime", time.Hour)
	v.SetDefault("mysql.auto_migrate", true)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.alert_channel", "weightguard.alerts")
	v.SetDefault("redis.report_cache_key", "weightguard:report")
	v.SetDefault("redis.report_cache_ttl", time.Hour)

	v.SetDefault("lmstfy.host", "")
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.namespace", "weightguard")
	v.SetDefault("lmstfy.token", "")

	v.SetDefault("jobs.queue", "weightguard_jobs")
	v.SetDefault("jobs.ttl", 0)
	v.SetDefault("jobs.tries", 3)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.tls", "opportunistic")
	v.SetDefault("smtp.timeout", 15*time.Second)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.location", "Local")
	v.SetDefault("scheduler.check_interval", 5*time.Minute)
}

// applyWorkerDefaults Worker 未配置的字段使用默认值
func (c *Config) applyWorkerDefaults() {
	for i := range c.Workers {
		w := &c.Workers[i]
		if w.QueueName == "" {
			w.QueueName = c.Jobs.Queue
		}
		if w.Subscriber.Threads <= 0 {
			w.Subscriber.Threads = 1
		}
		if w.Subscriber.Timeout <= 0 {
			w.Subscriber.Timeout = 3 * time.Second
		}
		if w.Subscriber.TTR <= 0 {
			w.Subscriber.TTR = 60 * time.Second
		}
		if w.Subscriber.ErrorBackoff <= 0 {
			w.Subscriber.ErrorBackoff = time.Second
		}
		if w.Processor.Threads <= 0 {
			w.Processor.Threads = 1
		}
		if w.Processor.Timeout <= 0 {
			w.Processor.Timeout = 5 * time.Minute
		}
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.WordPress.TablePrefix == "" {
		return fmt.Errorf("wordpress.table_prefix is required")
	}
	for _, k := range c.Server.APIKeys {
		if k.Key == "" {
			return fmt.Errorf("server.api_keys[%s].key is required", k.Name)
		}
		if k.Role != RoleAdmin && k.Role != RoleViewer {
			return fmt.Errorf("server.api_keys[%s].role must be %s or %s", k.Name, RoleAdmin, RoleViewer)
		}
	}
	return nil
}

// ValidateWorker 验证 Worker 进程所需配置
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}

// API Key 角色
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)
