package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"weightguard/internal/bootstrap"
	"weightguard/pkg/config"
	"weightguard/pkg/logger"
)

// cli 命令行全局参数与延迟初始化的服务
type cli struct {
	configPath string
	envFile    string
	verbose    bool
	timeout    time.Duration

	app *bootstrap.App
	log *logger.ZapLogger
}

func main() {
	c := &cli{}
	err := newRootCmd(c).Execute()
	c.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "wgctl",
		Short: "WeightGuard operator CLI",
		Long: `wgctl runs WeightGuard maintenance tasks directly against the store.

Available commands:
  check      - Check a single product and print its notices
  reanalyze  - Re-check the whole catalog
  export     - Export the problem report as CSV
  digest     - Send the digest email now
  settings   - Show the current settings
  purge      - Remove every alert record and plugin option`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "./config/apiserver.yaml", "Config file path")
	root.PersistentFlags().StringVar(&c.envFile, "env", ".env", "Env file path")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Minute, "Operation timeout")

	root.AddCommand(
		newCheckCmd(c),
		newReanalyzeCmd(c),
		newExportCmd(c),
		newDigestCmd(c),
		newSettingsCmd(c),
		newPurgeCmd(c),
	)
	return root
}

// context 带超时的执行上下文
func (c *cli) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// load 加载配置并组装服务（只在需要访问存储的命令中调用）
func (c *cli) load(ctx context.Context) (*bootstrap.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	if err := config.LoadEnv(c.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	level := cfg.App.LogLevel
	if c.verbose {
		level = "debug"
	}
	c.log, err = logger.NewZapLogger(level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.app, err = bootstrap.Build(ctx, cfg, c.log)
	if err != nil {
		return nil, err
	}
	return c.app, nil
}

func (c *cli) close() {
	if c.app != nil {
		_ = c.app.Close()
		c.app = nil
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}

// printYAML 以 YAML 输出结果
func printYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output failed: %w", err)
	}
	return enc.Close()
}
