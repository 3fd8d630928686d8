package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xlazy/pkg/config/xconf"
	"github.com/omeyang/xlazy/pkg/resilience/xretry"
	"github.com/omeyang/xlazy/pkg/suspense/xlazy"
	"github.com/omeyang/xlazy/pkg/suspense/xsource"
)

// usageError 参数错误，退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func newConfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "边界配置文件（yaml/json）",
	}
}

// loadConfig 读取并校验配置，失败按参数错误处理。
func loadConfig(cmd *cli.Command) (*xconf.Boundary, error) {
	path := cmd.String("config")
	if path == "" {
		return nil, usagef("--config is required")
	}
	cfg, err := xconf.Load(path)
	if err != nil {
		return nil, &usageError{err: err}
	}
	if cfg.Source.Kind == "" {
		return nil, usagef("source.kind is required")
	}
	return cfg, nil
}

func createLoadCommand() *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "同步加载一次资源并输出",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.IntFlag{
				Name:  "retries",
				Usage: "覆盖配置中的尝试次数",
				Value: -1,
			},
			&cli.DurationFlag{
				Name:  "retry-delay",
				Usage: "覆盖配置中的基础延迟",
				Value: -1,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if n := cmd.Int("retries"); n >= 0 {
				cfg.Retries = n
			}
			if d := cmd.Duration("retry-delay"); d >= 0 {
				cfg.RetryDelay = d
			}
			return cmdLoad(ctx, cmd, cfg)
		},
	}
}

func cmdLoad(ctx context.Context, cmd *cli.Command, cfg *xconf.Boundary) error {
	loader, closer, err := xsource.FromConfig(cfg.Source)
	if err != nil {
		if errors.Is(err, xsource.ErrUnknownKind) {
			return &usageError{err: err}
		}
		return err
	}
	defer func() { _ = closer() }()

	var onRetry []func(int, time.Duration, error)
	if cfg.Verbose {
		onRetry = append(onRetry, func(attempt int, delay time.Duration, err error) {
			fmt.Fprintf(cmd.Root().ErrWriter, "xlazy: attempt %d failed, retry in %s: %v\n", attempt, delay, err)
		})
	}
	data, err := xlazy.Load(ctx, loader, xlazy.PolicyFromConfig(cfg), onRetry...)
	if err != nil {
		if xretry.IsPermanent(err) {
			return fmt.Errorf("load %s (not retried): %w", cfg.Name, err)
		}
		return fmt.Errorf("load %s: %w", cfg.Name, err)
	}
	_, err = cmd.Root().Writer.Write(data)
	return err
}

func createVersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "显示版本信息",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "xlazyctl %s\n", versionString())
			return err
		},
	}
}
