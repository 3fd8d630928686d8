package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xlazy/pkg/config/xconf"
	"github.com/omeyang/xlazy/pkg/lifecycle/xrun"
	"github.com/omeyang/xlazy/pkg/observability/xlog"
	"github.com/omeyang/xlazy/pkg/observability/xmetrics"
	"github.com/omeyang/xlazy/pkg/suspense/xhost"
	"github.com/omeyang/xlazy/pkg/suspense/xlazy"
	"github.com/omeyang/xlazy/pkg/suspense/xsource"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func createServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "启动 HTTP 宿主",
		Flags: []cli.Flag{
			newConfigFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "覆盖配置中的监听地址",
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "边界挂载路径",
				Value: "/",
			},
		},
		Action: cmdServe,
	}
}

// writeBytes 消费方：原样输出加载到的片段。
func writeBytes(_ context.Context, w io.Writer, v []byte, _ xlazy.Mount) error {
	_, err := w.Write(v)
	return err
}

func cmdServe(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		return usagef("--config is required")
	}

	// 先读一次初始配置建立边界，之后的变化经由 watcher 回调作用于下一代实例
	var b *xlazy.Boundary[[]byte]
	var logger xlog.LoggerWithLevel
	cfg, watcher, err := xconf.WatchBoundary(path, func(next *xconf.Boundary, err error) {
		if b == nil {
			return
		}
		if err != nil {
			logger.Warn(context.Background(), "xlazy: config reload failed", xlog.Err(err))
			return
		}
		b.Reconfigure(xlazy.PolicyFromConfig(next))
		if lvl, perr := xlog.ParseLevel(next.Log.Level); perr == nil {
			logger.SetLevel(lvl)
		}
	})
	if err != nil {
		return &usageError{err: err}
	}
	if cfg.Source.Kind == "" {
		_ = watcher.Stop()
		return usagef("source.kind is required")
	}

	logger, cleanup, err := xlazy.LoggerFromConfig(cfg.Log)
	if err != nil {
		_ = watcher.Stop()
		return &usageError{err: err}
	}
	defer func() { _ = cleanup() }()
	xlog.SetDefault(logger)

	observer, err := xmetrics.NewOTelObserver()
	if err != nil {
		_ = watcher.Stop()
		return err
	}

	loader, closer, err := xsource.FromConfig(cfg.Source, xsource.WithLogger(logger))
	if err != nil {
		_ = watcher.Stop()
		return err
	}

	mountPath := cmd.String("path")
	opts := append(xlazy.FromConfig(cfg),
		xlazy.WithLogger(logger),
		xlazy.WithObserver(observer),
		xlazy.WithResetPath(xhost.ResetPath(mountPath)),
	)
	boundary, err := xlazy.New(loader, writeBytes, opts...)
	if err != nil {
		_ = watcher.Stop()
		_ = closer()
		return err
	}
	b = boundary

	addr := cfg.HTTP.Addr
	if a := cmd.String("addr"); a != "" {
		addr = a
	}
	mux := http.NewServeMux()
	mux.Handle("/", xhost.New(b,
		xhost.WithPath(mountPath),
		xhost.WithLogger(logger),
		xhost.WithObserver(observer),
	))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Info(ctx, "xlazy: serving",
		xlog.Boundary(cfg.Name),
		slog.String("addr", addr),
		slog.String("source", cfg.Source.Kind),
	)
	err = xrun.RunWithOptions(ctx,
		[]xrun.Option{xrun.WithName("xlazyctl"), xrun.WithLogger(logger)},
		xrun.HTTPServer(srv, shutdownTimeout),
		xrun.Blocking(watcher.Start, watcher.Stop),
		xrun.OnDone(b.Close),
		xrun.OnDone(closer),
	)
	if errors.Is(err, xrun.ErrSignal) {
		logger.Info(context.Background(), "xlazy: stopped", xlog.Err(err))
		return nil
	}
	return err
}
