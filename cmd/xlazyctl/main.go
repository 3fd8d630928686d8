// xlazyctl 以命令行方式运行延迟加载边界。
//
// 用法:
//
//	xlazyctl <命令> [命令参数]
//
// 命令:
//
//	serve    按配置文件启动 HTTP 宿主，配置变化后新策略作用于下一代加载实例
//	load     按配置同步加载一次资源并输出到标准输出
//	version  显示版本信息
//
// 退出码:
//
//	0: 成功
//	1: 运行失败（加载重试耗尽、服务异常退出）
//	2: 参数错误（缺少配置文件、配置校验失败、未知命令）
//
// 示例:
//
//	xlazyctl serve -c widgets.yaml
//	xlazyctl load -c widgets.yaml --retries 5
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

// createApp 创建 CLI 应用。
func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xlazyctl",
		Usage:     "延迟加载边界命令行工具",
		Version:   versionString(),
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			createServeCommand(),
			createLoadCommand(),
			createVersionCommand(),
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := createApp(stdout, stderr)
	if err := app.Run(ctx, args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		var exitCoder cli.ExitCoder
		if errors.As(err, &exitCoder) {
			return 2
		}
		fmt.Fprintf(stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}
