package xsource

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/omeyang/xlazy/pkg/suspense/xloader"
)

// File 读取本地文件。
func File(path string) xloader.Loader[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(path)
		}
		return data, err
	}
}
