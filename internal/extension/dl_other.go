//go:build !((darwin || freebsd || linux) && (amd64 || arm64) && !android)

package extension

import (
	"fmt"
	"runtime"
)

func openLibrary(path string) (library, error) {
	return nil, fmt.Errorf("native extensions are not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
}
