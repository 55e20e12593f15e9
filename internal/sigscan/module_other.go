//go:build !windows

package sigscan

import (
	"errors"
	"runtime"
)

func mainModule() (uintptr, error) {
	return 0, errors.New("sigscan: main module lookup not supported on " + runtime.GOOS)
}
