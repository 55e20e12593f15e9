//go:build !windows

package hook

import (
	"fmt"
	"runtime"
)

func newCallback(fn any) (uintptr, error) {
	return 0, fmt.Errorf("%w: native callbacks on %s", ErrUnsupported, runtime.GOOS)
}

// Call invokes the native routine at fn. Only Windows hosts are supported.
func Call(fn uintptr, args ...uintptr) uintptr {
	panic(fmt.Errorf("%w: native call on %s", ErrUnsupported, runtime.GOOS))
}
