package hook

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

// newCallback wraps fn so native code can call it.
func newCallback(fn any) (addr uintptr, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInputType, r)
		}
	}()
	return windows.NewCallback(fn), nil
}

// Call invokes the native routine at fn.
func Call(fn uintptr, args ...uintptr) uintptr {
	r, _, _ := syscall.SyscallN(fn, args...)
	return r
}
