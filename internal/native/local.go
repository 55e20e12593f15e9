package native

import (
	"fmt"
	"runtime/debug"
	"unsafe"
)

// Local is the address space of the current process.
type Local struct{}

func makeSlice(addr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}

// ReadAt copies len(p) bytes starting at addr. An access violation is
// reported as ErrFault.
func (Local) ReadAt(p []byte, addr uintptr) (err error) {
	if addr == 0 {
		return ErrNullPointer
	}
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: read 0x%X+%d", ErrFault, addr, len(p))
		}
	}()
	copy(p, makeSlice(addr, uintptr(len(p))))
	return nil
}

// WriteAt copies p to addr. The pages must already be writable.
func (Local) WriteAt(p []byte, addr uintptr) (err error) {
	if addr == 0 {
		return ErrNullPointer
	}
	old := debug.SetPanicOnFault(true)
	defer func() {
		debug.SetPanicOnFault(old)
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: write 0x%X+%d", ErrFault, addr, len(p))
		}
	}()
	copy(makeSlice(addr, uintptr(len(p))), p)
	return nil
}

// AddressOf returns the address of the first byte of b. The caller keeps b
// alive for as long as the address is used.
func AddressOf(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}
