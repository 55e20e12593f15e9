// Package nativetest provides a synthetic address space for tests.
package nativetest

import (
	"fmt"

	"github.com/fengyoulin/ctxmenu/internal/native"
)

const (
	arenaBase = 0x10000
	align     = 0x10
	// unmapped gap between blocks so overruns fault
	guard = 0x100
)

type block struct {
	base uintptr
	data []byte
}

// Arena is a sparse address space made of zeroed blocks.
type Arena struct {
	next   uintptr
	blocks []*block
}

var _ native.Memory = (*Arena)(nil)

func NewArena() *Arena {
	return &Arena{next: arenaBase}
}

// Alloc maps n zeroed bytes and returns their address.
func (a *Arena) Alloc(n int) uintptr {
	b := &block{base: a.next, data: make([]byte, n)}
	a.blocks = append(a.blocks, b)
	a.next += (uintptr(n) + guard + align - 1) &^ (align - 1)
	return b.base
}

// AllocString maps s followed by a zero byte.
func (a *Arena) AllocString(s string) uintptr {
	p := a.Alloc(len(s) + 1)
	copy(a.find(p, 1).data, s)
	return p
}

func (a *Arena) find(addr, n uintptr) *block {
	for _, b := range a.blocks {
		if addr >= b.base && addr+n <= b.base+uintptr(len(b.data)) {
			return b
		}
	}
	return nil
}

func (a *Arena) ReadAt(p []byte, addr uintptr) error {
	if addr == 0 {
		return native.ErrNullPointer
	}
	b := a.find(addr, uintptr(len(p)))
	if b == nil {
		return fmt.Errorf("%w: read 0x%X+%d", native.ErrFault, addr, len(p))
	}
	copy(p, b.data[addr-b.base:])
	return nil
}

func (a *Arena) WriteAt(p []byte, addr uintptr) error {
	if addr == 0 {
		return native.ErrNullPointer
	}
	b := a.find(addr, uintptr(len(p)))
	if b == nil {
		return fmt.Errorf("%w: write 0x%X+%d", native.ErrFault, addr, len(p))
	}
	copy(b.data[addr-b.base:], p)
	return nil
}

// Bytes returns a copy of n bytes at addr, failing the caller on a fault.
func (a *Arena) Bytes(addr uintptr, n int) []byte {
	p := make([]byte, n)
	if err := a.ReadAt(p, addr); err != nil {
		panic(err)
	}
	return p
}
