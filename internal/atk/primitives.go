package atk

import (
	"runtime"

	"github.com/fengyoulin/ctxmenu/internal/native"
)

// Primitives are the host's own routines for mutating a slot. They own the
// type-tag transitions and the lifetime of string payloads.
type Primitives interface {
	ChangeType(slot uintptr, t ValueType) error
	SetString(slot uintptr, s string) error
}

// CallFunc invokes the native routine at fn.
type CallFunc func(fn uintptr, args ...uintptr) uintptr

// NativePrimitives calls the host routines found by signature.
type NativePrimitives struct {
	ChangeTypeFn uintptr
	SetStringFn  uintptr
	Call         CallFunc
}

func (p NativePrimitives) ChangeType(slot uintptr, t ValueType) error {
	p.Call(p.ChangeTypeFn, slot, uintptr(t))
	return nil
}

// SetString passes a zero-terminated copy of s; the host duplicates it.
func (p NativePrimitives) SetString(slot uintptr, s string) error {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	p.Call(p.SetStringFn, slot, native.AddressOf(buf))
	runtime.KeepAlive(buf)
	return nil
}

// SetUInt retypes slot i as an unsigned integer holding n.
func SetUInt(p Primitives, v Values, i int, n uint32) error {
	if err := p.ChangeType(v.Slot(i), TypeUInt); err != nil {
		return err
	}
	return native.WriteU32(v.Mem, v.Slot(i)+payloadOffset, n)
}

// SetInt retypes slot i as a signed integer holding n.
func SetInt(p Primitives, v Values, i int, n int32) error {
	if err := p.ChangeType(v.Slot(i), TypeInt); err != nil {
		return err
	}
	return native.WriteU32(v.Mem, v.Slot(i)+payloadOffset, uint32(n))
}

// SetString retypes slot i as a string holding s.
func SetString(p Primitives, v Values, i int, s string) error {
	if err := p.ChangeType(v.Slot(i), TypeString); err != nil {
		return err
	}
	return p.SetString(v.Slot(i), s)
}
