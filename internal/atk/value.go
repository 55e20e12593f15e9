// Package atk describes the host UI's argument slots: a contiguous array of
// 16-byte values, each a type tag followed by a payload.
//
//	+0x0  uint32  type tag
//	+0x8  payload int32 / uint32 / bool (1 byte) / pointer to UTF-8 string
package atk

import (
	"errors"
	"fmt"

	"github.com/fengyoulin/ctxmenu/internal/native"
)

// ValueSize is the size of one argument slot.
const ValueSize = 0x10

const (
	typeOffset    = 0x0
	payloadOffset = 0x8
)

// ValueType is the type tag of a slot.
type ValueType uint32

const (
	TypeUndefined       ValueType = 0
	TypeNull            ValueType = 1
	TypeBool            ValueType = 2
	TypeInt             ValueType = 3
	TypeUInt            ValueType = 4
	TypeFloat           ValueType = 5
	TypeString          ValueType = 6
	TypeString8         ValueType = 8
	TypeAllocatedString ValueType = 0x26
)

// ErrNotString means a slot does not carry a string pointer.
var ErrNotString = errors.New("value is not a string")

func (t ValueType) isString() bool {
	return t == TypeString || t == TypeString8 || t == TypeAllocatedString
}

// Values is an argument array starting at Base.
type Values struct {
	Mem  native.Memory
	Base uintptr
}

// Slot returns the address of slot i.
func (v Values) Slot(i int) uintptr {
	return v.Base + uintptr(i)*ValueSize
}

func (v Values) Type(i int) (ValueType, error) {
	t, err := native.ReadU32(v.Mem, v.Slot(i)+typeOffset)
	return ValueType(t), err
}

func (v Values) Int(i int) (int32, error) {
	u, err := native.ReadU32(v.Mem, v.Slot(i)+payloadOffset)
	return int32(u), err
}

func (v Values) UInt(i int) (uint32, error) {
	return native.ReadU32(v.Mem, v.Slot(i)+payloadOffset)
}

func (v Values) Bool(i int) (bool, error) {
	b, err := native.ReadU8(v.Mem, v.Slot(i)+payloadOffset)
	return b != 0, err
}

// String reads the string slot i points to. An empty string reports ok == false.
func (v Values) String(i int) (s string, ok bool, err error) {
	t, err := v.Type(i)
	if err != nil {
		return "", false, err
	}
	if !t.isString() {
		return "", false, fmt.Errorf("slot %d: %w (type %d)", i, ErrNotString, t)
	}
	return native.ReadCStringAt(v.Mem, v.Slot(i)+payloadOffset)
}
