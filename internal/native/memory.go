// Package native reads and writes the host process's address space.
package native

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrNullPointer means an access through a zero address
	ErrNullPointer = errors.New("null pointer")
	// ErrFault means the address is not mapped or not accessible
	ErrFault = errors.New("memory fault")
)

// maxCString bounds the scan for a terminating zero byte.
const maxCString = 4096

// Memory is a byte-addressable view of an address space.
type Memory interface {
	ReadAt(p []byte, addr uintptr) error
	WriteAt(p []byte, addr uintptr) error
}

func ReadU8(m Memory, addr uintptr) (uint8, error) {
	var b [1]byte
	if err := m.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadU16(m Memory, addr uintptr) (uint16, error) {
	var b [2]byte
	if err := m.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func ReadU32(m Memory, addr uintptr) (uint32, error) {
	var b [4]byte
	if err := m.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func ReadU64(m Memory, addr uintptr) (uint64, error) {
	var b [8]byte
	if err := m.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// ReadPointer reads a 64-bit pointer.
func ReadPointer(m Memory, addr uintptr) (uintptr, error) {
	v, err := ReadU64(m, addr)
	return uintptr(v), err
}

func WriteU8(m Memory, addr uintptr, v uint8) error {
	return m.WriteAt([]byte{v}, addr)
}

func WriteU32(m Memory, addr uintptr, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return m.WriteAt(b[:], addr)
}

func WritePointer(m Memory, addr uintptr, v uintptr) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return m.WriteAt(b[:], addr)
}

// ReadCString reads the null-terminated UTF-8 string at addr.
// A zero address or a zero-length string reports ok == false.
func ReadCString(m Memory, addr uintptr) (s string, ok bool, err error) {
	if addr == 0 {
		return "", false, nil
	}
	var buf []byte
	var b [1]byte
	for i := uintptr(0); i < maxCString; i++ {
		if err := m.ReadAt(b[:], addr+i); err != nil {
			return "", false, err
		}
		if b[0] == 0 {
			break
		}
		buf = append(buf, b[0])
	}
	if len(buf) == 0 {
		return "", false, nil
	}
	return string(buf), true, nil
}

// ReadCStringAt follows the pointer stored at addr and reads the string it points to.
func ReadCStringAt(m Memory, addr uintptr) (string, bool, error) {
	p, err := ReadPointer(m, addr)
	if err != nil {
		return "", false, fmt.Errorf("read string pointer at 0x%X: %w", addr, err)
	}
	return ReadCString(m, p)
}
