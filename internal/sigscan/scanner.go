package sigscan

import (
	"encoding/binary"
	"fmt"
)

const (
	opCallRel32 = 0xE8
	opJmpRel32  = 0xE9
)

// Scanner searches the code section of one image.
type Scanner struct {
	// address of text[0], absolute for a loaded module or a preferred-base
	// address for a file on disk
	textAddr uintptr
	text     []byte
	base     uintptr
}

// New returns a scanner over text, which is loaded at textAddr in an image
// based at base.
func New(base, textAddr uintptr, text []byte) *Scanner {
	return &Scanner{base: base, textAddr: textAddr, text: text}
}

func (s *Scanner) Base() uintptr {
	return s.base
}

// Scan returns the address of the first match of pattern.
func (s *Scanner) Scan(pattern string) (uintptr, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return 0, err
	}
	i := p.Index(s.text, 0)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, pattern)
	}
	return s.textAddr + uintptr(i), nil
}

// ScanText is Scan, but a match on a call or jump instruction resolves to
// the address it targets.
func (s *Scanner) ScanText(pattern string) (uintptr, error) {
	addr, err := s.Scan(pattern)
	if err != nil {
		return 0, err
	}
	return s.follow(addr)
}

// ScanAll returns the addresses of every match, unresolved.
func (s *Scanner) ScanAll(pattern string) ([]uintptr, error) {
	p, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	var out []uintptr
	for _, i := range p.All(s.text) {
		out = append(out, s.textAddr+uintptr(i))
	}
	return out, nil
}

func (s *Scanner) follow(addr uintptr) (uintptr, error) {
	off := int(addr - s.textAddr)
	op := s.text[off]
	if op != opCallRel32 && op != opJmpRel32 {
		return addr, nil
	}
	if off+5 > len(s.text) {
		return 0, fmt.Errorf("%w: truncated rel32 at 0x%X", ErrBadPattern, addr)
	}
	rel := int32(binary.LittleEndian.Uint32(s.text[off+1 : off+5]))
	return uintptr(int64(addr) + 5 + int64(rel)), nil
}
