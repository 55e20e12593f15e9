// Package sigscan finds routines in an executable image by byte signature.
package sigscan

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadPattern means a signature string could not be parsed
	ErrBadPattern = errors.New("bad pattern")
	// ErrNotFound means no match in the scanned section
	ErrNotFound = errors.New("signature not found")
	// ErrNoTextSection means the image has no code section
	ErrNoTextSection = errors.New("no .text section")
)

// Pattern is a byte signature; bytes whose mask is false match anything.
type Pattern struct {
	bytes []byte
	mask  []bool
}

// ParsePattern parses space separated hex bytes, "?" or "??" being wildcards:
//
//	"E8 ?? ?? ?? ?? 48 8B 5C 24 ??"
func ParsePattern(s string) (Pattern, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Pattern{}, fmt.Errorf("%w: empty", ErrBadPattern)
	}
	p := Pattern{
		bytes: make([]byte, len(fields)),
		mask:  make([]bool, len(fields)),
	}
	for i, f := range fields {
		if f == "?" || f == "??" {
			continue
		}
		if len(f) != 2 {
			return Pattern{}, fmt.Errorf("%w: %q at %d", ErrBadPattern, f, i)
		}
		b, err := hex.DecodeString(f)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q at %d", ErrBadPattern, f, i)
		}
		p.bytes[i] = b[0]
		p.mask[i] = true
	}
	if !p.mask[0] {
		return Pattern{}, fmt.Errorf("%w: leading wildcard", ErrBadPattern)
	}
	return p, nil
}

func (p Pattern) Len() int {
	return len(p.bytes)
}

func (p Pattern) matchAt(buf []byte, i int) bool {
	for j := range p.bytes {
		if p.mask[j] && buf[i+j] != p.bytes[j] {
			return false
		}
	}
	return true
}

// Index returns the first offset in buf at or after from where p matches, or -1.
func (p Pattern) Index(buf []byte, from int) int {
	first := p.bytes[0]
	for i := from; i <= len(buf)-len(p.bytes); i++ {
		if buf[i] != first {
			continue
		}
		if p.matchAt(buf, i) {
			return i
		}
	}
	return -1
}

// All returns every match offset in buf.
func (p Pattern) All(buf []byte) []int {
	var out []int
	for i := p.Index(buf, 0); i >= 0; i = p.Index(buf, i+1) {
		out = append(out, i)
	}
	return out
}
