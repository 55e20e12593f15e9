package sigscan

import (
	"errors"
	"testing"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("E8 ?? ? 41 8b")
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 5 {
		t.Fatalf("Len = %d, want 5", p.Len())
	}
	wantMask := []bool{true, false, false, true, true}
	for i, m := range wantMask {
		if p.mask[i] != m {
			t.Errorf("mask[%d] = %v, want %v", i, p.mask[i], m)
		}
	}
	if p.bytes[4] != 0x8B {
		t.Errorf("bytes[4] = 0x%X, want 0x8B", p.bytes[4])
	}
}

func TestParsePatternErrors(t *testing.T) {
	for _, s := range []string{"", "E8 GG", "E8 123", "?? E8"} {
		if _, err := ParsePattern(s); !errors.Is(err, ErrBadPattern) {
			t.Errorf("ParsePattern(%q) error = %v, want ErrBadPattern", s, err)
		}
	}
}

func TestIndex(t *testing.T) {
	buf := []byte{0x90, 0x48, 0x8B, 0x05, 0x11, 0x22, 0x48, 0x8B, 0x0D, 0x48, 0x8B, 0x05, 0x33}
	p, _ := ParsePattern("48 8B 05 ??")

	if i := p.Index(buf, 0); i != 1 {
		t.Errorf("Index = %d, want 1", i)
	}
	if i := p.Index(buf, 2); i != 9 {
		t.Errorf("Index from 2 = %d, want 9", i)
	}
	got := p.All(buf)
	if len(got) != 2 || got[0] != 1 || got[1] != 9 {
		t.Errorf("All = %v, want [1 9]", got)
	}

	short, _ := ParsePattern("48 8B 05 33 44")
	if i := short.Index(buf, 0); i != -1 {
		t.Errorf("Index past end = %d, want -1", i)
	}
}
