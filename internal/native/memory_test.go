package native_test

import (
	"errors"
	"testing"

	"github.com/fengyoulin/ctxmenu/internal/native"
	"github.com/fengyoulin/ctxmenu/internal/native/nativetest"
)

func TestReadIntegers(t *testing.T) {
	a := nativetest.NewArena()
	p := a.Alloc(16)
	if err := a.WriteAt([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}, p); err != nil {
		t.Fatal(err)
	}

	if v, _ := native.ReadU8(a, p); v != 0x01 {
		t.Errorf("ReadU8 = 0x%X, want 0x01", v)
	}
	if v, _ := native.ReadU16(a, p); v != 0x0201 {
		t.Errorf("ReadU16 = 0x%X, want 0x0201", v)
	}
	if v, _ := native.ReadU32(a, p); v != 0x04030201 {
		t.Errorf("ReadU32 = 0x%X, want 0x04030201", v)
	}
	if v, _ := native.ReadPointer(a, p); v != 0x0807060504030201 {
		t.Errorf("ReadPointer = 0x%X, want 0x0807060504030201", v)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	a := nativetest.NewArena()
	p := a.Alloc(16)
	if err := native.WriteU32(a, p+4, 0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if v, _ := native.ReadU32(a, p+4); v != 0xDEADBEEF {
		t.Errorf("ReadU32 = 0x%X, want 0xDEADBEEF", v)
	}
	if v, _ := native.ReadU32(a, p); v != 0 {
		t.Errorf("neighbour bytes changed: 0x%X", v)
	}
}

func TestReadCString(t *testing.T) {
	a := nativetest.NewArena()
	hello := a.AllocString("Examine")
	empty := a.AllocString("")

	tests := []struct {
		name   string
		addr   uintptr
		want   string
		wantOK bool
	}{
		{"text", hello, "Examine", true},
		{"empty", empty, "", false},
		{"null", 0, "", false},
	}
	for _, tt := range tests {
		s, ok, err := native.ReadCString(a, tt.addr)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if s != tt.want || ok != tt.wantOK {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.name, s, ok, tt.want, tt.wantOK)
		}
	}
}

func TestReadCStringAt(t *testing.T) {
	a := nativetest.NewArena()
	slot := a.Alloc(8)
	if err := native.WritePointer(a, slot, a.AllocString("Trade")); err != nil {
		t.Fatal(err)
	}
	s, ok, err := native.ReadCStringAt(a, slot)
	if err != nil || !ok || s != "Trade" {
		t.Errorf("ReadCStringAt = (%q, %v, %v), want (\"Trade\", true, nil)", s, ok, err)
	}
}

func TestFaults(t *testing.T) {
	a := nativetest.NewArena()
	p := a.Alloc(4)

	if _, err := native.ReadU64(a, p); !errors.Is(err, native.ErrFault) {
		t.Errorf("read past block: got %v, want ErrFault", err)
	}
	if _, err := native.ReadU32(a, 0); !errors.Is(err, native.ErrNullPointer) {
		t.Errorf("read null: got %v, want ErrNullPointer", err)
	}
}

// package level so the buffer lives on the heap and never moves
var localBuf = make([]byte, 8)

func TestLocalReadWrite(t *testing.T) {
	addr := native.AddressOf(localBuf)

	var m native.Local
	if err := native.WriteU32(m, addr, 42); err != nil {
		t.Fatal(err)
	}
	if v, err := native.ReadU32(m, addr); err != nil || v != 42 {
		t.Errorf("ReadU32 = (%d, %v), want (42, nil)", v, err)
	}
	if _, err := native.ReadU8(m, 0); !errors.Is(err, native.ErrNullPointer) {
		t.Errorf("null read: got %v, want ErrNullPointer", err)
	}
}
