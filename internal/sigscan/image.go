package sigscan

import (
	"debug/pe"
	"fmt"
	"io"

	"github.com/fengyoulin/ctxmenu/internal/native"
)

const textSection = ".text"

func textHeader(f *pe.File) (*pe.Section, error) {
	for _, s := range f.Sections {
		if s.Name == textSection {
			return s, nil
		}
	}
	return nil, ErrNoTextSection
}

func imageBase(f *pe.File) uintptr {
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		return uintptr(oh.ImageBase)
	case *pe.OptionalHeader32:
		return uintptr(oh.ImageBase)
	}
	return 0
}

// FromFile maps the code section of the executable at path, addressed at the
// image's preferred base.
func FromFile(path string) (*Scanner, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	text, err := textHeader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	data, err := text.Data()
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", path, textSection, err)
	}
	if uint32(len(data)) > text.VirtualSize && text.VirtualSize != 0 {
		data = data[:text.VirtualSize]
	}
	base := imageBase(f)
	return New(base, base+uintptr(text.VirtualAddress), data), nil
}

// memReader exposes a loaded image as an io.ReaderAt; headers of a mapped
// image are laid out exactly as on disk.
type memReader struct {
	mem  native.Memory
	base uintptr
}

func (r memReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.EOF
	}
	if err := r.mem.ReadAt(p, r.base+uintptr(off)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// FromModule maps the code section of the image loaded at base.
func FromModule(mem native.Memory, base uintptr) (*Scanner, error) {
	f, err := pe.NewFile(memReader{mem: mem, base: base})
	if err != nil {
		return nil, fmt.Errorf("module at 0x%X: %w", base, err)
	}
	text, err := textHeader(f)
	if err != nil {
		return nil, fmt.Errorf("module at 0x%X: %w", base, err)
	}
	data := make([]byte, text.VirtualSize)
	if err := mem.ReadAt(data, base+uintptr(text.VirtualAddress)); err != nil {
		return nil, fmt.Errorf("module at 0x%X: read %s: %w", base, textSection, err)
	}
	return New(base, base+uintptr(text.VirtualAddress), data), nil
}

// Current maps the code section of the current process's main module.
func Current() (*Scanner, error) {
	base, err := mainModule()
	if err != nil {
		return nil, err
	}
	return FromModule(native.Local{}, base)
}
