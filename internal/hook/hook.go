// Package hook installs inline hooks on native x86-64 routines.
//
// The first instructions of the target are replaced by an absolute jump to
// the detour. The replaced instructions are copied into an executable
// trampoline that ends with a jump back to the rest of the target, so the
// detour can still run the original routine through Original.
//
//	target:     MOV R11, detour; JMP R11; NOP...  |  rest of target
//	trampoline: <stolen instructions>; MOV reg, target+n; JMP reg
package hook

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"unsafe"
)

// Hook is a detour installed on one native routine.
type Hook struct {
	target uintptr
	detour uintptr
	// the instructions replaced at target
	stolen []byte
	// the jump written over stolen
	patch []byte
	// stolen instructions and the jump back
	trampoline []byte
	enabled    bool
	closed     bool
}

var (
	// hooks installed, with target addresses as keys
	hooks = make(map[uintptr]*Hook)
	// protect the hooks map and every patch write
	lock sync.Mutex
)

var (
	// ErrDoubleHook means already hooked
	ErrDoubleHook = errors.New("double hook")
	// ErrHookNotFound means the hook not found
	ErrHookNotFound = errors.New("hook not found")
	// ErrInputType means detour is neither a func nor an address
	ErrInputType = errors.New("detour is not a func or an address")
	// ErrRelativeAddr means the stolen instructions cannot be moved
	ErrRelativeAddr = errors.New("relative address in instruction")
	// ErrTooShort means the routine ends before the jump fits
	ErrTooShort = errors.New("routine too short to patch")
	// ErrNoScratch means no register is free for the jump back
	ErrNoScratch = errors.New("no scratch register")
	// ErrUnsupported means the platform cannot run native detours
	ErrUnsupported = errors.New("unsupported platform")
	// ErrClosed means the hook was already closed
	ErrClosed = errors.New("hook closed")
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger routes patch tracing to l at debug level.
func SetLogger(l *slog.Logger) {
	logger = l
}

func makeSlice(addr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}

func slicePtr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(&b[0]))
}

// Install prepares a hook on target without enabling it. detour is either
// the address of a native routine or a Go func taking and returning
// uintptr-sized values, which is wrapped in a native callback.
func Install(target uintptr, detour any) (*Hook, error) {
	to, err := detourAddr(detour)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()
	if _, ok := hooks[target]; ok {
		return nil, ErrDoubleHook
	}
	h, err := prepare(target, to)
	if err != nil {
		return nil, err
	}
	hooks[target] = h
	logger.Debug("hook installed",
		slog.String("target", hex(target)),
		slog.String("detour", hex(to)),
		slog.Int("stolen", len(h.stolen)))
	return h, nil
}

func detourAddr(detour any) (uintptr, error) {
	if addr, ok := detour.(uintptr); ok {
		return addr, nil
	}
	if detour == nil || reflect.TypeOf(detour).Kind() != reflect.Func {
		return 0, ErrInputType
	}
	return newCallback(detour)
}

func prepare(target, to uintptr) (*Hook, error) {
	src := makeSlice(target, maxPrologue)
	inf, err := ensureLength(src, jumpLen)
	if err != nil {
		return nil, err
	}
	if !inf.relocatable {
		return nil, ErrRelativeAddr
	}
	reg, err := scratchRegister(src[:inf.length])
	if err != nil {
		return nil, err
	}
	stolen := make([]byte, inf.length)
	copy(stolen, src)

	tramp, err := allocExec(inf.length + jumpLen)
	if err != nil {
		return nil, err
	}
	copy(tramp, buildTrampoline(stolen, target+uintptr(inf.length), reg))
	return &Hook{
		target:     target,
		detour:     to,
		stolen:     stolen,
		patch:      buildPatch(to, inf.length),
		trampoline: tramp,
	}, nil
}

// Target is the address of the hooked routine.
func (h *Hook) Target() uintptr {
	return h.target
}

// Enable writes the jump to the detour. Enabling twice is a no-op.
func (h *Hook) Enable() error {
	lock.Lock()
	defer lock.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.enabled {
		return nil
	}
	if err := writeCode(h.target, h.patch); err != nil {
		return err
	}
	h.enabled = true
	logger.Debug("hook enabled", slog.String("target", hex(h.target)))
	return nil
}

// Disable restores the original instructions. Disabling twice is a no-op.
func (h *Hook) Disable() error {
	lock.Lock()
	defer lock.Unlock()
	return h.disable()
}

func (h *Hook) disable() error {
	if !h.enabled {
		return nil
	}
	if err := writeCode(h.target, h.stolen); err != nil {
		return err
	}
	h.enabled = false
	logger.Debug("hook disabled", slog.String("target", hex(h.target)))
	return nil
}

// Enabled reports whether the jump is in place.
func (h *Hook) Enabled() bool {
	lock.Lock()
	defer lock.Unlock()
	return h.enabled
}

// Original calls the unhooked routine with args.
func (h *Hook) Original(args ...uintptr) uintptr {
	return Call(slicePtr(h.trampoline), args...)
}

// Close disables the hook and releases the trampoline. Closing twice is a no-op.
func (h *Hook) Close() error {
	lock.Lock()
	defer lock.Unlock()
	if h.closed {
		return nil
	}
	if err := h.disable(); err != nil {
		return err
	}
	h.closed = true
	if hooks[h.target] == h {
		delete(hooks, h.target)
	}
	return freeExec(h.trampoline)
}

// Lookup returns the hook installed on target.
func Lookup(target uintptr) (*Hook, error) {
	lock.Lock()
	defer lock.Unlock()
	h, ok := hooks[target]
	if !ok {
		return nil, ErrHookNotFound
	}
	return h, nil
}

func writeCode(addr uintptr, code []byte) error {
	size := uintptr(len(code))
	if err := protectPages(addr, size); err != nil {
		return err
	}
	copy(makeSlice(addr, size), code)
	return reProtectPages(addr, size)
}
