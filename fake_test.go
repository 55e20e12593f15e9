package ctxmenu

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/fengyoulin/ctxmenu/internal/atk"
	"github.com/fengyoulin/ctxmenu/internal/layout"
	"github.com/fengyoulin/ctxmenu/internal/native"
	"github.com/fengyoulin/ctxmenu/internal/native/nativetest"
)

type fakeScanner struct {
	addrs map[string]uintptr
	calls int
}

func (s *fakeScanner) ScanText(pattern string) (uintptr, error) {
	s.calls++
	if addr, ok := s.addrs[pattern]; ok {
		return addr, nil
	}
	return 0, errors.New("not found")
}

type fakeHook struct {
	target    uintptr
	detour    any
	enabled   bool
	closed    int
	calls     [][]uintptr
	ret       uintptr
	enableErr error
	// runs once the patch would be in place
	onEnable func(*fakeHook)
}

func (h *fakeHook) Enable() error {
	if h.enableErr != nil {
		return h.enableErr
	}
	h.enabled = true
	if h.onEnable != nil {
		h.onEnable(h)
	}
	return nil
}

func (h *fakeHook) Original(args ...uintptr) uintptr {
	h.calls = append(h.calls, append([]uintptr(nil), args...))
	return h.ret
}

func (h *fakeHook) Close() error {
	h.closed++
	h.enabled = false
	return nil
}

type fakeInstaller struct {
	hooks     map[uintptr]*fakeHook
	enableErr error
	onEnable  func(*fakeHook)
}

func (i *fakeInstaller) Install(target uintptr, detour any) (Hook, error) {
	h := &fakeHook{target: target, detour: detour, ret: 0x77, enableErr: i.enableErr, onEnable: i.onEnable}
	i.hooks[target] = h
	return h, nil
}

type fakeGame struct {
	agents      map[uint32]uintptr
	hovered     bool
	lang        language.Tag
	unitManager uintptr
}

func (g *fakeGame) AgentByInternalID(id uint32) uintptr { return g.agents[id] }
func (g *fakeGame) InventoryItemHovered() bool          { return g.hovered }
func (g *fakeGame) Language() language.Tag              { return g.lang }
func (g *fakeGame) UnitManager() uintptr                { return g.unitManager }

const (
	changeTypeAddr = 0x1000
	setStringAddr  = 0x2000
	addonByIDAddr  = 0x3000
	openAddr       = 0x4000
	selectedAddr   = 0x5000
)

func allSignatures() map[string]uintptr {
	return map[string]uintptr{
		signature(SigValueChangeType).Pattern:  changeTypeAddr,
		signature(SigValueSetString).Pattern:   setStringAddr,
		signature(SigAddonByID).Pattern:        addonByIDAddr,
		signature(SigMenuOpen).Pattern:         openAddr,
		signature(SigMenuItemSelected).Pattern: selectedAddr,
	}
}

// env is a game with one menu addon, both menu agents and an argument
// array large enough for a full menu with disabled flags.
type env struct {
	t         *testing.T
	arena     *nativetest.Arena
	calls     []nativeCall
	game      *fakeGame
	menu      *ContextMenu
	installer *fakeInstaller
	logs      *bytes.Buffer

	addon    uintptr
	parent   uintptr
	agent    uintptr
	invAgent uintptr
	args     uintptr
	actions  uintptr
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvWith(t, nil)
}

// newEnvWith runs setup on the laid out game before New hooks it.
func newEnvWith(t *testing.T, setup func(*env)) *env {
	t.Helper()
	a := nativetest.NewArena()
	e := &env{t: t, arena: a, logs: &bytes.Buffer{}}

	e.agent = a.Alloc(0x1000)
	block := a.Alloc(0x500)
	native.WritePointer(a, e.agent+layout.MenuActionsPointerOffset, block)
	e.actions = block + layout.MenuActionsOffset
	e.invAgent = a.Alloc(0x1000)
	e.args = a.Alloc((headerSlots + 2*MaxItems + 16) * atk.ValueSize)
	e.addon = a.Alloc(0x200)
	e.parent = a.Alloc(0x200)
	a.WriteAt([]byte("ChatLog\x00"), e.parent+layout.AddonNameOffset)

	e.game = &fakeGame{
		agents: map[uint32]uintptr{
			layout.ContextAgentID:          e.agent,
			layout.InventoryContextAgentID: e.invAgent,
		},
		lang:        language.English,
		unitManager: 0xC0FFEE00,
	}
	e.installer = &fakeInstaller{hooks: map[uintptr]*fakeHook{}}
	if setup != nil {
		setup(e)
	}
	e.menu = New(e.game, Config{
		Enabled:   true,
		Logger:    slog.New(slog.NewTextHandler(e.logs, nil)),
		Memory:    a,
		Scanner:   &fakeScanner{addrs: allSignatures()},
		Installer: e.installer,
		Call:      e.call,
	})
	return e
}

type nativeCall struct {
	fn   uintptr
	args []uintptr
}

// call plays the game's slot and addon routines against the arena. String
// arguments are Go buffers of the caller, read in place.
func (e *env) call(fn uintptr, args ...uintptr) uintptr {
	e.calls = append(e.calls, nativeCall{fn, append([]uintptr(nil), args...)})
	switch fn {
	case changeTypeAddr:
		native.WriteU32(e.arena, args[0], uint32(args[1]))
	case setStringAddr:
		s, _, err := native.ReadCString(native.Local{}, args[1])
		if err != nil {
			e.t.Fatalf("set string: %v", err)
		}
		native.WritePointer(e.arena, args[0]+8, e.arena.AllocString(s))
	case addonByIDAddr:
		if args[0] == e.game.unitManager && args[1] == 5 {
			return e.parent
		}
	default:
		e.t.Fatalf("unexpected native call to 0x%X", fn)
	}
	return 0
}

// callsTo returns the arguments of every recorded call to fn.
func (e *env) callsTo(fn uintptr) [][]uintptr {
	var out [][]uintptr
	for _, c := range e.calls {
		if c.fn == fn {
			out = append(out, c.args)
		}
	}
	return out
}

func (e *env) values() atk.Values {
	return atk.Values{Mem: e.arena, Base: e.args}
}

// seed lays out a native menu and returns the size the game passes along.
func (e *env) seed(names []string, actions []byte, disabled []bool) uintptr {
	e.t.Helper()
	a := e.arena
	n := len(names)
	native.WriteU32(a, e.args, uint32(atk.TypeUInt))
	native.WriteU32(a, e.args+8, uint32(n))
	for i, name := range names {
		slot := e.values().Slot(headerSlots + i)
		native.WriteU32(a, slot, uint32(atk.TypeString))
		native.WritePointer(a, slot+8, a.AllocString(name))
	}
	table := e.actions
	if e.game.hovered {
		table = e.invAgent + layout.InventoryMenuActionsOffset
	}
	for i, b := range actions {
		native.WriteU8(a, table+headerSlots+uintptr(i), b)
	}
	size := uintptr(headerSlots + n)
	if disabled != nil {
		for i, d := range disabled {
			slot := e.values().Slot(headerSlots + n + i)
			native.WriteU32(a, slot, uint32(atk.TypeInt))
			if d {
				native.WriteU32(a, slot+8, 1)
			}
		}
		size += uintptr(n)
	}
	return size
}

func (e *env) hook(target uintptr) *fakeHook {
	h, ok := e.installer.hooks[target]
	if !ok {
		e.t.Fatalf("no hook on 0x%X", target)
	}
	return h
}

// open runs the open detour and returns the menu size the game received.
func (e *env) open(menuSize uintptr) uintptr {
	e.t.Helper()
	h := e.hook(openAddr)
	detour := h.detour.(func(addon, menuSize, args uintptr) uintptr)
	if ret := detour(e.addon, menuSize, e.args); ret != h.ret {
		e.t.Errorf("open returned 0x%X, want original's 0x%X", ret, h.ret)
	}
	last := h.calls[len(h.calls)-1]
	if last[0] != e.addon || last[2] != e.args {
		e.t.Errorf("original called with %x", last)
	}
	return last[1]
}

func (e *env) selectIndex(index uintptr) {
	e.t.Helper()
	h := e.hook(selectedAddr)
	detour := h.detour.(func(addon, index, a3 uintptr) uintptr)
	before := len(h.calls)
	detour(e.addon, index, 0x1)
	if len(h.calls) != before+1 {
		e.t.Fatalf("selected original not called")
	}
	if got := h.calls[before]; got[0] != e.addon || got[1] != index || got[2] != 0x1 {
		e.t.Errorf("selected original called with %x", got)
	}
}

func (e *env) name(i int) string {
	e.t.Helper()
	s, _, err := e.values().String(headerSlots + i)
	if err != nil {
		e.t.Fatalf("name %d: %v", i, err)
	}
	return s
}

func (e *env) action(i int) byte {
	table := e.actions
	if e.game.hovered {
		table = e.invAgent + layout.InventoryMenuActionsOffset
	}
	b, _ := native.ReadU8(e.arena, table+headerSlots+uintptr(i))
	return b
}

func (e *env) count() uint32 {
	n, _ := e.values().UInt(0)
	return n
}

func (e *env) warnings() int {
	return strings.Count(e.logs.String(), "level=WARN")
}

func names(n int, prefix string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i)
	}
	return out
}
