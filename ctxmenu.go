// Package ctxmenu intercepts the game client's right-click context menus.
//
// Two routines of the running client are hooked: the one that opens a menu
// and the one that reports the chosen entry. When a menu opens, subscribers
// see the entries the game wants to show and may add their own; their
// entries are written back into the game's argument array and action table
// before the original routine runs. Choosing a subscriber entry runs its
// action.
//
// Both detours run on the game's UI thread, which is also the only thread
// that may register subscribers while menus are live and the only thread
// allowed to call Close. Subscriber callbacks must not open menus themselves.
package ctxmenu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"

	"github.com/fengyoulin/ctxmenu/internal/atk"
	"github.com/fengyoulin/ctxmenu/internal/hook"
	"github.com/fengyoulin/ctxmenu/internal/layout"
	"github.com/fengyoulin/ctxmenu/internal/native"
	"github.com/fengyoulin/ctxmenu/internal/sigscan"
)

// Game is the part of the client the menu hooks depend on.
type Game interface {
	// AgentByInternalID returns the address of an agent, or 0.
	AgentByInternalID(id uint32) uintptr
	// InventoryItemHovered reports whether an inventory slot is hovered.
	InventoryItemHovered() bool
	// Language is the client's display language.
	Language() language.Tag
	// UnitManager is the address of the UI unit manager addons live in.
	UnitManager() uintptr
}

// Memory is the address space of the game.
type Memory interface {
	ReadAt(p []byte, addr uintptr) error
	WriteAt(p []byte, addr uintptr) error
}

// Scanner locates a routine by signature.
type Scanner interface {
	ScanText(pattern string) (uintptr, error)
}

// Hook is a detour installed on a native routine.
type Hook interface {
	Enable() error
	// Original runs the unhooked routine.
	Original(args ...uintptr) uintptr
	Close() error
}

// Installer installs a detour, a func of uintptr arguments returning uintptr,
// on the routine at target.
type Installer interface {
	Install(target uintptr, detour any) (Hook, error)
}

// CallFunc invokes the native routine at fn.
type CallFunc func(fn uintptr, args ...uintptr) uintptr

// Config configures New. Zero-valued collaborators default to the
// in-process implementations.
type Config struct {
	// Enabled turns the context menu feature on
	Enabled   bool
	Logger    *slog.Logger
	Memory    Memory
	Scanner   Scanner
	Installer Installer
	Call      CallFunc
}

type nativeInstaller struct{}

func (nativeInstaller) Install(target uintptr, detour any) (Hook, error) {
	h, err := hook.Install(target, detour)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// OpenMenuFunc handles a non-inventory menu opening.
type OpenMenuFunc func(*OpenArgs) error

// OpenInventoryMenuFunc handles an inventory item menu opening.
type OpenInventoryMenuFunc func(*InventoryOpenArgs) error

type subscriber[F any] struct {
	id int
	fn F
}

// ContextMenu owns the menu hooks and their subscribers.
type ContextMenu struct {
	log  *slog.Logger
	mem  native.Memory
	game Game

	values    atk.Primitives
	addonByID func(id uint16) uintptr

	openHook     Hook
	selectedHook Hook
	closeOnce    sync.Once
	closed       bool

	mu            sync.Mutex
	nextID        int
	openSubs      []subscriber[OpenMenuFunc]
	inventorySubs []subscriber[OpenInventoryMenuFunc]

	// entries of the menu last opened, indexed by the game's selection
	// index; written by the open detour only
	items []Item
}

// New resolves the menu routines and hooks them. Setup failures are logged
// and leave the feature disabled; New never returns a partially hooked menu.
func New(game Game, cfg Config) *ContextMenu {
	c := &ContextMenu{
		log:  cfg.Logger,
		game: game,
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.mem = native.Local{}
	if cfg.Memory != nil {
		c.mem = cfg.Memory
	}
	if !cfg.Enabled {
		c.log.Debug("context menu feature disabled")
		return c
	}

	scanner := cfg.Scanner
	if scanner == nil {
		s, err := sigscan.Current()
		if err != nil {
			c.log.Warn("cannot scan game module", slog.Any("error", err))
			return c
		}
		scanner = s
	}
	installer := cfg.Installer
	if installer == nil {
		installer = nativeInstaller{}
	}
	call := cfg.Call
	if call == nil {
		call = hook.Call
	}

	var addrs [4]uintptr
	for i, name := range []string{SigValueChangeType, SigValueSetString, SigAddonByID, SigMenuOpen} {
		addr, err := c.resolve(scanner, name)
		if err != nil {
			return c
		}
		addrs[i] = addr
	}
	values := atk.NativePrimitives{
		ChangeTypeFn: addrs[0],
		SetStringFn:  addrs[1],
		Call:         atk.CallFunc(call),
	}
	addonFn := addrs[2]
	addonByID := func(id uint16) uintptr {
		return call(addonFn, game.UnitManager(), uintptr(id))
	}

	openHook, err := c.install(installer, SigMenuOpen, addrs[3], c.openDetour)
	if err != nil {
		return c
	}
	// the detour may run as soon as the patch is written
	c.values, c.addonByID, c.openHook = values, addonByID, openHook
	if err := c.enable(SigMenuOpen, openHook); err != nil {
		c.values, c.addonByID, c.openHook = nil, nil, nil
		return c
	}

	addr, err := c.resolve(scanner, SigMenuItemSelected)
	if err != nil {
		c.log.Warn("context menu selection unavailable")
		return c
	}
	h, err := c.install(installer, SigMenuItemSelected, addr, c.selectedDetour)
	if err != nil {
		return c
	}
	c.selectedHook = h
	if err := c.enable(SigMenuItemSelected, h); err != nil {
		c.selectedHook = nil
	}
	return c
}

func (c *ContextMenu) resolve(s Scanner, name string) (uintptr, error) {
	addr, err := s.ScanText(signature(name).Pattern)
	if err != nil {
		c.log.Warn("signature not found", slog.String("signature", name), slog.Any("error", err))
		return 0, err
	}
	return addr, nil
}

func (c *ContextMenu) install(inst Installer, name string, target uintptr, detour any) (Hook, error) {
	h, err := inst.Install(target, detour)
	if err != nil {
		c.log.Error("cannot hook", slog.String("routine", name), slog.Any("error", err))
		return nil, err
	}
	return h, nil
}

func (c *ContextMenu) enable(name string, h Hook) error {
	if err := h.Enable(); err != nil {
		c.log.Error("cannot enable hook", slog.String("routine", name), slog.Any("error", err))
		h.Close()
		return err
	}
	return nil
}

// Enabled reports whether menus are being intercepted.
func (c *ContextMenu) Enabled() bool {
	return c.openHook != nil && !c.closed
}

// SelectionEnabled reports whether entry actions can run.
func (c *ContextMenu) SelectionEnabled() bool {
	return c.selectedHook != nil && !c.closed
}

// OnOpenMenu subscribes fn to non-inventory menus. Subscribers run in
// registration order; the returned func unsubscribes.
func (c *ContextMenu) OnOpenMenu(fn OpenMenuFunc) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.openSubs = append(c.openSubs, subscriber[OpenMenuFunc]{id, fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.openSubs = without(c.openSubs, id)
	}
}

// OnOpenInventoryMenu subscribes fn to inventory item menus.
func (c *ContextMenu) OnOpenInventoryMenu(fn OpenInventoryMenuFunc) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.inventorySubs = append(c.inventorySubs, subscriber[OpenInventoryMenuFunc]{id, fn})
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.inventorySubs = without(c.inventorySubs, id)
	}
}

func without[F any](subs []subscriber[F], id int) []subscriber[F] {
	out := make([]subscriber[F], 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

func snapshot[F any](mu *sync.Mutex, subs *[]subscriber[F]) []subscriber[F] {
	mu.Lock()
	defer mu.Unlock()
	out := make([]subscriber[F], len(*subs))
	copy(out, *subs)
	return out
}

// Close removes both hooks. It is safe to call more than once.
func (c *ContextMenu) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		c.closed = true
		if c.selectedHook != nil {
			errs = append(errs, c.selectedHook.Close())
		}
		if c.openHook != nil {
			errs = append(errs, c.openHook.Close())
		}
	})
	return errors.Join(errs...)
}

// ErrSubscriberPanic wraps a panic raised by a subscriber or an entry action.
var ErrSubscriberPanic = errors.New("subscriber panicked")

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSubscriberPanic, r)
		}
	}()
	return fn()
}

func (c *ContextMenu) parentAddonName(addon uintptr) string {
	name, _, err := layout.ParentAddonName(c.mem, addon, c.addonByID)
	if err != nil {
		c.log.Error("cannot read parent addon", slog.Any("error", err))
		return ""
	}
	return name
}
