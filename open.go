package ctxmenu

import (
	"fmt"
	"log/slog"

	"github.com/fengyoulin/ctxmenu/internal/atk"
	"github.com/fengyoulin/ctxmenu/internal/layout"
	"github.com/fengyoulin/ctxmenu/internal/native"
)

const (
	// argument slots before the first entry name
	headerSlots = 7
	// MaxItems is the most entries a menu can show
	MaxItems = 32

	// action codes the game treats as "do nothing" for subscriber entries
	noopAction          byte = 0x67
	inventoryNoopAction byte = 0xFF
)

// openDetour replaces the game's menu open routine:
//
//	args[0]                 entry count
//	args[7 .. 7+n)          entry names
//	args[7+n .. 7+2n)       disabled flags, only when menuSize > 7+n
func (c *ContextMenu) openDetour(addon, menuSize, args uintptr) uintptr {
	if size, ok := c.open(addon, uint32(menuSize), args); ok {
		menuSize = uintptr(size)
	}
	return c.openHook.Original(addon, menuSize, args)
}

// open rewrites the menu and returns its new size. ok is false when the
// menu must reach the game untouched.
func (c *ContextMenu) open(addon uintptr, menuSize uint32, args uintptr) (size uint32, ok bool) {
	c.items = nil

	inventory := c.game.InventoryItemHovered()
	agentID := uint32(layout.ContextAgentID)
	if inventory {
		agentID = layout.InventoryContextAgentID
	}
	agent := c.game.AgentByInternalID(agentID)
	if agent == 0 {
		return 0, false
	}

	values := atk.Values{Mem: c.mem, Base: args}
	nativeCount, err := values.UInt(0)
	if err != nil {
		c.log.Error("cannot read menu size", slog.Any("error", err))
		return 0, false
	}
	if nativeCount > MaxItems {
		c.log.Warn("unexpected native entry count", slog.Uint64("count", uint64(nativeCount)))
		return 0, false
	}
	gameDisabled := menuSize > headerSlots+nativeCount

	parent := c.parentAddonName(addon)
	actions, err := layout.MenuActions(c.mem, agent, inventory)
	if err != nil {
		c.log.Error("cannot find menu actions", slog.Any("error", err))
		return 0, false
	}
	nativeItems, err := c.readNativeItems(values, actions, int(nativeCount), gameDisabled)
	if err != nil {
		c.log.Error("cannot read menu entries", slog.Any("error", err))
		return 0, false
	}

	var items []Item
	if inventory {
		items, err = c.notifyInventory(addon, agent, parent, nativeItems)
	} else {
		items, err = c.notify(addon, agent, parent, nativeItems)
	}
	if err != nil {
		return 0, false
	}

	items = keep(items, inventory, agent)
	if len(items) > MaxItems {
		c.log.Warn("too many context menu entries, dropping the last ones",
			slog.Int("dropped", len(items)-MaxItems))
		items = items[:MaxItems]
	}
	c.items = items

	anyDisabled := gameDisabled
	for _, item := range items {
		if !item.IsEnabled() {
			anyDisabled = true
			break
		}
	}

	if err := c.probe(values, actions, len(items), anyDisabled); err != nil {
		c.log.Error("context menu not writable", slog.Int("entries", len(items)), slog.Any("error", err))
		c.items = nil
		return 0, false
	}
	lang := LanguageOf(c.game.Language())
	if err := c.write(values, actions, items, anyDisabled, lang); err != nil {
		c.log.Error("cannot rewrite context menu", slog.Any("error", err))
		c.items = nil
		return 0, false
	}

	size = uint32(len(items))
	if anyDisabled {
		size *= 2
	}
	return size + headerSlots, true
}

func (c *ContextMenu) readNativeItems(values atk.Values, actions uintptr, n int, gameDisabled bool) ([]Item, error) {
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		name, _, err := values.String(headerSlots + i)
		if err != nil {
			return nil, err
		}
		enabled := true
		if gameDisabled {
			flag, err := values.Int(headerSlots + n + i)
			if err != nil {
				return nil, err
			}
			enabled = flag == 0
		}
		action, err := native.ReadU8(c.mem, actions+headerSlots+uintptr(i))
		if err != nil {
			return nil, err
		}
		items = append(items, &NativeItem{name: name, enabled: enabled, action: action, fromGame: true})
	}
	return items, nil
}

func (c *ContextMenu) notify(addon, agent uintptr, parent string, items []Item) ([]Item, error) {
	target, err := readTarget(c.mem, agent)
	if err != nil {
		c.log.Error("cannot read menu target", slog.Any("error", err))
		return nil, err
	}
	args := &OpenArgs{
		Addon:           addon,
		Agent:           agent,
		ParentAddonName: parent,
		Target:          target,
		Items:           items,
	}
	for i, s := range snapshot(&c.mu, &c.openSubs) {
		if err := guard(func() error { return s.fn(args) }); err != nil {
			c.log.Error("context menu subscriber failed",
				slog.Int("subscriber", i), slog.Any("error", err))
			return nil, err
		}
	}
	return args.Items, nil
}

func (c *ContextMenu) notifyInventory(addon, agent uintptr, parent string, items []Item) ([]Item, error) {
	target, err := readInventoryTarget(c.mem, agent)
	if err != nil {
		c.log.Error("cannot read inventory menu target", slog.Any("error", err))
		return nil, err
	}
	args := &InventoryOpenArgs{
		Addon:           addon,
		Agent:           agent,
		ParentAddonName: parent,
		InventoryTarget: target,
		Items:           items,
	}
	for i, s := range snapshot(&c.mu, &c.inventorySubs) {
		if err := guard(func() error { return s.fn(args) }); err != nil {
			c.log.Error("inventory context menu subscriber failed",
				slog.Int("subscriber", i), slog.Any("error", err))
			return nil, err
		}
	}
	return args.Items, nil
}

// keep drops entries of the other menu kind, whose action codes would send
// the game down the wrong dispatch path, and binds the rest to agent.
func keep(items []Item, inventory bool, agent uintptr) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		switch it := item.(type) {
		case *NativeItem:
			// only entries read from the game carry a valid action code
			if it == nil || !it.fromGame {
				continue
			}
		case *CustomItem:
			if it == nil || inventory {
				continue
			}
			it.agent = agent
		case *InventoryItem:
			if it == nil || !inventory {
				continue
			}
			it.agent = agent
		default:
			continue
		}
		out = append(out, item)
	}
	return out
}

func actionCode(item Item) byte {
	switch item.Kind() {
	case KindNative:
		return item.(*NativeItem).action
	case KindCustom:
		return noopAction
	case KindInventory:
		return inventoryNoopAction
	}
	panic(fmt.Sprintf("ctxmenu: unknown item kind %d", item.Kind()))
}

// probe writes back the current contents of every slot and action byte the
// rewrite of n entries touches, so a fault surfaces before anything changes.
func (c *ContextMenu) probe(values atk.Values, actions uintptr, n int, anyDisabled bool) error {
	slots := headerSlots + n
	if anyDisabled {
		slots += n
	}
	ranges := []struct {
		addr uintptr
		size int
	}{
		{values.Base, slots * atk.ValueSize},
		{actions + headerSlots, n},
	}
	for _, r := range ranges {
		if r.size == 0 {
			continue
		}
		buf := make([]byte, r.size)
		if err := c.mem.ReadAt(buf, r.addr); err != nil {
			return err
		}
		if err := c.mem.WriteAt(buf, r.addr); err != nil {
			return err
		}
	}
	return nil
}

func (c *ContextMenu) write(values atk.Values, actions uintptr, items []Item, anyDisabled bool, lang Language) error {
	n := len(items)
	for i, item := range items {
		if anyDisabled {
			var flag int32
			if !item.IsEnabled() {
				flag = 1
			}
			if err := atk.SetInt(c.values, values, headerSlots+n+i, flag); err != nil {
				return fmt.Errorf("entry %d flag: %w", i, err)
			}
		}
		if err := native.WriteU8(c.mem, actions+headerSlots+uintptr(i), actionCode(item)); err != nil {
			return fmt.Errorf("entry %d action: %w", i, err)
		}
		if err := atk.SetString(c.values, values, headerSlots+i, item.label(lang)); err != nil {
			return fmt.Errorf("entry %d name: %w", i, err)
		}
	}
	return atk.SetUInt(c.values, values, 0, uint32(n))
}
