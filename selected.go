package ctxmenu

import (
	"log/slog"
)

// selectedDetour replaces the game's "entry chosen" routine. It never
// changes what the game does with the selection.
func (c *ContextMenu) selectedDetour(addon, index, a3 uintptr) uintptr {
	c.selected(addon, int(int32(index)))
	return c.selectedHook.Original(addon, index, a3)
}

func (c *ContextMenu) selected(addon uintptr, index int) {
	if index < 0 || index >= len(c.items) {
		return
	}
	item := c.items[index]
	var err error
	switch item.Kind() {
	case KindNative:
		return
	case KindCustom:
		err = c.runCustom(addon, item.(*CustomItem))
	case KindInventory:
		err = c.runInventory(addon, item.(*InventoryItem))
	}
	if err != nil {
		c.log.Error("context menu action failed",
			slog.Int("index", index),
			slog.String("kind", item.Kind().String()),
			slog.Any("error", err))
	}
}

func (c *ContextMenu) runCustom(addon uintptr, item *CustomItem) error {
	if item.Action == nil {
		return nil
	}
	// the agent may have moved on since the menu opened
	target, err := readTarget(c.mem, item.agent)
	if err != nil {
		return err
	}
	args := &SelectedArgs{
		Addon:           addon,
		Agent:           item.agent,
		ParentAddonName: c.parentAddonName(addon),
		Target:          target,
	}
	return guard(func() error { return item.Action(args) })
}

func (c *ContextMenu) runInventory(addon uintptr, item *InventoryItem) error {
	if item.Action == nil {
		return nil
	}
	target, err := readInventoryTarget(c.mem, item.agent)
	if err != nil {
		return err
	}
	args := &InventorySelectedArgs{
		Addon:           addon,
		Agent:           item.agent,
		ParentAddonName: c.parentAddonName(addon),
		InventoryTarget: target,
	}
	return guard(func() error { return item.Action(args) })
}
