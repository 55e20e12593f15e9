package ctxmenu

import (
	"github.com/fengyoulin/ctxmenu/internal/layout"
	"github.com/fengyoulin/ctxmenu/internal/native"
)

// Target is what a non-inventory menu was opened on.
type Target struct {
	ActorID uint32
	// lower 32 bits of the character's content id
	ContentIDLower uint32
	// empty when the menu carries no text
	Text  string
	World uint16
}

// InventoryTarget is the inventory item a menu was opened on.
type InventoryTarget struct {
	ItemID     uint32
	ItemAmount uint32
	ItemHQ     bool
}

// OpenArgs is passed to OnOpenMenu subscribers. Items may be appended to,
// removed from or reordered; the result is what the game displays.
type OpenArgs struct {
	Addon uintptr
	Agent uintptr
	// empty when the menu has no parent addon
	ParentAddonName string
	Target
	Items []Item
}

// InventoryOpenArgs is passed to OnOpenInventoryMenu subscribers.
type InventoryOpenArgs struct {
	Addon           uintptr
	Agent           uintptr
	ParentAddonName string
	InventoryTarget
	Items []Item
}

// SelectedArgs is passed to a CustomItem's action.
type SelectedArgs struct {
	Addon           uintptr
	Agent           uintptr
	ParentAddonName string
	Target
}

// InventorySelectedArgs is passed to an InventoryItem's action.
type InventorySelectedArgs struct {
	Addon           uintptr
	Agent           uintptr
	ParentAddonName string
	InventoryTarget
}

func readTarget(m native.Memory, agent uintptr) (t Target, err error) {
	if t.ActorID, err = layout.ActorID(m, agent); err != nil {
		return
	}
	if t.ContentIDLower, err = layout.ContentIDLower(m, agent); err != nil {
		return
	}
	if t.Text, _, err = layout.Text(m, agent); err != nil {
		return
	}
	t.World, err = layout.World(m, agent)
	return
}

func readInventoryTarget(m native.Memory, agent uintptr) (t InventoryTarget, err error) {
	if t.ItemID, err = layout.ItemID(m, agent); err != nil {
		return
	}
	if t.ItemAmount, err = layout.ItemAmount(m, agent); err != nil {
		return
	}
	t.ItemHQ, err = layout.ItemHQ(m, agent)
	return
}
