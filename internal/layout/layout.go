// Package layout reads fields of the host's UI agents and addons by fixed
// offset.
//
//	addon
//	  +0x008  char[]   name (inline, zero-terminated)
//	  +0x1D2  uint16   parent addon id, 0 = none
//	context agent
//	  +0xD18  ptr      -> menu block; actions at block+0x428
//	  +0xE08  ptr      -> display text
//	  +0xEE0  uint32   content id, lower 32 bits
//	  +0xEF0  uint32   actor id
//	  +0xF00  uint16   world id
//	inventory context agent
//	  +0x558  byte[]   actions
//	  +0x5F8  uint32   item id
//	  +0x5FC  uint32   item amount
//	  +0x604  bool     high quality
package layout

import (
	"fmt"

	"github.com/fengyoulin/ctxmenu/internal/native"
)

const (
	AddonNameOffset     = 0x8
	ParentAddonIDOffset = 0x1D2

	MenuActionsPointerOffset   = 0xD18
	MenuActionsOffset          = 0x428
	InventoryMenuActionsOffset = 0x558

	TextPointerOffset    = 0xE08
	ContentIDLowerOffset = 0xEE0
	ActorIDOffset        = 0xEF0
	WorldOffset          = 0xF00

	ItemIDOffset     = 0x5F8
	ItemAmountOffset = 0x5FC
	ItemHQOffset     = 0x604
)

// Agent ids of the two menus, as accepted by the host's agent lookup.
const (
	ContextAgentID          = 9
	InventoryContextAgentID = 10
)

func ActorID(m native.Memory, agent uintptr) (uint32, error) {
	return native.ReadU32(m, agent+ActorIDOffset)
}

func ContentIDLower(m native.Memory, agent uintptr) (uint32, error) {
	return native.ReadU32(m, agent+ContentIDLowerOffset)
}

// Text is the display text the menu was opened for, if any.
func Text(m native.Memory, agent uintptr) (string, bool, error) {
	return native.ReadCStringAt(m, agent+TextPointerOffset)
}

func World(m native.Memory, agent uintptr) (uint16, error) {
	return native.ReadU16(m, agent+WorldOffset)
}

func ItemID(m native.Memory, agent uintptr) (uint32, error) {
	return native.ReadU32(m, agent+ItemIDOffset)
}

func ItemAmount(m native.Memory, agent uintptr) (uint32, error) {
	return native.ReadU32(m, agent+ItemAmountOffset)
}

func ItemHQ(m native.Memory, agent uintptr) (bool, error) {
	b, err := native.ReadU8(m, agent+ItemHQOffset)
	return b != 0, err
}

func ParentAddonID(m native.Memory, addon uintptr) (uint16, error) {
	return native.ReadU16(m, addon+ParentAddonIDOffset)
}

func AddonName(m native.Memory, addon uintptr) (string, bool, error) {
	return native.ReadCString(m, addon+AddonNameOffset)
}

// ParentAddonName resolves the name of addon's parent through lookup. A zero
// parent id or a zero lookup result reports ok == false.
func ParentAddonName(m native.Memory, addon uintptr, lookup func(id uint16) uintptr) (string, bool, error) {
	if addon == 0 {
		return "", false, nil
	}
	id, err := ParentAddonID(m, addon)
	if err != nil {
		return "", false, err
	}
	if id == 0 {
		return "", false, nil
	}
	parent := lookup(id)
	if parent == 0 {
		return "", false, nil
	}
	return AddonName(m, parent)
}

// MenuActions returns the address of the agent's action table. Entry i of
// the menu lives at the returned address plus 7+i.
func MenuActions(m native.Memory, agent uintptr, inventory bool) (uintptr, error) {
	if inventory {
		return agent + InventoryMenuActionsOffset, nil
	}
	block, err := native.ReadPointer(m, agent+MenuActionsPointerOffset)
	if err != nil {
		return 0, err
	}
	if block == 0 {
		return 0, fmt.Errorf("menu actions block: %w", native.ErrNullPointer)
	}
	return block + MenuActionsOffset, nil
}
