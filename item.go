package ctxmenu

// ItemKind discriminates the variants of Item.
type ItemKind int

const (
	// KindNative is an entry the game itself put in the menu
	KindNative ItemKind = iota
	// KindCustom is a subscriber entry for character, chat and other non-inventory menus
	KindCustom
	// KindInventory is a subscriber entry for the inventory item menu
	KindInventory
)

func (k ItemKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindCustom:
		return "custom"
	case KindInventory:
		return "inventory"
	}
	return "unknown"
}

// Item is one menu entry: *NativeItem, *CustomItem or *InventoryItem.
type Item interface {
	Kind() ItemKind
	IsEnabled() bool
	label(lang Language) string
}

// NativeItem is carried through from the game unchanged. Subscribers may
// remove or reorder native items; ones they construct themselves are dropped.
type NativeItem struct {
	name     string
	enabled  bool
	action   byte
	fromGame bool
}

func (i *NativeItem) Kind() ItemKind { return KindNative }

func (i *NativeItem) IsEnabled() bool { return i.enabled }

// Name is the label the game supplied.
func (i *NativeItem) Name() string { return i.name }

// Action is the game's action code for the entry.
func (i *NativeItem) Action() byte { return i.action }

func (i *NativeItem) label(Language) string { return i.name }

// CustomItem is an entry added to a non-inventory menu.
type CustomItem struct {
	Name    Name
	Enabled bool
	// Action runs when the entry is chosen
	Action func(*SelectedArgs) error

	agent uintptr
}

// NewCustomItem returns an enabled entry.
func NewCustomItem(name Name, action func(*SelectedArgs) error) *CustomItem {
	return &CustomItem{Name: name, Enabled: true, Action: action}
}

func (i *CustomItem) Kind() ItemKind { return KindCustom }

func (i *CustomItem) IsEnabled() bool { return i.Enabled }

// Agent is the menu agent the entry was shown by, set once the menu opens.
func (i *CustomItem) Agent() uintptr { return i.agent }

func (i *CustomItem) label(lang Language) string { return i.Name.For(lang) }

// InventoryItem is an entry added to the inventory item menu.
type InventoryItem struct {
	Name    Name
	Enabled bool
	// Action runs when the entry is chosen
	Action func(*InventorySelectedArgs) error

	agent uintptr
}

// NewInventoryItem returns an enabled entry.
func NewInventoryItem(name Name, action func(*InventorySelectedArgs) error) *InventoryItem {
	return &InventoryItem{Name: name, Enabled: true, Action: action}
}

func (i *InventoryItem) Kind() ItemKind { return KindInventory }

func (i *InventoryItem) IsEnabled() bool { return i.Enabled }

// Agent is the menu agent the entry was shown by, set once the menu opens.
func (i *InventoryItem) Agent() uintptr { return i.agent }

func (i *InventoryItem) label(lang Language) string { return i.Name.For(lang) }
