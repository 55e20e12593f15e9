package ctxmenu

// Names of the routines located by signature.
const (
	SigValueChangeType  = "ValueChangeType"
	SigValueSetString   = "ValueSetString"
	SigAddonByID        = "AddonByInternalID"
	SigMenuOpen         = "ContextMenuOpen"
	SigMenuItemSelected = "ContextMenuItemSelected"
)

// Signature identifies one routine in the game executable. Patterns starting
// with a call or jump resolve to the routine that instruction targets.
type Signature struct {
	Name    string
	Pattern string
	// New leaves the feature disabled when a required signature is missing
	Required bool
}

// Signatures in resolution order.
var Signatures = []Signature{
	{SigValueChangeType, "E8 ?? ?? ?? ?? 45 84 F6 48 8D 4C 24", true},
	{SigValueSetString, "E8 ?? ?? ?? ?? 41 03 ED", true},
	{SigAddonByID, "E8 ?? ?? ?? ?? 8B 6B 20", true},
	{SigMenuOpen, "48 8B C4 57 41 56 41 57 48 81 EC", true},
	{SigMenuItemSelected, "48 89 5C 24 ?? 55 57 41 56 48 81 EC ?? ?? ?? ?? 48 8B 05 ?? ?? ?? ?? 48 33 C4 48 89 84 24 ?? ?? ?? ?? 80 B9 ?? ?? ?? ?? ?? 41 8B D8", false},
}

func signature(name string) Signature {
	for _, s := range Signatures {
		if s.Name == name {
			return s
		}
	}
	panic("ctxmenu: unknown signature " + name)
}
