package ctxmenu

import (
	"golang.org/x/text/language"
)

// Language selects which variant of a Name is displayed.
type Language int

const (
	English Language = iota
	Japanese
	German
	French
)

// same order as the Language constants
var languageTags = []language.Tag{
	language.English,
	language.Japanese,
	language.German,
	language.French,
}

var languageMatcher = language.NewMatcher(languageTags)

// LanguageOf maps a client display language to a name variant. Anything
// that does not match one of the four falls back to English.
func LanguageOf(tag language.Tag) Language {
	_, i, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return English
	}
	return Language(i)
}

func (l Language) String() string {
	if l < English || l > French {
		return "unknown"
	}
	return languageTags[l].String()
}

// Name is a label in the four client languages. English is the default and
// is used whenever the variant for the client language is empty.
type Name struct {
	English  string
	Japanese string
	German   string
	French   string
}

// For returns the label shown to a client using lang.
func (n Name) For(lang Language) string {
	var s string
	switch lang {
	case Japanese:
		s = n.Japanese
	case German:
		s = n.German
	case French:
		s = n.French
	}
	if s == "" {
		return n.English
	}
	return s
}
