package ctxmenu

import (
	"testing"

	"golang.org/x/text/language"
)

func TestLanguageOf(t *testing.T) {
	tests := []struct {
		tag  language.Tag
		want Language
	}{
		{language.English, English},
		{language.AmericanEnglish, English},
		{language.Japanese, Japanese},
		{language.German, German},
		{language.MustParse("de-AT"), German},
		{language.French, French},
		{language.Korean, English},
		{language.Und, English},
	}
	for _, tt := range tests {
		if got := LanguageOf(tt.tag); got != tt.want {
			t.Errorf("LanguageOf(%s) = %s, want %s", tt.tag, got, tt.want)
		}
	}
}

func TestNameFor(t *testing.T) {
	n := Name{English: "Search", Japanese: "検索", French: "Chercher"}
	tests := []struct {
		lang Language
		want string
	}{
		{English, "Search"},
		{Japanese, "検索"},
		{German, "Search"},
		{French, "Chercher"},
		{Language(9), "Search"},
	}
	for _, tt := range tests {
		if got := n.For(tt.lang); got != tt.want {
			t.Errorf("For(%d) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}
