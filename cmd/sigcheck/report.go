package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fengyoulin/ctxmenu"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	optionalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Scanner is the part of sigscan.Scanner the report needs.
type Scanner interface {
	ScanText(pattern string) (uintptr, error)
	ScanAll(pattern string) ([]uintptr, error)
}

type result struct {
	sig  ctxmenu.Signature
	addr uintptr
	all  []uintptr
	err  error
}

func check(s Scanner, sigs []ctxmenu.Signature, all bool) []result {
	out := make([]result, 0, len(sigs))
	for _, sig := range sigs {
		r := result{sig: sig}
		r.addr, r.err = s.ScanText(sig.Pattern)
		if r.err == nil && all {
			r.all, r.err = s.ScanAll(sig.Pattern)
		}
		out = append(out, r)
	}
	return out
}

func missingRequired(results []result) bool {
	for _, r := range results {
		if r.err != nil && r.sig.Required {
			return true
		}
	}
	return false
}

func render(path string, base uintptr, results []result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("context menu signatures"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s @ 0x%X", path, base)))
	b.WriteByte('\n')
	for _, r := range results {
		var status string
		switch {
		case r.err == nil:
			status = okStyle.Render("ok      ")
		case r.sig.Required:
			status = missingStyle.Render("MISSING ")
		default:
			status = optionalStyle.Render("missing ")
		}
		fmt.Fprintf(&b, "%s %-24s", status, r.sig.Name)
		if r.err != nil {
			b.WriteString(dimStyle.Render(r.err.Error()))
		} else {
			fmt.Fprintf(&b, "0x%X (+0x%X)", r.addr, r.addr-base)
			if len(r.all) > 1 {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  %d matches", len(r.all))))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
