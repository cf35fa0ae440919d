package convert

import (
	"strings"
	"testing"
	"unicode"
)

func TestWrapRuns(t *testing.T) {
	link := rawMarkup("`site <http://e.com>`__")
	note := string(markRawStart) + escapedSpace + "[#f1]_" + string(markClose) + string(markRawEnd)
	tests := []struct {
		kind Inline
		in   string
		want string
	}{
		{InlineBold, "hi", "**hi**"},
		{InlineBold, "  hi  ", "  **hi**  "},
		{InlineItalic, "a b", "*a b*"},
		{InlineMonospace, " x() ", " ``x()`` "},
		{InlineItalic, "   ", "   "},
		{InlineBold, "", ""},
		{InlineNone, " x ", " x "},
		{InlineBold, "see " + link + " now", "**see** `site <http://e.com>`__ **now**"},
		{InlineBold, "see" + link + "now", "**see**\\ `site <http://e.com>`__\\ **now**"},
		{InlineBold, "go to " + link + ".", "**go to** `site <http://e.com>`__."},
		{InlineBold, "bold text" + note, "**bold text**\\ [#f1]_"},
		{InlineItalic, link, "`site <http://e.com>`__"},
		{InlineNone, "x" + link + "y", "x\\ `site <http://e.com>`__\\ y"},
	}
	for _, tt := range tests {
		if got := Glue(wrapRuns(tt.kind, tt.in)); got != tt.want {
			t.Errorf("wrapRuns(%s, %q) = %q, want %q", tt.kind, tt.in, got, tt.want)
		}
	}
}

func TestGlue(t *testing.T) {
	italic := func(s string) string { return wrapRuns(InlineItalic, s) }
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no markers", "plain", "plain"},
		{"fused both sides", "foo" + italic("bar") + "baz", "foo\\ *bar*\\ baz"},
		{"spaces", "foo " + italic("bar") + " baz", "foo *bar* baz"},
		{"punctuation", "(" + italic("bar") + ").", "(*bar*)."},
		{"non-ascii punctuation", "«" + italic("bar") + "»", "«*bar*»"},
		{"adjacent constructs", italic("a") + wrapRuns(InlineBold, "b"), "*a*\\ **b**"},
		{"edges", italic("a"), "*a*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Glue(tt.in)
			if got != tt.want {
				t.Errorf("Glue() = %q, want %q", got, tt.want)
			}
			if strings.IndexFunc(got, isMarker) >= 0 {
				t.Errorf("Glue() = %q keeps markers", got)
			}
		})
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"``a`` b", "``a`` b"},
		{"``a``b", "``a`` b"},
		{"x``a``", "x ``a``"},
		{"x``a``y", "x ``a`` y"},
		{"``a````b``", "``a`` ``b``"},
		{"``a``.", "``a``."},
		{"(``a``)", "(``a``)"},
		{"a`b", "a`b"},
		{"a`", "a`"},
		{"`", "`"},
		{"``é``ж", "``é`` ж"},
		{"``foo```lab <x>`__", "``foo`` `lab <x>`__"},
		{"``a```", "``a`` `"},
	}
	for _, tt := range tests {
		if got := Repair(tt.in); got != tt.want {
			t.Errorf("Repair(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func dropSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestRepair_KeepsVisibleText(t *testing.T) {
	inputs := []string{
		"use``go test``to run",
		"````",
		"a``b``c``d``e",
		"``x`` ``y``z",
		"it`s `quoted` ``literal``",
	}
	for _, in := range inputs {
		if got := Repair(in); dropSpace(got) != dropSpace(in) {
			t.Errorf("Repair(%q) = %q changes visible text", in, got)
		}
	}
}

func TestLiteralGuard_Fragments(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"split delimiter", []string{"a`", "`b``"}, "a ``b``"},
		{"close then word", []string{"use``", "x``", "y"}, "use ``x`` y"},
		{"reopen", []string{"``a``", "``b``"}, "``a`` ``b``"},
		{"single char parts", []string{"x", "`", "`", "1", "`", "`", "z"}, "x ``1`` z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newLiteralGuard()
			var b strings.Builder
			for _, p := range tt.parts {
				b.WriteString(g.Write(p))
			}
			b.WriteString(g.Flush())
			if got := b.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
