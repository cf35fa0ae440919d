package convert

//go:generate go tool go-enum

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"

	"odt2rst/odt"
	"odt2rst/utils/debug"
)

// Inline is the effective character styling of a node.
// ENUM(none, italic, bold, monospace)
type Inline int

// Resolved is the result of style resolution for a single node.
type Resolved struct {
	Name   string // style name referenced by the node
	Found  bool   // style is defined in the document
	Note   bool   // style (or one of its ancestors) is a note style
	Inline Inline
}

// Defined reports whether node refers to existing style.
func (r Resolved) Defined() bool {
	return r.Name != "" && r.Found
}

func (r Resolved) String() string {
	return fmt.Sprintf("<%q found=%t note=%t inline=%s>", r.Name, r.Found, r.Note, r.Inline)
}

type resolvedStyle struct {
	props map[string]map[string]string
	names []string // chain, node style first
	found bool
}

// StyleResolver derives inline classification from named styles walking
// parent-style-name chain. Results are cached by style name.
type StyleResolver struct {
	styles     map[string]*odt.Style
	fonts      map[string]*odt.FontFace
	lists      map[string]*odt.ListStyle
	noteStyles map[string]bool
	cache      map[string]*resolvedStyle

	// property group -> property -> values seen, for diagnostics
	seen map[string]map[string]map[string]struct{}
}

func NewStyleResolver(doc *odt.Document, noteStyles []string) *StyleResolver {
	r := &StyleResolver{
		styles:     doc.Styles,
		fonts:      doc.FontFaces,
		lists:      doc.ListStyles,
		noteStyles: make(map[string]bool, len(noteStyles)),
		cache:      make(map[string]*resolvedStyle),
		seen:       make(map[string]map[string]map[string]struct{}),
	}
	for _, n := range noteStyles {
		r.noteStyles[n] = true
	}
	return r
}

// Chain returns inheritance chain of the named style, the style itself first.
// Every name is visited at most once so cyclic chains terminate, chain stops
// at the first unknown parent.
func (r *StyleResolver) Chain(name string) []*odt.Style {
	var chain []*odt.Style
	visited := make(map[string]bool)
	for current := name; current != "" && !visited[current]; {
		visited[current] = true
		s, ok := r.styles[current]
		if !ok {
			break
		}
		chain = append(chain, s)
		current = s.Parent
	}
	return chain
}

func (r *StyleResolver) resolve(name string) *resolvedStyle {
	if rs, ok := r.cache[name]; ok {
		return rs
	}
	chain := r.Chain(name)
	rs := &resolvedStyle{
		props: make(map[string]map[string]string),
		found: len(chain) > 0,
	}
	// merge from the root ancestor down, child overrides parent
	for i := len(chain) - 1; i >= 0; i-- {
		for group, props := range chain[i].Props {
			merged, ok := rs.props[group]
			if !ok {
				merged = make(map[string]string)
				rs.props[group] = merged
			}
			maps.Copy(merged, props)
		}
	}
	for _, s := range chain {
		rs.names = append(rs.names, s.Name)
		if s.DisplayName != "" {
			rs.names = append(rs.names, s.DisplayName)
		}
	}
	r.cache[name] = rs
	r.record(rs.props)
	return rs
}

func (r *StyleResolver) record(props map[string]map[string]string) {
	for group, attrs := range props {
		g, ok := r.seen[group]
		if !ok {
			g = make(map[string]map[string]struct{})
			r.seen[group] = g
		}
		for k, v := range attrs {
			vals, ok := g[k]
			if !ok {
				vals = make(map[string]struct{})
				g[k] = vals
			}
			vals[v] = struct{}{}
		}
	}
}

// Resolve returns effective styling of the node. Node without style or with
// unknown style resolves to InlineNone. Headings never carry inline
// classification.
func (r *StyleResolver) Resolve(n *odt.Node) Resolved {
	res := Resolved{Name: n.Style}
	if n.Style == "" {
		return res
	}
	rs := r.resolve(n.Style)
	res.Found = rs.found
	if !rs.found {
		return res
	}
	res.Note = r.isNote(rs)
	if n.Kind == odt.KindHeading {
		return res
	}
	res.Inline = r.classify(rs.props, res.Note)
	return res
}

// ListStyle returns list style definition or nil.
func (r *StyleResolver) ListStyle(name string) *odt.ListStyle {
	return r.lists[name]
}

// HasStyle reports whether named style or any of its ancestors is called
// one of names (by name or display name).
func (r *StyleResolver) HasStyle(name string, names []string) bool {
	if name == "" {
		return false
	}
	rs := r.resolve(name)
	if !rs.found {
		return slices.Contains(names, name)
	}
	for _, n := range rs.names {
		if slices.Contains(names, n) {
			return true
		}
	}
	return false
}

func (r *StyleResolver) isNote(rs *resolvedStyle) bool {
	for _, n := range rs.names {
		if r.noteStyles[n] {
			return true
		}
	}
	return false
}

// classify walks every property group. Italic is checked first, bold
// overrides italic and monospace overrides both.
func (r *StyleResolver) classify(props map[string]map[string]string, note bool) Inline {
	var italic, bold, mono bool
	for _, group := range props {
		get := func(key string) string {
			return strings.ToLower(strings.TrimSpace(group[key]))
		}
		if !note && get("fo:font-style") == "italic" {
			italic = true
		}
		if isBold(get("fo:font-weight")) {
			bold = true
		}
		if r.isMono(get("fo:font-family"), get("style:font-name"), get("style:font-pitch")) {
			mono = true
		}
	}
	switch {
	case mono:
		return InlineMonospace
	case bold:
		return InlineBold
	case italic:
		return InlineItalic
	default:
		return InlineNone
	}
}

func isBold(weight string) bool {
	if weight == "bold" {
		return true
	}
	if v, err := strconv.Atoi(weight); err == nil {
		return v >= 600
	}
	return false
}

func (r *StyleResolver) isMono(family, fontName, pitch string) bool {
	if strings.Contains(family, "mono") || strings.Contains(fontName, "mono") ||
		strings.Contains(fontName, "courier") || pitch == "fixed" {
		return true
	}
	if fontName == "" {
		return false
	}
	// style:font-name refers to font face declaration
	for name, ff := range r.fonts {
		if !strings.EqualFold(name, fontName) {
			continue
		}
		fam := strings.ToLower(ff.Family)
		return ff.Pitch == "fixed" || strings.Contains(fam, "mono") || strings.Contains(fam, "courier")
	}
	return false
}

// Options returns every distinct property value seen during resolution
// grouped by property group and property, naturally sorted.
func (r *StyleResolver) Options() string {
	tw := debug.NewTreeWriter()
	groups := slices.Collect(maps.Keys(r.seen))
	sort.Sort(natural.StringSlice(groups))
	for _, g := range groups {
		tw.Line(0, "%s", g)
		props := slices.Collect(maps.Keys(r.seen[g]))
		sort.Sort(natural.StringSlice(props))
		for _, p := range props {
			tw.Line(1, "- %s", p)
			vals := slices.Collect(maps.Keys(r.seen[g][p]))
			sort.Sort(natural.StringSlice(vals))
			for _, v := range vals {
				tw.Line(2, "- %s", v)
			}
		}
	}
	return tw.String()
}
