package convert

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"odt2rst/utils/debug"
)

// String returns readable listing of the index, used for dumps.
func (idx *Index) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "sections: %d", len(idx.Order))
	for _, id := range idx.Order {
		s := idx.Sections[id]
		tw.Line(s.Level+1, "%s %q", s.ID, s.Title)
		tw.Attr(s.Level+2, "slug", s.Slug)
		tw.Attr(s.Level+2, "file", s.FileName)
	}
	names := slices.Collect(maps.Keys(idx.References))
	sort.Sort(natural.StringSlice(names))
	tw.Line(0, "references: %d", len(names))
	for _, name := range names {
		t := idx.References[name]
		kind := "anchor"
		if t.Heading {
			kind = "heading"
		}
		tw.Line(1, "%s -> %s (%s, section %q)", name, t.Slug, kind, t.SectionID)
	}
	return tw.String()
}
