package content

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"odt2rst/utils/debug"
)

// String returns a readable tree of the whole Content starting with the
// conversion root. It exists solely for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	out := c.Root.String()

	if len(c.Pictures) > 0 {
		tw := debug.NewTreeWriter()
		tw.Line(0, "Pictures: %d", len(c.Pictures))
		keys := slices.Collect(maps.Keys(c.Pictures))
		sort.Sort(natural.StringSlice(keys))
		for _, k := range keys {
			p := c.Pictures[k]
			tw.Line(1, "Picture[%q] ext[%q] mime[%q] size[%d]", k, p.Ext, p.MIME, len(p.Data))
		}
		out += "\n" + tw.String()
	}
	return out
}
