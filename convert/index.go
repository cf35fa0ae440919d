package convert

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"odt2rst/odt"
)

// adornments per heading depth, two topmost levels are overlined.
var adornments = []byte{'#', '*', '=', '-', '^', '"', '~', '+'}

// Section is a Section Registry entry.
type Section struct {
	ID       string // dotted outline number, "1.2.1"
	Title    string
	Slug     string
	FileName string // page the heading belongs to
	Level    int    // 0 for headings which open pages
}

// Target is a cross reference target registered by bookmark or sequence.
type Target struct {
	Name      string
	Slug      string
	Heading   bool   // bookmark placed inside heading, slug is heading slug
	SectionID string // enclosing section, empty before first heading
}

// Index is the result of the first pass. It is never modified by the second
// one.
type Index struct {
	Sections   map[string]*Section
	Order      []string // section ids in document order
	References map[string]*Target
}

// Section returns registry entry by outline id.
func (idx *Index) Section(id string) (*Section, bool) {
	s, ok := idx.Sections[id]
	return s, ok
}

// Reference returns target registered under name.
func (idx *Index) Reference(name string) (*Target, bool) {
	t, ok := idx.References[name]
	return t, ok
}

// outline produces dotted heading numbers. Going deeper starts child counter
// at 1, same level increments, going up resumes counting at that level.
type outline struct {
	counters []int
}

func (o *outline) next(level int) string {
	if len(o.counters) >= level {
		o.counters = o.counters[:level]
		o.counters[level-1]++
	} else {
		for len(o.counters) < level-1 {
			o.counters = append(o.counters, 1)
		}
		o.counters = append(o.counters, 1)
	}
	parts := make([]string, len(o.counters))
	for i, c := range o.counters {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// headingState is shared by both passes so that they make identical decisions
// about what is a heading and what its identifiers are.
type headingState struct {
	opts     Options
	res      *StyleResolver
	outline  outline
	seenReal bool // real text:h was seen, preface is over
}

// headingLevel returns outline level of the node when it must be treated as
// heading, 0 otherwise.
func (hs *headingState) headingLevel(n *odt.Node) int {
	switch n.Kind {
	case odt.KindHeading:
		hs.seenReal = true
		return max(n.Level, 0)
	case odt.KindParagraph:
		if !hs.seenReal && len(hs.opts.PrefaceHeadingStyles) > 0 &&
			hs.res.HasStyle(n.Style, hs.opts.PrefaceHeadingStyles) {
			return 1
		}
	}
	return -1
}

// isHeading reports whether node is (or acts as) heading. Does not change
// state.
func (hs *headingState) isHeading(n *odt.Node) bool {
	switch n.Kind {
	case odt.KindHeading:
		return true
	case odt.KindParagraph:
		return !hs.seenReal && len(hs.opts.PrefaceHeadingStyles) > 0 &&
			hs.res.HasStyle(n.Style, hs.opts.PrefaceHeadingStyles)
	}
	return false
}

// headingTitle collects heading title. Only text bearing inline content is
// allowed in headings, frames are converted separately after the title.
func headingTitle(sc *scope, n *odt.Node) (string, error) {
	var b strings.Builder
	var walk func(*odt.Node) error
	walk = func(c *odt.Node) error {
		switch c.Kind {
		case odt.KindText:
			b.WriteString(c.Text)
		case odt.KindSpace:
			b.WriteString(strings.Repeat(" ", c.Count))
		case odt.KindTab, odt.KindLineBreak:
			b.WriteByte(' ')
		case odt.KindSpan, odt.KindLink, odt.KindReference, odt.KindSequence:
			for _, cc := range c.Children {
				if err := walk(cc); err != nil {
					return err
				}
			}
		case odt.KindFrame, odt.KindBookmark, odt.KindBookmarkEnd, odt.KindSoftPageBreak:
		default:
			return sc.fail(c, ErrUnknownNode, "%s is not allowed in heading", c.Tag)
		}
		return nil
	}
	for _, c := range n.Children {
		if err := walk(c); err != nil {
			return "", err
		}
	}
	title := strings.Join(strings.Fields(b.String()), " ")
	if title == "" {
		return "", sc.fail(n, ErrEmptyHeading, "heading without title")
	}
	return title, nil
}

// headingID validates outline level and returns next outline number and
// zero based depth.
func (hs *headingState) headingID(sc *scope, n *odt.Node, level int) (string, int, error) {
	if level <= 0 || level > len(adornments) {
		return "", 0, sc.fail(n, ErrBadHeading, "outline level %d is out of range 1..%d", level, len(adornments))
	}
	return hs.outline.next(level), level - 1, nil
}

// BuildIndex performs the first pass: it assigns outline numbers, slugs and
// page file names to every heading and registers cross reference targets.
// No output is produced.
func BuildIndex(root *odt.Node, res *StyleResolver, opts Options, log *zap.Logger) (*Index, error) {
	ix := &indexer{
		log:   log,
		hs:    headingState{opts: opts, res: res},
		names: newFileNamer(),
		slugs: make(map[string]bool),
		idx: &Index{
			Sections:   make(map[string]*Section),
			References: make(map[string]*Target),
		},
	}
	if err := ix.walk(root); err != nil {
		return nil, err
	}
	log.Debug("Index built",
		zap.Int("sections", len(ix.idx.Sections)),
		zap.Int("references", len(ix.idx.References)))
	return ix.idx, nil
}

type indexer struct {
	log   *zap.Logger
	hs    headingState
	sc    scope
	names *fileNamer
	slugs map[string]bool
	idx   *Index

	file    string // current page file base
	section *Section
}

func (ix *indexer) walk(n *odt.Node) error {
	defer ix.sc.enter(n)()

	switch n.Kind {
	case odt.KindDeclaration, odt.KindNoteCitation:
		return nil
	case odt.KindBookmark, odt.KindSequence:
		ix.target(n, "")
	}

	if ix.hs.isHeading(n) {
		return ix.heading(n)
	}
	for _, c := range n.Children {
		if err := ix.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (ix *indexer) heading(n *odt.Node) error {
	level := ix.hs.headingLevel(n)
	parent := len(ix.hs.outline.counters)
	id, depth, err := ix.hs.headingID(&ix.sc, n, level)
	if err != nil {
		return err
	}
	title, err := headingTitle(&ix.sc, n)
	if err != nil {
		return err
	}
	if level > parent+1 {
		// adornments are ranked by first use, skipped level breaks hierarchy
		ix.log.Warn("Heading skips outline level",
			zap.String("id", id), zap.String("title", title),
			zap.Int("level", level), zap.Int("expected", parent+1))
	}
	if depth == 0 {
		ix.file = strings.TrimSuffix(ix.names.name(title), ".rst")
	}
	sec := &Section{
		ID:       id,
		Title:    title,
		Slug:     ix.uniqueSlug(ix.file + " " + title),
		FileName: ix.file + ".rst",
		Level:    depth,
	}
	ix.idx.Sections[id] = sec
	ix.idx.Order = append(ix.idx.Order, id)
	ix.section = sec

	// bookmarks inside heading point to the heading itself, other nested
	// content is handled by the converter (frames)
	var err2 error
	n.Walk(func(c *odt.Node) bool {
		if err2 != nil {
			return false
		}
		switch c.Kind {
		case odt.KindBookmark, odt.KindSequence:
			ix.target(c, sec.Slug)
		case odt.KindFrame:
			for _, cc := range c.Children {
				if err2 = ix.walk(cc); err2 != nil {
					return false
				}
			}
			return false
		}
		return true
	})
	return err2
}

// target registers bookmark or sequence name. When headingSlug is not empty
// target is the heading itself.
func (ix *indexer) target(n *odt.Node, headingSlug string) {
	if n.Name == "" {
		return
	}
	if _, exists := ix.idx.References[n.Name]; exists {
		ix.log.Warn("Duplicate cross reference target, keeping first one", zap.String("name", n.Name))
		return
	}
	t := &Target{Name: n.Name, Heading: headingSlug != ""}
	if ix.section != nil {
		t.SectionID = ix.section.ID
	}
	if t.Heading {
		t.Slug = headingSlug
	} else {
		t.Slug = ix.uniqueSlug(ix.file + "-" + n.Name)
	}
	ix.idx.References[n.Name] = t
}

func (ix *indexer) uniqueSlug(s string) string {
	base := slug.Make(s)
	if base == "" {
		base = "section"
	}
	candidate := base
	for i := 2; ix.slugs[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	ix.slugs[candidate] = true
	return candidate
}
