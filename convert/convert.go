package convert

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"odt2rst/config"
	"odt2rst/content/text"
	"odt2rst/odt"
)

// Options controls conversion.
type Options struct {
	TableMode            config.TableMode
	PrefaceHeadingStyles []string
	StrictStyles         bool
	FootnotesRubric      string
	NotePrefix           string
	// picture href -> path of the written image relative to output directory
	Images map[string]string
}

type footnote struct {
	key  string
	body string
}

type converter struct {
	log      *zap.Logger
	opts     Options
	res      *StyleResolver
	idx      *Index
	splitter *text.Splitter
	hs       headingState
	sc       scope

	page *Sink // output pages
	out  *Sink // current destination, page sink or scratch

	notes     []footnote // footnotes of the current page
	noteCount int
	anchors   []string // pending anchors, written before next block
	emitted   map[string]bool
	images    []string // deferred image directives
}

// Convert performs the second pass producing output pages. Index must be
// built by BuildIndex from the same root with the same options.
func Convert(root *odt.Node, idx *Index, res *StyleResolver, splitter *text.Splitter, opts Options, log *zap.Logger) ([]Page, error) {
	c := &converter{
		log:      log,
		opts:     opts,
		res:      res,
		idx:      idx,
		splitter: splitter,
		hs:       headingState{opts: opts, res: res},
		page:     NewSink(),
		emitted:  make(map[string]bool),
	}
	c.out = c.page

	if err := c.convertNode(root); err != nil {
		return nil, err
	}
	c.flushAnchors()
	c.flushFootnotes()
	c.page.Close()

	pages := c.page.Pages()
	log.Debug("Document converted", zap.Int("pages", len(pages)))
	return pages, nil
}

// collect runs fn with output redirected to scratch sink and returns what
// was written.
func (c *converter) collect(fn func() error) (string, error) {
	text, err := c.capture(fn)
	return Glue(text), err
}

// capture is collect keeping inline markers for the enclosing paragraph.
func (c *converter) capture(fn func() error) (string, error) {
	saved := c.out
	scratch := newScratch()
	c.out = scratch
	err := fn()
	c.out = saved
	return scratch.String(), err
}

// container converts children of the node in its own scope.
func (c *converter) container(n *odt.Node) error {
	defer c.sc.enter(n)()
	c.sc.top().style = c.res.Resolve(n)
	return c.convertChildren(n)
}

func (c *converter) convertNode(n *odt.Node) error {
	defer c.sc.enter(n)()
	c.sc.top().style = c.res.Resolve(n)

	if c.hs.isHeading(n) {
		return c.heading(n)
	}

	switch n.Kind {
	case odt.KindText:
		c.out.Write(n.Text)
	case odt.KindSection, odt.KindFrame, odt.KindTextBox:
		return c.convertChildren(n)
	case odt.KindParagraph:
		return c.paragraph(n)
	case odt.KindSpan:
		return c.span(n)
	case odt.KindList:
		return c.list(n)
	case odt.KindTable:
		return c.table(n)
	case odt.KindLink:
		return c.link(n)
	case odt.KindImage:
		c.image(n)
	case odt.KindBookmark:
		c.bookmark(n)
	case odt.KindSequence:
		c.bookmark(n)
		return c.convertChildren(n)
	case odt.KindReference:
		return c.reference(n)
	case odt.KindNote:
		return c.note(n)
	case odt.KindSpace:
		c.out.Write(strings.Repeat(" ", n.Count))
	case odt.KindTab:
		if c.sc.lookup(flagInCode, false) {
			c.out.Write("    ")
		} else {
			c.out.Write(" ")
		}
	case odt.KindLineBreak:
		if c.sc.lookup(flagInCode, false) {
			c.out.Write("\n")
		} else {
			c.out.Write(" ")
		}
	case odt.KindNoteCitation, odt.KindDeclaration, odt.KindBookmarkEnd, odt.KindSoftPageBreak:
		// nothing to output
	default:
		return c.sc.fail(n, ErrUnknownNode, "%s (%s) is not expected here", n.Tag, n.Kind)
	}
	return nil
}

// convertChildren converts child nodes in order. Runs of monospace
// paragraphs become literal blocks.
func (c *converter) convertChildren(n *odt.Node) error {
	kids := n.Children
	for i := 0; i < len(kids); i++ {
		if c.isCode(kids[i]) {
			j := i + 1
			for j < len(kids) && c.isCode(kids[j]) {
				j++
			}
			if err := c.codeBlock(kids[i:j]); err != nil {
				return err
			}
			i = j - 1
			continue
		}
		if err := c.convertNode(kids[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) heading(n *odt.Node) error {
	if c.sc.lookup(flagInTable, true) || c.sc.lookup(flagParagraph, true) {
		return c.sc.fail(n, ErrUnknownNode, "heading is nested in table or paragraph")
	}
	f := c.sc.top()
	f.define(flagInHeading, true)

	id, depth, err := c.hs.headingID(&c.sc, n, c.hs.headingLevel(n))
	if err != nil {
		return err
	}
	title, err := headingTitle(&c.sc, n)
	if err != nil {
		return err
	}
	sec, ok := c.idx.Section(id)
	if !ok || sec.Title != title {
		return c.sc.fail(n, ErrMissingSection, "section %s %q", id, title)
	}

	if depth == 0 {
		c.flushAnchors()
		c.flushFootnotes()
		if name := c.page.Open(title); name != sec.FileName {
			return c.sc.fail(n, ErrMissingSection, "page %q was registered as %q", name, sec.FileName)
		}
		c.noteCount = 0
		c.log.Debug("Page opened", zap.String("title", title), zap.String("file", sec.FileName))
	}
	c.flushAnchors()

	rule := strings.Repeat(string(adornments[depth]), runewidth.StringWidth(title))
	var b strings.Builder
	if depth >= 1 {
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, ".. _%s:\n\n", sec.Slug)
	if depth <= 1 {
		b.WriteString(rule + "\n")
	}
	b.WriteString(title + "\n" + rule + "\n\n")
	c.out.WriteVerbatim(b.String())

	// frames are the only content converted from headings
	mark := len(c.images)
	var ferr error
	n.Walk(func(d *odt.Node) bool {
		if ferr != nil {
			return false
		}
		if d.Kind == odt.KindFrame {
			ferr = c.convertNode(d)
			return false
		}
		return true
	})
	if ferr != nil {
		return ferr
	}
	c.flushImages(mark)
	return nil
}

func (c *converter) paragraph(n *odt.Node) error {
	f := c.sc.top()
	if c.opts.StrictStyles && !f.style.Defined() && !c.res.HasStyle(n.Style, []string{"Footnote"}) {
		return c.sc.fail(n, ErrMissingStyle, "paragraph style %q", n.Style)
	}

	// nested paragraph (note body, text box) starts fresh inline state
	inherited := c.sc.lookup(flagIgnoreStyle, true)
	if c.sc.lookup(flagParagraph, true) {
		inherited = false
	}
	f.define(flagParagraph, true)
	f.define(flagIgnoreStyle, inherited || f.style.Inline != InlineNone)

	mark := len(c.images)
	raw, err := c.capture(func() error { return c.convertChildren(n) })
	if err != nil {
		return err
	}
	body := strings.TrimRightFunc(raw, unicode.IsSpace)
	if !inherited {
		body = Glue(wrapRuns(f.style.Inline, body))
	}

	if inherited {
		// part of enclosing styled run
		c.out.Write(body)
		return nil
	}

	if strings.TrimSpace(body) != "" {
		note := f.style.Note && !c.sc.lookup(flagInTable, false)
		if note {
			body = c.stripNotePrefix(body)
		}
		body = c.reflow(body)
		c.flushAnchors()
		if note {
			c.out.Write(".. note:: ", indentRest(body, "   "), "\n\n")
		} else {
			c.out.Write(body, "\n\n")
		}
	}
	c.flushImages(mark)
	return nil
}

// stripNotePrefix removes leading "Note:" word, admonition title says it.
// Prefix may be wrapped into inline markup on its own.
func (c *converter) stripNotePrefix(body string) string {
	if c.opts.NotePrefix == "" {
		return body
	}
	trimmed := strings.TrimLeftFunc(body, unicode.IsSpace)
	for _, d := range []string{"**", "``", "*", ""} {
		rest, ok := strings.CutPrefix(trimmed, d+c.opts.NotePrefix)
		if !ok || strings.IndexFunc(rest, isWordChar) == 0 {
			continue
		}
		rest = strings.TrimPrefix(rest, ":")
		if d != "" {
			if rest, ok = strings.CutPrefix(rest, d); !ok {
				// styled run goes past the prefix
				return body
			}
		}
		if rest = strings.TrimLeft(rest, ": \t\n"); rest == "" {
			return body
		}
		return rest
	}
	return body
}

// reflow puts every sentence on its own line. Blocks separated by blank
// line are reflowed separately.
func (c *converter) reflow(body string) string {
	blocks := strings.Split(body, "\n\n")
	out := blocks[:0]
	for _, b := range blocks {
		if strings.TrimSpace(b) == "" {
			continue
		}
		out = append(out, c.splitter.Lines(b))
	}
	return strings.Join(out, "\n\n")
}

func (c *converter) span(n *odt.Node) error {
	f := c.sc.top()
	if f.style.Inline == InlineNone || c.sc.lookup(flagIgnoreStyle, true) {
		return c.convertChildren(n)
	}
	f.define(flagIgnoreStyle, true)
	raw, err := c.capture(func() error { return c.convertChildren(n) })
	if err != nil {
		return err
	}
	c.out.Write(wrapRuns(f.style.Inline, raw))
	return nil
}

// split separates surrounding whitespace from the text.
func split(s string) (lead, core, trail string) {
	core = strings.TrimSpace(s)
	if core == "" {
		return s, "", ""
	}
	start := strings.Index(s, core)
	return s[:start], core, s[start+len(core):]
}

var refEscaper = strings.NewReplacer("<", `\<`, "`", "\\`")

func (c *converter) link(n *odt.Node) error {
	c.sc.top().define(flagIgnoreStyle, true)
	raw, err := c.collect(func() error { return c.convertChildren(n) })
	if err != nil {
		return err
	}
	lead, label, trail := split(raw)
	label = strings.Join(strings.Fields(label), " ")

	href := strings.TrimSpace(n.Href)
	switch {
	case c.sc.lookup(flagInCode, false) || href == "":
		c.out.Write(raw)
		return nil
	case strings.HasPrefix(href, "#"):
		t, ok := c.idx.Reference(href[1:])
		if !ok {
			c.log.Warn("Internal link target is unknown, writing plain text", zap.String("href", href), zap.String("text", label))
			c.out.Write(raw)
			return nil
		}
		if label == "" {
			label = t.Name
		}
		c.out.Write(lead + rawMarkup(":ref:`", refEscaper.Replace(label), " <", t.Slug, ">`") + trail)
	case label == "" || label == href:
		c.out.Write(lead + string(markRawStart) + href + string(markRawEnd) + trail)
	default:
		c.out.Write(lead + rawMarkup("`", refEscaper.Replace(label), " <", href, ">`__") + trail)
	}
	return nil
}

func (c *converter) image(n *odt.Node) {
	rel, ok := c.opts.Images[strings.TrimPrefix(n.Href, "./")]
	if !ok {
		c.log.Debug("Image skipped", zap.String("href", n.Href), zap.String("mime", n.MimeType))
		return
	}
	directive := "\n\n.. image:: " + rel + "\n\n"
	if c.sc.lookup(flagParagraph, true) || c.sc.lookup(flagInHeading, true) {
		c.images = append(c.images, directive)
		return
	}
	c.flushAnchors()
	c.out.WriteVerbatim(directive)
}

func (c *converter) flushImages(mark int) {
	if mark >= len(c.images) {
		return
	}
	for _, directive := range c.images[mark:] {
		c.out.WriteVerbatim(directive)
	}
	c.images = c.images[:mark]
}

func (c *converter) bookmark(n *odt.Node) {
	if t, ok := c.idx.Reference(n.Name); ok && !t.Heading {
		c.anchor(t.Slug)
	}
}

func (c *converter) anchor(slug string) {
	if c.emitted[slug] {
		return
	}
	c.emitted[slug] = true
	c.anchors = append(c.anchors, slug)
}

// flushAnchors writes pending anchors when output goes to the page,
// anchors found in tables and lists wait for the enclosing block.
func (c *converter) flushAnchors() {
	if c.out != c.page || len(c.anchors) == 0 {
		return
	}
	for _, a := range c.anchors {
		c.out.WriteVerbatim("\n\n.. _" + a + ":\n\n")
	}
	c.anchors = c.anchors[:0]
}

func (c *converter) reference(n *odt.Node) error {
	t, ok := c.idx.Reference(n.Name)
	if !ok {
		return c.sc.fail(n, ErrMissingReference, "reference to %q", n.Name)
	}
	c.sc.top().define(flagIgnoreStyle, true)
	raw, err := c.collect(func() error { return c.convertChildren(n) })
	if err != nil {
		return err
	}
	if c.sc.lookup(flagInCode, false) {
		c.out.Write(raw)
		return nil
	}
	lead, label, trail := split(raw)
	label = strings.Join(strings.Fields(label), " ")
	switch {
	case t.Heading:
		c.out.Write(lead + rawMarkup(":ref:`", t.Slug, "`") + trail)
	default:
		if label == "" {
			label = t.Name
		}
		c.out.Write(lead + rawMarkup(":ref:`", refEscaper.Replace(label), " <", t.Slug, ">`") + trail)
	}
	return nil
}

func (c *converter) note(n *odt.Node) error {
	f := c.sc.top()
	f.define(flagInNote, true)
	f.define(flagIgnoreStyle, false)

	c.noteCount++
	key := fmt.Sprintf("f%d", c.noteCount)

	var body strings.Builder
	for _, child := range n.Children {
		if child.Kind != odt.KindNoteBody {
			continue
		}
		s, err := c.collect(func() error { return c.container(child) })
		if err != nil {
			return err
		}
		body.WriteString(s)
	}
	// reference is glued to preceding text
	c.out.Write(string(markRawStart) + escapedSpace + "[#" + key + "]_" + string(markClose) + string(markRawEnd))
	c.notes = append(c.notes, footnote{key: key, body: strings.TrimSpace(body.String())})
	return nil
}

// flushFootnotes writes footnotes block of the current page.
func (c *converter) flushFootnotes() {
	if len(c.notes) == 0 {
		return
	}
	if c.opts.FootnotesRubric != "" {
		c.page.Write("\n\n.. rubric:: ", c.opts.FootnotesRubric, "\n\n")
	}
	for _, fn := range c.notes {
		c.page.Write(".. [#", fn.key, "] ", indentRest(fn.body, "   "), "\n\n")
	}
	c.notes = c.notes[:0]
}

// indentRest prefixes every line but the first with indent, empty lines
// stay empty.
func indentRest(s, indent string) string {
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
