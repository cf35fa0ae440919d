package odt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ErrNoSection is returned when requested conversion root does not exist.
var ErrNoSection = errors.New("section not found")

// Namespaces are matched by URI, prefixes used by the producer do not matter.
var prefixes = map[string]string{
	"urn:oasis:names:tc:opendocument:xmlns:office:1.0":                     "office",
	"urn:oasis:names:tc:opendocument:xmlns:text:1.0":                       "text",
	"urn:oasis:names:tc:opendocument:xmlns:table:1.0":                      "table",
	"urn:oasis:names:tc:opendocument:xmlns:drawing:1.0":                    "draw",
	"urn:oasis:names:tc:opendocument:xmlns:style:1.0":                      "style",
	"urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0":          "fo",
	"urn:oasis:names:tc:opendocument:xmlns:svg-compatible:1.0":             "svg",
	"urn:org:documentfoundation:names:experimental:office:xmlns:loext:1.0": "loext",
	"http://www.w3.org/1999/xlink":                                         "xlink",
}

type tagInfo struct {
	kind Kind
	// character data is significant and subject to whitespace collapsing
	text bool
}

var tags = map[string]tagInfo{
	"office:text":                {kind: KindSection},
	"text:section":               {kind: KindSection},
	"text:h":                     {kind: KindHeading, text: true},
	"text:p":                     {kind: KindParagraph, text: true},
	"text:span":                  {kind: KindSpan, text: true},
	"text:list":                  {kind: KindList},
	"text:list-item":             {kind: KindListItem},
	"text:list-header":           {kind: KindListHeader},
	"table:table":                {kind: KindTable},
	"table:table-header-rows":    {kind: KindTableRowGroup},
	"table:table-rows":           {kind: KindTableRowGroup},
	"table:table-row":            {kind: KindTableRow},
	"table:table-cell":           {kind: KindTableCell},
	"table:covered-table-cell":   {kind: KindTableCell},
	"table:table-column":         {kind: KindTableColumn},
	"table:table-columns":        {kind: KindTableColumn},
	"table:table-header-columns": {kind: KindTableColumn},
	"text:a":                     {kind: KindLink, text: true},
	"draw:frame":                 {kind: KindFrame},
	"draw:image":                 {kind: KindImage},
	"draw:text-box":              {kind: KindTextBox},
	"text:bookmark":              {kind: KindBookmark},
	"text:bookmark-start":        {kind: KindBookmark},
	"text:reference-mark":        {kind: KindBookmark},
	"text:reference-mark-start":  {kind: KindBookmark},
	"text:bookmark-end":          {kind: KindBookmarkEnd},
	"text:reference-mark-end":    {kind: KindBookmarkEnd},
	"text:bookmark-ref":          {kind: KindReference, text: true},
	"text:sequence-ref":          {kind: KindReference, text: true},
	"text:reference-ref":         {kind: KindReference, text: true},
	"text:sequence":              {kind: KindSequence, text: true},
	"text:note":                  {kind: KindNote},
	"text:note-citation":         {kind: KindNoteCitation, text: true},
	"text:note-body":             {kind: KindNoteBody},
	"text:s":                     {kind: KindSpace},
	"text:tab":                   {kind: KindTab},
	"text:line-break":            {kind: KindLineBreak},
	"text:soft-page-break":       {kind: KindSoftPageBreak},
	"text:sequence-decls":        {kind: KindDeclaration},
	"text:variable-decls":        {kind: KindDeclaration},
	"text:user-field-decls":      {kind: KindDeclaration},
	"office:forms":               {kind: KindDeclaration},
	"text:table-of-content":      {kind: KindDeclaration},
	"text:illustration-index":    {kind: KindDeclaration},
	"text:alphabetical-index":    {kind: KindDeclaration},
}

// Parse builds Document from content.xml and (optional) styles.xml of the
// package. Styles from content.xml override same named styles from
// styles.xml.
func Parse(content, styles []byte, log *zap.Logger) (*Document, error) {
	cdoc, err := readXML(content)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	root := cdoc.Root()
	if root == nil {
		return nil, fmt.Errorf("content: document has no root element")
	}
	if name := qname(root.Space, root.Tag, root.NamespaceURI()); name != "office:document-content" {
		return nil, fmt.Errorf("content: unexpected root element %q", name)
	}

	doc := &Document{
		Styles:     make(map[string]*Style),
		ListStyles: make(map[string]*ListStyle),
		FontFaces:  make(map[string]*FontFace),
		xml:        cdoc,
	}

	if len(styles) > 0 {
		sdoc, err := readXML(styles)
		if err != nil {
			return nil, fmt.Errorf("styles: %w", err)
		}
		if sroot := sdoc.Root(); sroot != nil {
			doc.parseStyleContainers(sroot, log)
		}
	}
	doc.parseStyleContainers(root, log)

	for _, child := range root.ChildElements() {
		if elementName(child) != "office:body" {
			continue
		}
		for _, el := range child.ChildElements() {
			if elementName(el) == "office:text" {
				doc.Body = buildNode(el, log)
			}
		}
	}
	if doc.Body == nil {
		return nil, fmt.Errorf("content: document has no office:text body")
	}
	log.Debug("Document parsed",
		zap.Int("styles", len(doc.Styles)),
		zap.Int("list_styles", len(doc.ListStyles)),
		zap.Int("font_faces", len(doc.FontFaces)))
	return doc, nil
}

// Root returns conversion root: the text:section with requested name, or when
// name is empty the first text:section of the body, or the body itself when
// there are no sections.
func (d *Document) Root(section string) (*Node, error) {
	var found *Node
	d.Body.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Kind == KindSection && n.Tag == "text:section" && (section == "" || n.Name == section) {
			found = n
			return false
		}
		return true
	})
	switch {
	case found != nil:
		return found, nil
	case section == "":
		return d.Body, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoSection, section)
	}
}

func readXML(data []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("unable to read XML: %w", err)
	}
	return doc, nil
}

func qname(space, local, uri string) string {
	if p, ok := prefixes[uri]; ok {
		return p + ":" + local
	}
	if space == "" {
		return local
	}
	return space + ":" + local
}

func elementName(el *etree.Element) string {
	return qname(el.Space, el.Tag, el.NamespaceURI())
}

func attrName(a *etree.Attr) string {
	return qname(a.Space, a.Key, a.NamespaceURI())
}

func attrs(el *etree.Element) []Attr {
	out := make([]Attr, 0, len(el.Attr))
	for i := range el.Attr {
		a := &el.Attr[i]
		if a.Space == "xmlns" || (a.Space == "" && a.Key == "xmlns") {
			continue
		}
		out = append(out, Attr{Name: attrName(a), Value: a.Value})
	}
	return out
}

func buildNode(el *etree.Element, log *zap.Logger) *Node {
	name := elementName(el)
	info, known := tags[name]
	n := &Node{
		Kind:  info.kind,
		Tag:   name,
		Attrs: attrs(el),
	}
	if !known {
		log.Debug("Unknown element", zap.String("tag", name))
	}
	n.Style = n.Attr("text:style-name")

	switch n.Kind {
	case KindSection:
		n.Name = n.Attr("text:name")
	case KindHeading:
		if lvl := n.Attr("text:outline-level"); lvl != "" {
			if v, err := strconv.Atoi(lvl); err == nil && v > 0 {
				n.Level = v
			} else {
				log.Warn("Bad heading outline level, ignoring", zap.String("value", lvl))
			}
		}
	case KindTableRowGroup:
		n.HeaderRows = name == "table:table-header-rows"
	case KindLink:
		n.Href = n.Attr("xlink:href")
	case KindImage:
		n.Href = n.Attr("xlink:href")
		n.MimeType = n.Attr("loext:mime-type")
		if n.MimeType == "" {
			n.MimeType = n.Attr("draw:mime-type")
		}
	case KindBookmark:
		n.Name = n.Attr("text:name")
	case KindReference, KindSequence:
		n.Name = n.Attr("text:ref-name")
	case KindNote:
		n.Name = n.Attr("text:id")
		n.NoteClass = n.Attr("text:note-class")
	case KindSpace:
		n.Count = 1
		if c := n.Attr("text:c"); c != "" {
			if v, err := strconv.Atoi(c); err == nil && v > 0 {
				n.Count = v
			}
		}
	}

	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			n.Children = append(n.Children, buildNode(t, log))
		case *etree.CharData:
			if !info.text && strings.TrimSpace(t.Data) == "" {
				continue
			}
			if t.Data == "" {
				continue
			}
			n.Children = append(n.Children, &Node{Kind: KindText, Text: collapseSpace(t.Data)})
		}
	}
	return n
}

// collapseSpace replaces every run of XML whitespace with a single space.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
