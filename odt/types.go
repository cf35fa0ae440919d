// Package odt holds document tree of OpenDocument Text file: nodes of the
// office:text body, named styles, list styles and font faces.
package odt

//go:generate go tool go-enum

import (
	"github.com/beevik/etree"
)

// Kind enumerates every node the converter knows how to deal with.
// ENUM(unknown, text, section, heading, paragraph, span, list, list-item, list-header, table, table-row-group, table-row, table-cell, table-column, link, frame, image, text-box, bookmark, bookmark-end, reference, sequence, note, note-citation, note-body, space, tab, line-break, soft-page-break, declaration)
type Kind int

// Attr is element attribute with canonical prefix ("text:style-name").
type Attr struct {
	Name  string
	Value string
}

// Node is a single element or text leaf of the document body. Nodes are never
// modified after parsing.
type Node struct {
	Kind     Kind
	Tag      string // canonical qualified tag, empty for text leaves
	Text     string // character data of KindText
	Style    string // text:style-name (list style name for lists)
	Attrs    []Attr
	Children []*Node

	Level      int    // heading outline level, 0 when not specified
	Href       string // link and image target
	Name       string // bookmark, reference, sequence and section names, note id
	Count      int    // repeat count of text:s
	MimeType   string // image encoding declared by the producer
	NoteClass  string // footnote or endnote
	HeaderRows bool   // row group is table-header-rows
}

// Attr returns value of the attribute with canonical name or empty string.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Walk visits node and its descendants in document order. Returning false
// from fn skips children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Style is a named style with its property groups. Property group key is the
// canonical tag of properties element ("style:text-properties"), attribute
// keys are canonical attribute names ("fo:font-weight").
type Style struct {
	Name        string
	DisplayName string
	Family      string
	Parent      string
	Props       map[string]map[string]string
}

// ListStyle is a text:list-style definition. Numbered has entry for every
// defined level, level 1 first.
type ListStyle struct {
	Name     string
	Numbered []bool
}

// IsNumbered reports whether list items at requested nesting level (1 based)
// are numbered. Levels past the defined ones follow the last definition.
func (ls *ListStyle) IsNumbered(level int) bool {
	if ls == nil || len(ls.Numbered) == 0 {
		return false
	}
	level = max(1, min(level, len(ls.Numbered)))
	return ls.Numbered[level-1]
}

// FontFace is a style:font-face declaration.
type FontFace struct {
	Name    string
	Family  string
	Generic string
	Pitch   string
}

// Document is the parsed content of the OpenDocument Text file.
type Document struct {
	Body       *Node
	Styles     map[string]*Style
	ListStyles map[string]*ListStyle
	FontFaces  map[string]*FontFace

	xml *etree.Document
}
