package odt

import (
	"fmt"

	"odt2rst/utils/debug"
)

type treeWriter struct {
	*debug.TreeWriter
}

// String returns readable tree of the node and its descendants with all
// attributes. Used in diagnostics and in the nodes dump.
func (n *Node) String() string {
	if n == nil {
		return "<nil node>"
	}
	tw := treeWriter{debug.NewTreeWriter()}
	tw.node(0, n)
	return tw.String()
}

// Label returns short one line description of the node.
func (n *Node) Label() string {
	if n == nil {
		return "<nil>"
	}
	if n.Kind == KindText {
		return fmt.Sprintf("text %q", n.Text)
	}
	label := n.Tag
	if n.Style != "" {
		label += fmt.Sprintf(" style=%q", n.Style)
	}
	if n.Name != "" {
		label += fmt.Sprintf(" name=%q", n.Name)
	}
	if n.Level != 0 {
		label += fmt.Sprintf(" level=%d", n.Level)
	}
	return label
}

func (tw treeWriter) node(depth int, n *Node) {
	if n.Kind == KindText {
		tw.TextBlock(depth, "#text", n.Text)
		return
	}
	tw.Line(depth, "%s [%s]", n.Tag, n.Kind)
	for _, a := range n.Attrs {
		tw.Attr(depth+1, a.Name, a.Value)
	}
	for _, c := range n.Children {
		tw.node(depth+1, c)
	}
}

// XML returns indented content.xml as it was read.
func (d *Document) XML() ([]byte, error) {
	if d.xml == nil {
		return nil, fmt.Errorf("no XML document")
	}
	doc := d.xml.Copy()
	doc.Indent(2)
	return doc.WriteToBytes()
}
