package convert

import (
	"fmt"
	"strings"

	"odt2rst/odt"
)

// flag is a scoped traversal attribute.
type flag uint16

const (
	flagIgnoreStyle flag = 1 << iota // inherited inline markup is already open
	flagParagraph
	flagInTable
	flagInList
	flagInCode
	flagInHeading
	flagInNote
)

var flagNames = []struct {
	f    flag
	name string
}{
	{flagIgnoreStyle, "ignore_style"},
	{flagParagraph, "paragraph"},
	{flagInTable, "table"},
	{flagInList, "list"},
	{flagInCode, "code"},
	{flagInHeading, "heading"},
	{flagInNote, "note"},
}

// frame is pushed for every visited node. Flag is "defined" by the frame when
// its bit is set in defined, value is taken from values.
type frame struct {
	node      *odt.Node
	style     Resolved
	listStyle string
	listLevel int
	defined   flag
	values    flag
}

func (f *frame) define(fl flag, v bool) {
	f.defined |= fl
	if v {
		f.values |= fl
	} else {
		f.values &^= fl
	}
}

func (f *frame) String() string {
	var b strings.Builder
	b.WriteString(f.node.Label())
	if f.style.Name != "" {
		fmt.Fprintf(&b, " resolved=%s", f.style)
	}
	if f.listStyle != "" {
		fmt.Fprintf(&b, " list-style=%q level=%d", f.listStyle, f.listLevel)
	}
	for _, fn := range flagNames {
		if f.defined&fn.f != 0 {
			fmt.Fprintf(&b, " %s=%t", fn.name, f.values&fn.f != 0)
		}
	}
	return b.String()
}

// scope is the traversal stack. Every push must be paired with pop on all
// exit paths, enter returns the pop so it could be deferred.
type scope struct {
	frames []*frame
}

func (s *scope) enter(n *odt.Node) func() {
	s.frames = append(s.frames, &frame{node: n})
	depth := len(s.frames)
	return func() {
		if len(s.frames) != depth {
			panic(fmt.Sprintf("traversal stack imbalance: expected depth %d, have %d", depth, len(s.frames)))
		}
		s.frames = s.frames[:depth-1]
	}
}

func (s *scope) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// lookup searches for the closest frame defining the flag, starting with the
// innermost one unless skipInnermost is set. Undefined flag is false.
func (s *scope) lookup(fl flag, skipInnermost bool) bool {
	end := len(s.frames)
	if skipInnermost {
		end--
	}
	for i := end - 1; i >= 0; i-- {
		if f := s.frames[i]; f.defined&fl != 0 {
			return f.values&fl != 0
		}
	}
	return false
}

// list returns closest enclosing list frame, skipping the innermost.
func (s *scope) list() *frame {
	for i := len(s.frames) - 2; i >= 0; i-- {
		if f := s.frames[i]; f.node.Kind == odt.KindList {
			return f
		}
	}
	return nil
}

// dump describes frames innermost first.
func (s *scope) dump() []string {
	out := make([]string, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		out = append(out, s.frames[i].String())
	}
	return out
}

// fail builds StructureError for the node in the current traversal state.
func (s *scope) fail(n *odt.Node, err error, format string, args ...any) error {
	return &StructureError{
		Err:    err,
		Reason: fmt.Sprintf(format, args...),
		Node:   n.String(),
		Stack:  s.dump(),
	}
}
