package convert

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"odt2rst/utils/debug"
)

var (
	ErrMissingSection   = errors.New("heading is not in the section registry")
	ErrMissingReference = errors.New("reference target was never registered")
	ErrUnknownNode      = errors.New("unexpected node")
	ErrMalformedTable   = errors.New("malformed table")
	ErrEmptyHeading     = errors.New("heading title is blank")
	ErrBadHeading       = errors.New("heading has unusable outline level")
	ErrMissingStyle     = errors.New("paragraph has no style")
)

// StructureError reports document structure converter cannot handle. It
// carries dump of the offending node and traversal stack, innermost frame
// first.
type StructureError struct {
	Err    error
	Reason string
	Node   string
	Stack  []string
}

func (e *StructureError) Error() string {
	if e.Reason == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

func (e *StructureError) Unwrap() error {
	return e.Err
}

// Dump returns multiline diagnostic text.
func (e *StructureError) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "ERROR: %s", e.Error())
	tw.Line(0, "Offending node:")
	tw.Rule(80)
	for line := range strings.Lines(strings.TrimRight(e.Node, "\n")) {
		tw.Line(1, "%s", strings.TrimRight(line, "\n"))
	}
	tw.Rule(80)
	tw.Line(0, "Traversal stack (innermost first):")
	for _, frame := range e.Stack {
		tw.Line(1, "- %s", frame)
	}
	return tw.String()
}

// Fields returns zap fields describing the error.
func (e *StructureError) Fields() []zap.Field {
	return []zap.Field{
		zap.String("reason", e.Error()),
		zap.String("node", e.Node),
		zap.Strings("stack", e.Stack),
	}
}
