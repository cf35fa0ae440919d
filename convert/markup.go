package convert

import (
	"strings"
	"unicode"
)

// Delimiter returns inline markup delimiter of the kind.
func (i Inline) Delimiter() string {
	switch i {
	case InlineItalic:
		return "*"
	case InlineBold:
		return "**"
	case InlineMonospace:
		return "``"
	default:
		return ""
	}
}

// Markers placed into collected text around inline constructs. They never
// reach the output, Glue resolves them once the enclosing paragraph is
// complete.
const (
	markOpen     = '\uE000' // construct starts here
	markClose    = '\uE001' // construct ends here
	markRawStart = '\uE002' // finished markup, must not be wrapped again
	markRawEnd   = '\uE003'
)

// escapedSpace separates inline markup from adjacent text without adding
// visible characters.
const escapedSpace = `\ `

// rawMarkup encloses finished inline construct into markers.
func rawMarkup(parts ...string) string {
	return string(markRawStart) + string(markOpen) + strings.Join(parts, "") + string(markClose) + string(markRawEnd)
}

// wrapRuns puts text into delimiters of the kind. Surrounding whitespace
// stays outside of the delimiters, text without visible characters is
// returned as is. Plain runs between raw markup are wrapped one by one, so
// child constructs stay outside of the delimiters. Monospace is left to
// literal guard and gets no glue markers.
func wrapRuns(kind Inline, text string) string {
	if kind == InlineNone {
		return text
	}
	runs := splitRaw(text)
	nested := len(runs) > 1
	var b strings.Builder
	for _, r := range runs {
		if r.raw {
			b.WriteString(r.text)
			continue
		}
		lead, core, trail := split(r.text)
		if core == "" || (nested && strings.IndexFunc(core, isWordChar) < 0) {
			b.WriteString(r.text)
			continue
		}
		d := kind.Delimiter()
		b.WriteString(lead)
		if kind != InlineMonospace {
			b.WriteRune(markOpen)
		}
		b.WriteString(d + core + d)
		if kind != InlineMonospace {
			b.WriteRune(markClose)
		}
		b.WriteString(trail)
	}
	return b.String()
}

type run struct {
	text string
	raw  bool
}

// splitRaw separates text into plain runs and outermost raw markup runs.
func splitRaw(text string) []run {
	var (
		runs  []run
		depth int
		start int
	)
	for i, r := range text {
		switch r {
		case markRawStart:
			if depth == 0 && i > start {
				runs = append(runs, run{text: text[start:i]})
			}
			if depth == 0 {
				start = i
			}
			depth++
		case markRawEnd:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				end := i + len(string(markRawEnd))
				runs = append(runs, run{text: text[start:end], raw: true})
				start = end
			}
		}
	}
	if start < len(text) {
		runs = append(runs, run{text: text[start:], raw: depth > 0})
	}
	return runs
}

func isMarker(r rune) bool {
	return r >= markOpen && r <= markRawEnd
}

// Glue resolves markers: escaped space is put wherever inline construct
// would not be recognized because of adjacent character, markers are
// removed.
func Glue(text string) string {
	if strings.IndexFunc(text, isMarker) < 0 {
		return text
	}
	rs := []rune(text)
	var (
		b    strings.Builder
		prev rune
	)
	b.Grow(len(text))
	for i, r := range rs {
		switch r {
		case markOpen:
			if prev != 0 && !canPrecedeMarkup(prev) {
				b.WriteString(escapedSpace)
				prev = ' '
			}
		case markClose:
			if next := nextVisible(rs[i+1:]); next != 0 && !canFollowMarkup(next) {
				b.WriteString(escapedSpace)
				prev = ' '
			}
		case markRawStart, markRawEnd:
		default:
			b.WriteRune(r)
			prev = r
		}
	}
	return b.String()
}

func nextVisible(rs []rune) rune {
	for _, r := range rs {
		if !isMarker(r) {
			return r
		}
	}
	return 0
}

func canPrecedeMarkup(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`-:/'"<([{`, r) || isWidePunct(r)
}

func canFollowMarkup(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`-.,:;!?\/'")]}>`, r) || isWidePunct(r)
}

func isWidePunct(r rune) bool {
	return r > unicode.MaxASCII && unicode.IsPunct(r)
}

type guardState int

const (
	outsideLiteral guardState = iota
	insideLiteral
	closedLiteral // literal just closed, next character decides
)

// literalGuard repairs text containing double backtick literal delimiters so
// that no alphanumeric character or backtick is fused with a delimiter. State survives
// between Write calls, text arrives in small fragments.
type literalGuard struct {
	state   guardState
	pending bool // single backtick seen, waiting for the next character
	last    rune // last character emitted
}

func newLiteralGuard() *literalGuard {
	return &literalGuard{}
}

// Write returns repaired fragment. Trailing backtick may be held back until
// next Write or Flush.
func (g *literalGuard) Write(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		if g.pending {
			g.pending = false
			if r == '`' {
				g.delimiter(&b)
				continue
			}
			g.char(&b, '`')
		}
		if r == '`' {
			g.pending = true
			continue
		}
		g.char(&b, r)
	}
	return b.String()
}

// Flush returns held back character, if any.
func (g *literalGuard) Flush() string {
	if !g.pending {
		return ""
	}
	g.pending = false
	var b strings.Builder
	g.char(&b, '`')
	return b.String()
}

func (g *literalGuard) emit(b *strings.Builder, r rune) {
	b.WriteRune(r)
	g.last = r
}

func (g *literalGuard) delimiter(b *strings.Builder) {
	switch g.state {
	case outsideLiteral:
		if isWordChar(g.last) {
			g.emit(b, ' ')
		}
		g.state = insideLiteral
	case insideLiteral:
		g.state = closedLiteral
	case closedLiteral:
		// closing immediately followed by opening
		g.emit(b, ' ')
		g.state = insideLiteral
	}
	g.emit(b, '`')
	g.emit(b, '`')
}

func (g *literalGuard) char(b *strings.Builder, r rune) {
	if g.state == closedLiteral {
		if isWordChar(r) || r == '`' {
			g.emit(b, ' ')
		}
		g.state = outsideLiteral
	}
	g.emit(b, r)
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Repair runs text through fresh literal guard.
func Repair(s string) string {
	g := newLiteralGuard()
	return g.Write(s) + g.Flush()
}
