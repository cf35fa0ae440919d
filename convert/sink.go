package convert

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Page is a single output file.
type Page struct {
	Title    string
	FileName string
	Text     string
}

// Sink accumulates output text. Page sink splits output into pages and
// repairs literal delimiters through the whole page, scratch sink is a single
// unnamed buffer used to collect text of a subtree. Runs of newlines never
// exceed two and horizontal whitespace before newline is dropped.
type Sink struct {
	open     bool
	buf      []byte
	newlines int
	guard    *literalGuard

	cur   *Page
	pages []Page
	names *fileNamer
}

// NewSink returns page sink with no page open. Writes are discarded until
// first Open.
func NewSink() *Sink {
	return &Sink{names: newFileNamer()}
}

func newScratch() *Sink {
	return &Sink{open: true, newlines: 2}
}

// Open closes current page and starts new one. Returns file name of the new
// page.
func (s *Sink) Open(title string) string {
	s.Close()
	s.cur = &Page{Title: title, FileName: s.names.name(title)}
	s.open = true
	s.buf = nil
	s.newlines = 2
	s.guard = newLiteralGuard()
	return s.cur.FileName
}

// Close finishes current page, if any.
func (s *Sink) Close() {
	if !s.open {
		return
	}
	s.flushGuard()
	if s.cur != nil {
		text := strings.TrimRightFunc(string(s.buf), unicode.IsSpace)
		if text != "" {
			text += "\n"
		}
		s.cur.Text = text
		s.pages = append(s.pages, *s.cur)
		s.cur = nil
	}
	s.open = false
	s.buf = nil
}

// Pages returns closed pages in creation order.
func (s *Sink) Pages() []Page {
	return slices.Clone(s.pages)
}

// String returns content accumulated so far.
func (s *Sink) String() string {
	return string(s.buf)
}

// Write appends text.
func (s *Sink) Write(parts ...string) {
	if !s.open {
		return
	}
	for _, p := range parts {
		if s.guard != nil {
			p = s.guard.Write(Glue(p))
		}
		s.append(p)
	}
}

// Writeln appends text followed by newline.
func (s *Sink) Writeln(parts ...string) {
	s.Write(parts...)
	s.Write("\n")
}

// WriteVerbatim appends text bypassing literal repair. Used for blocks which
// were already repaired or must stay untouched.
func (s *Sink) WriteVerbatim(text string) {
	if !s.open {
		return
	}
	s.flushGuard()
	s.append(text)
}

func (s *Sink) flushGuard() {
	if s.guard != nil {
		s.append(s.guard.Flush())
	}
}

func (s *Sink) append(text string) {
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\n':
			s.buf = bytes.TrimRight(s.buf, " \t")
			if s.newlines == 2 {
				continue
			}
			s.newlines++
			s.buf = append(s.buf, c)
		case ' ', '\t':
			s.buf = append(s.buf, c)
		default:
			s.newlines = 0
			s.buf = append(s.buf, c)
		}
	}
}

// fileNamer produces unique page file names from titles.
type fileNamer struct {
	used map[string]bool
}

func newFileNamer() *fileNamer {
	return &fileNamer{used: make(map[string]bool)}
}

func (fn *fileNamer) name(title string) string {
	base := fileBase(title)
	candidate := base
	for i := 2; fn.used[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	fn.used[candidate] = true
	return candidate + ".rst"
}

// fileBase lowercases title keeping letters and digits, space, underscore
// and dash runs become single underscore, everything else is dropped.
func fileBase(title string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			underscore = false
		case r == ' ' || r == '_' || r == '-':
			if !underscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			underscore = true
		}
	}
	name := strings.TrimRight(b.String(), "_")
	if name == "" {
		return "page"
	}
	return name
}
