package convert

import (
	"strings"
	"testing"

	"odt2rst/odt"
)

func textStyle(name, parent string, props map[string]string) *odt.Style {
	return &odt.Style{
		Name:   name,
		Family: "text",
		Parent: parent,
		Props:  map[string]map[string]string{"style:text-properties": props},
	}
}

func testResolver(styles ...*odt.Style) *StyleResolver {
	doc := &odt.Document{
		Styles: make(map[string]*odt.Style),
		FontFaces: map[string]*odt.FontFace{
			"F1": {Name: "F1", Family: "Some Font", Pitch: "fixed"},
			"F2": {Name: "F2", Family: "DejaVu Sans Mono"},
			"F3": {Name: "F3", Family: "Liberation Serif", Pitch: "variable"},
		},
		ListStyles: map[string]*odt.ListStyle{"L1": {Name: "L1", Numbered: []bool{true}}},
	}
	for _, s := range styles {
		doc.Styles[s.Name] = s
	}
	return NewStyleResolver(doc, []string{"Note"})
}

func span(style string) *odt.Node {
	return &odt.Node{Kind: odt.KindSpan, Tag: "text:span", Style: style}
}

func TestStyleResolver_Chain(t *testing.T) {
	r := testResolver(
		textStyle("A", "B", nil),
		textStyle("B", "C", nil),
		textStyle("C", "A", nil),
		textStyle("Self", "Self", nil),
		textStyle("Orphan", "Missing", nil),
	)
	tests := []struct {
		name string
		want []string
	}{
		{"A", []string{"A", "B", "C"}},
		{"Self", []string{"Self"}},
		{"Orphan", []string{"Orphan"}},
		{"Missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, s := range r.Chain(tt.name) {
				got = append(got, s.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Chain(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	// cyclic chain must resolve as well
	if got := r.Resolve(span("A")); !got.Found || got.Inline != InlineNone {
		t.Errorf("Resolve(A) = %s", got)
	}
}

func TestStyleResolver_Resolve(t *testing.T) {
	r := testResolver(
		textStyle("Italic", "", map[string]string{"fo:font-style": "italic"}),
		textStyle("Bold", "", map[string]string{"fo:font-weight": "bold"}),
		textStyle("Heavy", "", map[string]string{"fo:font-weight": "700"}),
		textStyle("Medium", "", map[string]string{"fo:font-weight": "500"}),
		textStyle("BoldItalic", "", map[string]string{"fo:font-weight": "bold", "fo:font-style": "italic"}),
		textStyle("All", "", map[string]string{"fo:font-weight": "bold", "fo:font-style": "italic", "fo:font-family": "Ubuntu Mono"}),
		textStyle("ChildItalic", "Bold", map[string]string{"fo:font-style": "italic"}),
		textStyle("ChildNormal", "Bold", map[string]string{"fo:font-weight": "normal"}),
		textStyle("Pitch", "", map[string]string{"style:font-pitch": "fixed"}),
		textStyle("Face", "", map[string]string{"style:font-name": "F1"}),
		textStyle("FaceFamily", "", map[string]string{"style:font-name": "F2"}),
		textStyle("Serif", "", map[string]string{"style:font-name": "F3"}),
		textStyle("Courier", "", map[string]string{"style:font-name": "Courier New"}),
		textStyle("Note", "", map[string]string{"fo:font-style": "italic"}),
		textStyle("NoteChild", "Note", nil),
		textStyle("BoldNote", "Note", map[string]string{"fo:font-weight": "bold"}),
	)

	tests := []struct {
		style string
		want  Inline
		found bool
		note  bool
	}{
		{"", InlineNone, false, false},
		{"Unknown", InlineNone, false, false},
		{"Italic", InlineItalic, true, false},
		{"Bold", InlineBold, true, false},
		{"Heavy", InlineBold, true, false},
		{"Medium", InlineNone, true, false},
		{"BoldItalic", InlineBold, true, false},
		{"All", InlineMonospace, true, false},
		{"ChildItalic", InlineBold, true, false},
		{"ChildNormal", InlineNone, true, false},
		{"Pitch", InlineMonospace, true, false},
		{"Face", InlineMonospace, true, false},
		{"FaceFamily", InlineMonospace, true, false},
		{"Serif", InlineNone, true, false},
		{"Courier", InlineMonospace, true, false},
		{"Note", InlineNone, true, true},
		{"NoteChild", InlineNone, true, true},
		{"BoldNote", InlineBold, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			got := r.Resolve(span(tt.style))
			if got.Inline != tt.want || got.Found != tt.found || got.Note != tt.note {
				t.Errorf("Resolve(%q) = %s, want inline=%s found=%t note=%t", tt.style, got, tt.want, tt.found, tt.note)
			}
		})
	}
}

func TestStyleResolver_HeadingHasNoInline(t *testing.T) {
	r := testResolver(textStyle("Bold", "", map[string]string{"fo:font-weight": "bold"}))
	got := r.Resolve(&odt.Node{Kind: odt.KindHeading, Tag: "text:h", Style: "Bold"})
	if !got.Defined() || got.Inline != InlineNone {
		t.Errorf("Resolve(heading) = %s", got)
	}
}

func TestStyleResolver_HasStyle(t *testing.T) {
	title := textStyle("P5", "Title", nil)
	parent := textStyle("Title", "", nil)
	parent.DisplayName = "Document Title"
	r := testResolver(title, parent)

	tests := []struct {
		name  string
		names []string
		want  bool
	}{
		{"P5", []string{"Title"}, true},
		{"P5", []string{"Document Title"}, true},
		{"P5", []string{"Heading"}, false},
		{"Undefined", []string{"Undefined"}, true},
		{"", []string{""}, false},
	}
	for _, tt := range tests {
		if got := r.HasStyle(tt.name, tt.names); got != tt.want {
			t.Errorf("HasStyle(%q, %v) = %t, want %t", tt.name, tt.names, got, tt.want)
		}
	}
}

func TestStyleResolver_ListStyle(t *testing.T) {
	r := testResolver()
	if !r.ListStyle("L1").IsNumbered(1) {
		t.Error("L1 must be numbered")
	}
	if r.ListStyle("missing").IsNumbered(1) {
		t.Error("unknown list style must be bulleted")
	}
}

func TestStyleResolver_Options(t *testing.T) {
	r := testResolver(
		textStyle("Bold", "", map[string]string{"fo:font-weight": "bold"}),
		textStyle("Heavy", "", map[string]string{"fo:font-weight": "700"}),
	)
	r.Resolve(span("Heavy"))
	r.Resolve(span("Bold"))

	want := "style:text-properties\n  - fo:font-weight\n    - 700\n    - bold\n"
	if got := r.Options(); got != want {
		t.Errorf("Options() =\n%s\nwant\n%s", got, want)
	}
}
