package convert

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"odt2rst/config"
	"odt2rst/content/text"
	"odt2rst/odt"
)

const testStyles = `
<style:style style:name="Standard" style:family="paragraph"/>
<style:style style:name="Bold" style:family="text"><style:text-properties fo:font-weight="bold"/></style:style>
<style:style style:name="Ital" style:family="text"><style:text-properties fo:font-style="italic"/></style:style>
<style:style style:name="Code" style:family="text"><style:text-properties style:font-name="Courier New"/></style:style>
<style:style style:name="CodePara" style:family="paragraph"><style:text-properties style:font-name="Liberation Mono"/></style:style>
<style:style style:name="BoldPara" style:family="paragraph"><style:text-properties fo:font-weight="bold"/></style:style>
<style:style style:name="Note" style:family="paragraph"><style:text-properties fo:font-style="italic"/></style:style>
<style:style style:name="P1" style:family="paragraph" style:parent-style-name="Note"/>
<text:list-style style:name="L1"><text:list-level-style-number text:level="1"/><text:list-level-style-bullet text:level="2"/></text:list-style>
<text:list-style style:name="L2"><text:list-level-style-bullet text:level="1"/></text:list-style>`

func testDocument(t *testing.T, body string) *odt.Document {
	t.Helper()
	content := `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content
  xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"
  xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0"
  xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0"
  xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"
  xmlns:xlink="http://www.w3.org/1999/xlink">
<office:automatic-styles>` + testStyles + `</office:automatic-styles>
<office:body><office:text>` + body + `</office:text></office:body>
</office:document-content>`
	doc, err := odt.Parse([]byte(content), nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func testOptions() Options {
	return Options{
		TableMode:       config.TableModeGrid,
		FootnotesRubric: "Footnotes",
		NotePrefix:      "Note",
		Images:          map[string]string{},
	}
}

// convertBody runs both passes over the body and returns produced pages.
func convertBody(t *testing.T, body string, opts Options, splitter *text.Splitter) ([]Page, error) {
	t.Helper()
	log := zaptest.NewLogger(t)
	doc := testDocument(t, body)
	root, err := doc.Root("")
	if err != nil {
		t.Fatalf("Root() error = %v", err)
	}
	res := NewStyleResolver(doc, []string{"Note"})
	idx, err := BuildIndex(root, res, opts, log)
	if err != nil {
		return nil, err
	}
	return Convert(root, idx, res, splitter, opts, log)
}

func mustConvert(t *testing.T, body string, opts Options) []Page {
	t.Helper()
	pages, err := convertBody(t, body, opts, nil)
	if err != nil {
		t.Fatalf("conversion error = %v", err)
	}
	return pages
}

func firstPage(t *testing.T, body string, opts Options) string {
	t.Helper()
	pages := mustConvert(t, body, opts)
	if len(pages) == 0 {
		t.Fatal("no pages produced")
	}
	return pages[0].Text
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output does not contain %q\n--- output ---\n%s", want, got)
	}
}

func TestConvert_EndToEnd(t *testing.T) {
	body := `<text:h text:outline-level="1">Introduction</text:h>` +
		`<text:p text:style-name="Standard">Hello. World.</text:p>` +
		`<table:table table:name="T"><table:table-column table:number-columns-repeated="2"/>` +
		`<table:table-row><table:table-cell><text:p>A</text:p></table:table-cell><table:table-cell><text:p>B</text:p></table:table-cell></table:table-row>` +
		`</table:table>`

	splitter := text.NewSplitter(language.English, zaptest.NewLogger(t))
	pages, err := convertBody(t, body, testOptions(), splitter)
	if err != nil {
		t.Fatalf("conversion error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	p := pages[0]
	if p.FileName != "introduction.rst" || p.Title != "Introduction" {
		t.Errorf("page = %q (%q), want introduction.rst (Introduction)", p.FileName, p.Title)
	}

	want := `.. _introduction-introduction:

############
Introduction
############

Hello.
World.

+---+---+
| A | B |
+---+---+
`
	if p.Text != want {
		t.Errorf("page text mismatch\n--- got ---\n%s\n--- want ---\n%s", p.Text, want)
	}
}

func TestConvert_Pages(t *testing.T) {
	body := `<text:p>dropped, no page yet</text:p>` +
		`<text:h text:outline-level="1">First</text:h><text:p>one</text:p>` +
		`<text:h text:outline-level="2">Sub</text:h><text:p>two</text:p>` +
		`<text:h text:outline-level="3">Deep</text:h>` +
		`<text:h text:outline-level="1">Second</text:h><text:p>three</text:p>`

	pages := mustConvert(t, body, testOptions())
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	if pages[0].FileName != "first.rst" || pages[1].FileName != "second.rst" {
		t.Errorf("file names = %q, %q", pages[0].FileName, pages[1].FileName)
	}
	if strings.Contains(pages[0].Text, "dropped") {
		t.Error("content before first heading must be dropped")
	}
	assertContains(t, pages[0].Text, "one\n\n.. _first-sub:\n\n***\nSub\n***\n\ntwo\n")
	assertContains(t, pages[0].Text, "\n\n.. _first-deep:\n\nDeep\n====\n")
	assertContains(t, pages[1].Text, "Second\n######\n\nthree\n")
}

func TestConvert_InlineStyles(t *testing.T) {
	tests := []struct {
		name string
		para string
		want string
	}{
		{"bold", `Say <text:span text:style-name="Bold">loud</text:span> now.`, "Say **loud** now."},
		{"italic keeps spaces outside", `a<text:span text:style-name="Ital"> soft </text:span>b`, "a *soft* b"},
		{"mono", `and <text:span text:style-name="Code">x()</text:span>.`, "and ``x()``."},
		{"mono fused", `call<text:span text:style-name="Code">f</text:span>now`, "call ``f`` now"},
		{"mono before link", `x<text:span text:style-name="Code">foo</text:span><text:a xlink:href="http://e.com">lab</text:a> y`, "x ``foo``\\ `lab <http://e.com>`__ y"},
		{"italic fused", `foo<text:span text:style-name="Ital">bar</text:span>baz`, "foo\\ *bar*\\ baz"},
		{"bold fused with link", `<text:span text:style-name="Bold">see</text:span><text:a xlink:href="http://e.com">site</text:a>`, "**see**\\ `site <http://e.com>`__"},
		{"nested spans", `<text:span text:style-name="Bold">a <text:span text:style-name="Ital">b</text:span></text:span>`, "**a b**"},
		{"unknown style", `<text:span text:style-name="Nope">plain</text:span>`, "plain"},
		{"spaces", `a<text:s text:c="3"/>b<text:tab/>c<text:line-break/>d`, "a   b c d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := firstPage(t, `<text:h text:outline-level="1">T</text:h><text:p>`+tt.para+`</text:p>`, testOptions())
			assertContains(t, out, "\n"+tt.want+"\n")
		})
	}
}

func TestConvert_StyledParagraph(t *testing.T) {
	out := firstPage(t, `<text:h text:outline-level="1">T</text:h>`+
		`<text:p text:style-name="BoldPara">Whole <text:span text:style-name="Ital">thing</text:span></text:p><text:p>next</text:p>`,
		testOptions())
	assertContains(t, out, "\n**Whole thing**\n\nnext\n")
}

func TestConvert_StyledParagraphChildren(t *testing.T) {
	tests := []struct {
		name string
		para string
		want string
	}{
		{"link", `see <text:a xlink:href="http://e.com">site</text:a> now`, "**see** `site <http://e.com>`__ **now**"},
		{"link at the end", `go to <text:a xlink:href="http://e.com">site</text:a>.`, "**go to** `site <http://e.com>`__."},
		{"reference", `back to <text:bookmark-ref text:ref-name="top">T</text:bookmark-ref>`, "**back to** :ref:`t-t`"},
		{
			"footnote",
			`bold text<text:note text:id="n1" text:note-class="footnote"><text:note-citation>1</text:note-citation>` +
				`<text:note-body><text:p>The note.</text:p></text:note-body></text:note>`,
			"**bold text**\\ [#f1]_",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := firstPage(t, `<text:h text:outline-level="1">T<text:bookmark text:name="top"/></text:h>`+
				`<text:p text:style-name="BoldPara">`+tt.para+`</text:p>`, testOptions())
			assertContains(t, out, "\n"+tt.want+"\n")
			if strings.ContainsAny(out, "\uE000\uE001\uE002\uE003") {
				t.Errorf("markers leaked into output:\n%s", out)
			}
		})
	}
}

func TestConvert_Links(t *testing.T) {
	body := `<text:h text:outline-level="1">Intro<text:bookmark text:name="top"/></text:h>` +
		`<text:p><text:bookmark text:name="here"/>Para</text:p>` +
		`<text:p>Go to <text:a xlink:href="http://x.org">http://x.org</text:a> or <text:a xlink:href="http://x.org/a">the site</text:a>.</text:p>` +
		`<text:p>See <text:bookmark-ref text:ref-name="top">Intro</text:bookmark-ref> and <text:bookmark-ref text:ref-name="here">there</text:bookmark-ref>.</text:p>` +
		`<text:p><text:a xlink:href="#here">back</text:a> <text:a xlink:href="#missing">lost</text:a></text:p>`

	out := firstPage(t, body, testOptions())
	assertContains(t, out, "\n.. _intro-here:\n\nPara\n")
	assertContains(t, out, "Go to http://x.org or `the site <http://x.org/a>`__.")
	assertContains(t, out, "See :ref:`intro-intro` and :ref:`there <intro-here>`.")
	assertContains(t, out, ":ref:`back <intro-here>` lost")
	if strings.Count(out, ".. _intro-here:") != 1 {
		t.Error("anchor must be written once")
	}
}

func TestConvert_MissingReference(t *testing.T) {
	body := `<text:h text:outline-level="1">T</text:h>` +
		`<text:p>See <text:bookmark-ref text:ref-name="nowhere">there</text:bookmark-ref></text:p>`
	_, err := convertBody(t, body, testOptions(), nil)
	if !errors.Is(err, ErrMissingReference) {
		t.Fatalf("error = %v, want ErrMissingReference", err)
	}
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("error is not StructureError: %T", err)
	}
	if len(se.Stack) < 2 || !strings.HasPrefix(se.Stack[0], "text:bookmark-ref") || !strings.HasPrefix(se.Stack[1], "text:p") {
		t.Errorf("stack must start with innermost frame, got %q", se.Stack)
	}
	if !strings.Contains(se.Node, `@text:ref-name = nowhere`) {
		t.Errorf("node dump = %q", se.Node)
	}
}

func TestConvert_ForwardReference(t *testing.T) {
	body := `<text:h text:outline-level="1">T</text:h>` +
		`<text:p>See <text:sequence-ref text:ref-name="fig1">Figure 1</text:sequence-ref></text:p>` +
		`<text:p><text:sequence text:ref-name="fig1" text:name="Figure">1</text:sequence>. Picture</text:p>`
	out := firstPage(t, body, testOptions())
	assertContains(t, out, "See :ref:`Figure 1 <t-fig1>`")
	assertContains(t, out, ".. _t-fig1:\n\n1. Picture")
}

func TestConvert_UnknownNode(t *testing.T) {
	_, err := convertBody(t, `<text:h text:outline-level="1">T</text:h><text:p>x<text:unheard-of/></text:p>`, testOptions(), nil)
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("error = %v, want ErrUnknownNode", err)
	}
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("error is not StructureError: %T", err)
	}
	if !strings.HasPrefix(se.Stack[0], "text:unheard-of") {
		t.Errorf("innermost frame = %q", se.Stack[0])
	}
	dump := se.Dump()
	for _, want := range []string{"ERROR:", "Offending node:", "Traversal stack (innermost first):", "text:unheard-of [unknown]"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump does not contain %q:\n%s", want, dump)
		}
	}
}

func TestConvert_StrictStyles(t *testing.T) {
	opts := testOptions()
	opts.StrictStyles = true

	_, err := convertBody(t, `<text:h text:outline-level="1">T</text:h><text:p>x</text:p>`, opts, nil)
	if !errors.Is(err, ErrMissingStyle) {
		t.Fatalf("error = %v, want ErrMissingStyle", err)
	}
	if _, err := convertBody(t, `<text:h text:outline-level="1">T</text:h><text:p text:style-name="Footnote">x</text:p><text:p text:style-name="Standard">y</text:p>`, opts, nil); err != nil {
		t.Fatalf("error = %v, want none", err)
	}
}

func TestConvert_Footnotes(t *testing.T) {
	note := func(id, text string) string {
		return `<text:note text:id="` + id + `" text:note-class="footnote"><text:note-citation>1</text:note-citation>` +
			`<text:note-body><text:p>` + text + `</text:p></text:note-body></text:note>`
	}
	body := `<text:h text:outline-level="1">A</text:h><text:p>Text` + note("n1", "The note.") + ` end.</text:p>` +
		`<text:h text:outline-level="1">B</text:h><text:p>More` + note("n2", "Second.") + `</text:p>`

	pages := mustConvert(t, body, testOptions())
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	assertContains(t, pages[0].Text, "Text\\ [#f1]_ end.\n\n.. rubric:: Footnotes\n\n.. [#f1] The note.\n")
	if strings.Contains(pages[0].Text, "Second.") {
		t.Error("footnote leaked into previous page")
	}
	assertContains(t, pages[1].Text, "More\\ [#f1]_\n\n.. rubric:: Footnotes\n\n.. [#f1] Second.\n")

	opts := testOptions()
	opts.FootnotesRubric = ""
	out := firstPage(t, body, opts)
	if strings.Contains(out, "rubric") {
		t.Error("empty rubric must not be written")
	}
}

func TestConvert_Notes(t *testing.T) {
	splitter := text.NewSplitter(language.English, zaptest.NewLogger(t))
	tests := []struct {
		name string
		para string
		want string
	}{
		{"prefix stripped", `<text:p text:style-name="Note">Note: Be careful. Really.</text:p>`, ".. note:: Be careful.\n   Really.\n"},
		{"inherited note style", `<text:p text:style-name="P1">Mind the gap.</text:p>`, ".. note:: Mind the gap.\n"},
		{"styled prefix", `<text:p text:style-name="Note"><text:span text:style-name="Bold">Note:</text:span> Look.</text:p>`, ".. note:: Look.\n"},
		{"word starting with prefix", `<text:p text:style-name="Note">Notepad is fine.</text:p>`, ".. note:: Notepad is fine.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := convertBody(t, `<text:h text:outline-level="1">T</text:h>`+tt.para, testOptions(), splitter)
			if err != nil {
				t.Fatalf("conversion error = %v", err)
			}
			assertContains(t, pages[0].Text, tt.want)
		})
	}

	t.Run("no admonition in table", func(t *testing.T) {
		out := firstPage(t, `<text:h text:outline-level="1">T</text:h><table:table><table:table-row><table:table-cell>`+
			`<text:p text:style-name="Note">Note: cell</text:p></table:table-cell></table:table-row></table:table>`, testOptions())
		if strings.Contains(out, ".. note::") {
			t.Errorf("admonition in table:\n%s", out)
		}
		assertContains(t, out, "| Note: cell |")
	})
}

func TestConvert_Images(t *testing.T) {
	opts := testOptions()
	opts.Images["Pictures/a.png"] = "images/a.png"

	body := `<text:h text:outline-level="1">T<draw:frame><draw:image xlink:href="Pictures/a.png"/></draw:frame></text:h>` +
		`<text:p>Look<draw:frame><draw:image xlink:href="./Pictures/a.png"/></draw:frame> here</text:p>` +
		`<draw:frame><draw:image xlink:href="Pictures/b.wmf"/></draw:frame>`
	out := firstPage(t, body, opts)
	assertContains(t, out, "T\n#\n\n.. image:: images/a.png\n\nLook here\n\n.. image:: images/a.png\n")
	if strings.Contains(out, "b.wmf") {
		t.Error("image of unknown type must be skipped")
	}
}

func TestConvert_CodeBlock(t *testing.T) {
	body := `<text:h text:outline-level="1">T</text:h><text:p>Example</text:p>` +
		`<text:p text:style-name="CodePara">if x {</text:p>` +
		`<text:p text:style-name="CodePara"><text:s text:c="4"/>return<text:tab/><text:span text:style-name="Code">1</text:span></text:p>` +
		`<text:p text:style-name="CodePara">}</text:p>` +
		`<text:p>After</text:p>`
	out := firstPage(t, body, testOptions())
	assertContains(t, out, "Example\n\n::\n\n   if x {\n       return    1\n   }\n\nAfter\n")
}

func TestConvert_Lists(t *testing.T) {
	body := `<text:h text:outline-level="1">T</text:h>` +
		`<text:list text:style-name="L1">` +
		`<text:list-item><text:p>one</text:p></text:list-item>` +
		`<text:list-item><text:p>two</text:p><text:list><text:list-item><text:p>sub</text:p></text:list-item></text:list></text:list-item>` +
		`</text:list>` +
		`<text:list text:style-name="L2"><text:list-header><text:p>Header</text:p></text:list-header><text:list-item><text:p>item</text:p></text:list-item></text:list>`
	out := firstPage(t, body, testOptions())
	assertContains(t, out, "\n#. one\n\n#. two\n\n   * sub\n")
	assertContains(t, out, "\nHeader\n\n* item\n")
}

func TestConvert_FlattenedLists(t *testing.T) {
	body := `<text:list text:style-name="L1"><text:list-item><text:h text:outline-level="1">Inside</text:h><text:p>body</text:p></text:list-item></text:list>` +
		`<text:list><text:list-header><text:p>lonely</text:p></text:list-header></text:list>`
	pages := mustConvert(t, body, testOptions())
	if len(pages) != 1 || pages[0].FileName != "inside.rst" {
		t.Fatalf("pages = %+v", pages)
	}
	assertContains(t, pages[0].Text, "Inside\n######\n\nbody\n\nlonely\n")
	if strings.Contains(pages[0].Text, "#.") || strings.Contains(pages[0].Text, "* ") {
		t.Errorf("flattened list has bullets:\n%s", pages[0].Text)
	}
}

func TestConvert_ListUnexpectedChild(t *testing.T) {
	_, err := convertBody(t, `<text:h text:outline-level="1">T</text:h><text:list><text:p>stray</text:p></text:list>`, testOptions(), nil)
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("error = %v, want ErrUnknownNode", err)
	}
}

func TestConvert_MissingSection(t *testing.T) {
	log := zaptest.NewLogger(t)
	opts := testOptions()

	indexed := testDocument(t, `<text:h text:outline-level="1">A</text:h>`)
	root, _ := indexed.Root("")
	res := NewStyleResolver(indexed, nil)
	idx, err := BuildIndex(root, res, opts, log)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	other := testDocument(t, `<text:h text:outline-level="1">B</text:h>`)
	root, _ = other.Root("")
	_, err = Convert(root, idx, NewStyleResolver(other, nil), nil, opts, log)
	if !errors.Is(err, ErrMissingSection) {
		t.Fatalf("error = %v, want ErrMissingSection", err)
	}
}
