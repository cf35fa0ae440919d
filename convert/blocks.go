package convert

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"odt2rst/config"
	"odt2rst/odt"
)

// isCode reports whether node is a paragraph which belongs to literal block.
func (c *converter) isCode(n *odt.Node) bool {
	if n.Kind != odt.KindParagraph || c.hs.isHeading(n) {
		return false
	}
	for _, fl := range []flag{flagInTable, flagInCode, flagParagraph, flagInHeading} {
		if c.sc.lookup(fl, false) {
			return false
		}
	}
	return c.res.Resolve(n).Inline == InlineMonospace
}

// codeBlock writes consecutive monospace paragraphs as literal block, one
// paragraph per line.
func (c *converter) codeBlock(paras []*odt.Node) error {
	var lines []string
	mark := len(c.images)
	for _, p := range paras {
		text, err := c.collect(func() error {
			defer c.sc.enter(p)()
			f := c.sc.top()
			f.style = c.res.Resolve(p)
			f.define(flagInCode, true)
			f.define(flagParagraph, true)
			f.define(flagIgnoreStyle, true)
			return c.convertChildren(p)
		})
		if err != nil {
			return err
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		var b strings.Builder
		b.WriteString("\n\n::\n\n")
		for _, l := range lines {
			if strings.TrimSpace(l) != "" {
				b.WriteString("   ")
				b.WriteString(l)
			}
			b.WriteByte('\n')
		}
		b.WriteString("\n")
		c.flushAnchors()
		c.out.WriteVerbatim(b.String())
	}
	c.flushImages(mark)
	return nil
}

// flattenList reports whether list is an outline in disguise: it holds
// headings, or nothing but a list header.
func (c *converter) flattenList(n *odt.Node) bool {
	if len(n.Children) == 1 && n.Children[0].Kind == odt.KindListHeader {
		return true
	}
	found := false
	n.Walk(func(d *odt.Node) bool {
		if found {
			return false
		}
		if d.Kind == odt.KindHeading || d.Attr("text:outline-level") != "" || c.hs.isHeading(d) {
			found = true
		}
		return !found
	})
	return found
}

func (c *converter) list(n *odt.Node) error {
	if c.flattenList(n) {
		for _, item := range n.Children {
			var err error
			switch item.Kind {
			case odt.KindListItem, odt.KindListHeader:
				err = c.container(item)
			default:
				err = c.convertNode(item)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}

	f := c.sc.top()
	f.define(flagInList, true)
	f.listStyle, f.listLevel = n.Style, 1
	if parent := c.sc.list(); parent != nil {
		if f.listStyle == "" {
			f.listStyle = parent.listStyle
		}
		f.listLevel = parent.listLevel + 1
	}

	bullet := "* "
	if c.res.ListStyle(f.listStyle).IsNumbered(f.listLevel) {
		bullet = "#. "
	}
	indent := strings.Repeat(" ", len(bullet))

	var items []string
	for _, item := range n.Children {
		switch item.Kind {
		case odt.KindListItem, odt.KindListHeader:
			text, err := c.collect(func() error { return c.container(item) })
			if err != nil {
				return err
			}
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			if item.Kind == odt.KindListHeader {
				items = append(items, text)
				continue
			}
			items = append(items, bullet+indentRest(text, indent))
		case odt.KindSoftPageBreak:
		default:
			return c.sc.fail(item, ErrUnknownNode, "%s is not allowed in list", item.Tag)
		}
	}
	if len(items) == 0 {
		return nil
	}
	c.flushAnchors()
	c.out.Write("\n\n", strings.Join(items, "\n\n"), "\n\n")
	return nil
}

func repeated(n *odt.Node, attr string) int {
	if v, err := strconv.Atoi(n.Attr(attr)); err == nil && v > 1 {
		return v
	}
	return 1
}

type tableData struct {
	rows     [][]string
	headers  int
	declared bool
}

func (c *converter) table(n *odt.Node) error {
	c.sc.top().define(flagInTable, true)

	var td tableData
	if err := c.tableRows(n, &td); err != nil {
		return err
	}
	if len(td.rows) == 0 || len(td.rows[0]) == 0 {
		c.log.Warn("Empty table skipped", zap.String("table", n.Attr("table:name")))
		return nil
	}
	for i, row := range td.rows {
		if len(row) != len(td.rows[0]) {
			return c.sc.fail(n, ErrMalformedTable, "row %d has %d cells, first row has %d", i+1, len(row), len(td.rows[0]))
		}
	}
	if !td.declared && len(td.rows) > 1 {
		td.headers = 1
	}

	var out string
	switch c.opts.TableMode {
	case config.TableModeList:
		out = listTable(td.rows, td.headers)
	default:
		out = gridTable(td.rows, td.headers)
	}
	c.flushAnchors()
	c.out.WriteVerbatim("\n\n" + out + "\n\n")
	return nil
}

// tableRows gathers rows of the table or row group.
func (c *converter) tableRows(n *odt.Node, td *tableData) error {
	for _, child := range n.Children {
		switch child.Kind {
		case odt.KindTableRowGroup:
			before := len(td.rows)
			err := func() error {
				defer c.sc.enter(child)()
				return c.tableRows(child, td)
			}()
			if err != nil {
				return err
			}
			if child.HeaderRows {
				td.declared = true
				td.headers += len(td.rows) - before
			}
		case odt.KindTableRow:
			row, err := c.tableRow(child)
			if err != nil {
				return err
			}
			for range repeated(child, "table:number-rows-repeated") {
				td.rows = append(td.rows, row)
			}
		case odt.KindTableColumn, odt.KindSoftPageBreak:
		default:
			return c.sc.fail(child, ErrUnknownNode, "%s is not allowed in table", child.Tag)
		}
	}
	return nil
}

func (c *converter) tableRow(n *odt.Node) ([]string, error) {
	defer c.sc.enter(n)()

	var row []string
	for _, cell := range n.Children {
		switch cell.Kind {
		case odt.KindTableCell:
			text, err := c.collect(func() error { return c.container(cell) })
			if err != nil {
				return nil, err
			}
			text = Repair(strings.TrimSpace(text))
			for range repeated(cell, "table:number-columns-repeated") {
				row = append(row, text)
			}
		case odt.KindSoftPageBreak:
		default:
			return nil, c.sc.fail(cell, ErrUnknownNode, "%s is not allowed in table row", cell.Tag)
		}
	}
	return row, nil
}

// gridTable renders table with grid lines. Cell may span several lines, row
// height is the height of its tallest cell.
func gridTable(rows [][]string, headers int) string {
	cells := make([][][]string, len(rows))
	widths := make([]int, len(rows[0]))
	for i, row := range rows {
		cells[i] = make([][]string, len(row))
		for j, cell := range row {
			cells[i][j] = strings.Split(cell, "\n")
			for _, l := range cells[i][j] {
				widths[j] = max(widths[j], runewidth.StringWidth(l)+2)
			}
			widths[j] = max(widths[j], 3)
		}
	}

	rule := func(ch string) string {
		var b strings.Builder
		b.WriteByte('+')
		for _, w := range widths {
			b.WriteString(strings.Repeat(ch, w))
			b.WriteByte('+')
		}
		return b.String()
	}
	sep, hsep := rule("-"), rule("=")

	var b strings.Builder
	b.WriteString(sep + "\n")
	for i, row := range cells {
		height := 0
		for _, cell := range row {
			height = max(height, len(cell))
		}
		for k := range height {
			b.WriteByte('|')
			for j, cell := range row {
				line := ""
				if k < len(cell) {
					line = cell[k]
				}
				b.WriteString(" " + line + strings.Repeat(" ", widths[j]-1-runewidth.StringWidth(line)))
				b.WriteByte('|')
			}
			b.WriteByte('\n')
		}
		if i == headers-1 && headers < len(rows) {
			b.WriteString(hsep + "\n")
		} else {
			b.WriteString(sep + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// listTable renders table as list-table directive.
func listTable(rows [][]string, headers int) string {
	const cont = "       "

	var b strings.Builder
	b.WriteString(".. list-table::\n")
	if headers > 0 {
		b.WriteString("   :header-rows: " + strconv.Itoa(headers) + "\n")
	}
	b.WriteString("\n")
	for _, row := range rows {
		for j, cell := range row {
			if j == 0 {
				b.WriteString("   * -")
			} else {
				b.WriteString("     -")
			}
			if cell != "" {
				b.WriteString(" " + indentRest(cell, cont))
			}
			b.WriteByte('\n')
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
