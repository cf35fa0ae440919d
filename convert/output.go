package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
	"go.uber.org/multierr"
)

// IndexFile is the name of the generated table of contents page.
const IndexFile = "index.rst"

// ErrOutputExists is returned when destination already has converted pages
// and overwriting was not requested.
var ErrOutputExists = errors.New("destination already has output")

// IndexPage returns page listing all pages in creation order.
func IndexPage(title string, pages []Page) string {
	rule := strings.Repeat("=", runewidth.StringWidth(title))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", rule, title, rule)
	b.WriteString(".. toctree::\n\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "   %s\n", strings.TrimSuffix(p.FileName, filepath.Ext(p.FileName)))
	}
	return b.String()
}

// SavePages writes pages and index page into dir.
func SavePages(dir, title string, pages []Page, overwrite bool) error {
	index := filepath.Join(dir, IndexFile)
	if _, err := os.Stat(index); err == nil {
		if !overwrite {
			return fmt.Errorf("%w: %s", ErrOutputExists, index)
		}
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	var err error
	for _, p := range pages {
		if e := os.WriteFile(filepath.Join(dir, p.FileName), []byte(p.Text), 0644); e != nil {
			err = multierr.Append(err, fmt.Errorf("unable to write page %q: %w", p.Title, e))
		}
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(index, []byte(IndexPage(title, pages)), 0644); err != nil {
		return fmt.Errorf("unable to write index page: %w", err)
	}
	return nil
}
