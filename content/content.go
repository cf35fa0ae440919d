// Package content loads OpenDocument Text file and prepares everything
// converter needs: parsed document tree, conversion root, embedded pictures
// and sentence splitter.
package content

import (
	"archive/zip"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"odt2rst/archive"
	"odt2rst/content/text"
	"odt2rst/odt"
	"odt2rst/state"
)

// MimeODT is the only package type we accept.
const MimeODT = "application/vnd.oasis.opendocument.text"

const picturesDir = "Pictures/"

// Picture is an image embedded into the package.
type Picture struct {
	Path string // entry name in the package, "Pictures/..."
	Name string // base name
	Ext  string // sniffed file extension, empty when unrecognized
	MIME string // sniffed mime type
	Data []byte
}

// Content holds loaded document.
type Content struct {
	SrcName  string
	Doc      *odt.Document
	Root     *odt.Node
	Pictures map[string]*Picture // by entry name
	Splitter *text.Splitter
}

// Prepare reads the package, parses content.xml and styles.xml, locates
// conversion root and sniffs embedded pictures.
func Prepare(ctx context.Context, srcName string, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	var (
		mimetype   string
		contentXML []byte
		stylesXML  []byte
		pictures   = make(map[string]*Picture)
	)
	err := archive.Walk(srcName, "", func(_ string, f *zip.File) error {
		switch {
		case f.Name == "mimetype":
			data, err := archive.ReadEntry(f)
			if err != nil {
				return err
			}
			mimetype = strings.TrimSpace(string(data))
		case f.Name == "content.xml":
			data, err := archive.ReadEntry(f)
			if err != nil {
				return err
			}
			contentXML = data
		case f.Name == "styles.xml":
			data, err := archive.ReadEntry(f)
			if err != nil {
				return err
			}
			stylesXML = data
		case strings.HasPrefix(f.Name, picturesDir):
			data, err := archive.ReadEntry(f)
			if err != nil {
				return err
			}
			pictures[f.Name] = sniffPicture(f.Name, data, log)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read document package: %w", err)
	}

	switch mimetype {
	case MimeODT:
	case "":
		log.Warn("Document package has no mimetype entry", zap.String("file", srcName))
	default:
		return nil, fmt.Errorf("unsupported document type %q", mimetype)
	}
	if contentXML == nil {
		return nil, fmt.Errorf("document package has no content.xml")
	}

	doc, err := odt.Parse(contentXML, stylesXML, log)
	if err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}

	root, err := doc.Root(env.Cfg.Document.Section)
	if err != nil {
		return nil, err
	}

	lang, err := language.Parse(env.Cfg.Document.Language)
	if err != nil {
		log.Warn("Bad document language, using English", zap.String("language", env.Cfg.Document.Language), zap.Error(err))
		lang = language.English
	}

	c := &Content{
		SrcName:  srcName,
		Doc:      doc,
		Root:     root,
		Pictures: pictures,
		Splitter: text.NewSplitter(lang, log),
	}
	log.Debug("Document loaded",
		zap.String("root", root.Label()),
		zap.Int("pictures", len(pictures)),
		zap.Stringer("language", lang))
	return c, nil
}

func sniffPicture(name string, data []byte, log *zap.Logger) *Picture {
	p := &Picture{Path: name, Name: path.Base(name), Data: data}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		log.Debug("Unable to detect picture type", zap.String("name", name), zap.Error(err))
		return p
	}
	p.Ext, p.MIME = kind.Extension, kind.MIME.Value
	return p
}

// Picture returns embedded picture referenced by image href.
func (c *Content) Picture(href string) (*Picture, bool) {
	p, ok := c.Pictures[strings.TrimPrefix(href, "./")]
	return p, ok
}
