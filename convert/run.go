package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"odt2rst/config"
	"odt2rst/content"
	"odt2rst/odt"
	"odt2rst/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		src = env.Cfg.Document.Input
	}
	if len(src) == 0 {
		return errors.New("no input document has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = env.Cfg.Document.OutputDir
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the conversion independently of CLI framework: load the
// document, index it, convert it and write pages, images and dumps.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)
	cfg := &env.Cfg.Document

	c, err := content.Prepare(ctx, src, log)
	if err != nil {
		return fmt.Errorf("unable to load document (%s): %w", src, err)
	}

	dumps := &dumper{dir: cfg.DumpDir, rpt: env.Rpt, log: log}
	if data, err := c.Doc.XML(); err == nil {
		dumps.save("main.xml", data)
	} else {
		log.Warn("Unable to prepare XML dump", zap.Error(err))
	}
	dumps.save("nodes", []byte(c.String()))

	res := NewStyleResolver(c.Doc, cfg.Notes.Styles)
	// whatever was resolved is useful even when conversion fails
	defer func() {
		dumps.save("styles_options", []byte(res.Options()))
	}()

	opts, pictures := newOptions(cfg, c, log)

	idx, err := BuildIndex(c.Root, res, opts, log)
	if err != nil {
		return reportStructure(env, err, log)
	}
	dumps.save("index", []byte(idx.String()))

	if err := ctx.Err(); err != nil {
		return err
	}

	pages, err := Convert(c.Root, idx, res, c.Splitter, opts, log)
	if err != nil {
		return reportStructure(env, err, log)
	}
	if len(pages) == 0 {
		log.Warn("Document has no top level headings, nothing to write")
	}

	if err := SavePages(dst, cfg.IndexTitle, pages, env.Overwrite); err != nil {
		return err
	}
	if err := saveImages(filepath.Join(dst, cfg.Images.Dir), pictures); err != nil {
		return err
	}
	env.Rpt.Store("output", dst)

	log.Info("Pages written", zap.Int("pages", len(pages)), zap.Int("images", len(pictures)), zap.String("index", filepath.Join(dst, IndexFile)))
	return nil
}

// newOptions prepares conversion options. Only pictures referenced from the
// conversion root and of the allowed types are written and referenced from
// the pages, in document order.
func newOptions(cfg *config.DocumentConfig, c *content.Content, log *zap.Logger) (Options, []*content.Picture) {
	opts := Options{
		TableMode:            cfg.TableMode,
		PrefaceHeadingStyles: cfg.PrefaceHeadingStyles,
		StrictStyles:         cfg.StrictStyles,
		FootnotesRubric:      cfg.FootnotesRubric,
		NotePrefix:           cfg.Notes.Prefix,
		Images:               make(map[string]string),
	}

	var pictures []*content.Picture
	seen := make(map[string]bool)
	c.Root.Walk(func(n *odt.Node) bool {
		if n.Kind != odt.KindImage {
			return true
		}
		p, ok := c.Picture(n.Href)
		if !ok {
			log.Warn("Image is not embedded into the document, skipping", zap.String("href", n.Href))
			return true
		}
		if seen[p.Path] {
			return true
		}
		seen[p.Path] = true
		allowed := slices.ContainsFunc(cfg.Images.Types, func(t string) bool {
			return strings.EqualFold(strings.TrimPrefix(t, "."), p.Ext)
		})
		if !allowed {
			log.Debug("Picture type is not allowed, skipping", zap.String("picture", p.Path), zap.String("mime", p.MIME))
			return true
		}
		opts.Images[p.Path] = path.Join(filepath.ToSlash(cfg.Images.Dir), p.Name)
		pictures = append(pictures, p)
		return true
	})
	return opts, pictures
}

func saveImages(dir string, pictures []*content.Picture) error {
	if len(pictures) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create images directory: %w", err)
	}
	var err error
	for _, p := range pictures {
		if e := os.WriteFile(filepath.Join(dir, p.Name), p.Data, 0644); e != nil {
			err = multierr.Append(err, fmt.Errorf("unable to write image %q: %w", p.Name, e))
		}
	}
	return err
}

// reportStructure logs structural errors with their diagnostic context.
func reportStructure(env *state.LocalEnv, err error, log *zap.Logger) error {
	var se *StructureError
	if errors.As(err, &se) {
		log.Error("Unable to convert document structure", se.Fields()...)
		env.Rpt.StoreData("structure_error", []byte(se.Dump()))
	}
	return fmt.Errorf("unable to convert document: %w", err)
}

// dumper writes diagnostic dumps, nothing is written when directory is not
// configured.
type dumper struct {
	dir string
	rpt *config.Report
	log *zap.Logger
}

func (d *dumper) save(name string, data []byte) {
	if d.dir == "" {
		return
	}
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		d.log.Warn("Unable to create dump directory", zap.String("dir", d.dir), zap.Error(err))
		return
	}
	fname := filepath.Join(d.dir, name)
	if err := os.WriteFile(fname, data, 0644); err != nil {
		d.log.Warn("Unable to write dump", zap.String("file", fname), zap.Error(err))
		return
	}
	d.rpt.Store("dump/"+name, fname)
}
