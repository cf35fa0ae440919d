// Package ghlink expands GitHub link roles (:ghfile:, :ghissue:, :ghpr:) in
// generated pages into explicit external links so pages build without
// documentation tool extensions.
package ghlink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"odt2rst/state"
)

var roleRe = regexp.MustCompile(":gh(file|issue|pr):`([^`]+)`")

var labelEscaper = strings.NewReplacer("<", `\<`, "`", "\\`")

// Linker knows where repository lives.
type Linker struct {
	base      string
	repo      string
	commitish string
}

func New(base, repo, commitish string) *Linker {
	return &Linker{
		base:      strings.TrimRight(base, "/"),
		repo:      strings.Trim(repo, "/"),
		commitish: commitish,
	}
}

// Link returns target and label for the role, ok is false for unknown roles.
// File label is the plain path: reStructuredText has no literal text inside
// hyperlink references, so monospace rendering of file links is left to the
// site theme.
func (l *Linker) Link(role, text string) (url, label string, ok bool) {
	text = strings.TrimSpace(text)
	switch role {
	case "file":
		return fmt.Sprintf("%s/%s/blob/%s/%s", l.base, l.repo, l.commitish, strings.TrimLeft(text, "/")), text, true
	case "issue":
		return fmt.Sprintf("%s/%s/issues/%s", l.base, l.repo, text), fmt.Sprintf("Issue #%s on GitHub", text), true
	case "pr":
		return fmt.Sprintf("%s/%s/pull/%s", l.base, l.repo, text), fmt.Sprintf("Pull Request #%s on GitHub", text), true
	}
	return "", "", false
}

// Expand replaces every role in text with anonymous hyperlink reference.
// Returns new text and number of replaced roles.
func (l *Linker) Expand(text string) (string, int) {
	count := 0
	out := roleRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := roleRe.FindStringSubmatch(m)
		url, label, ok := l.Link(sub[1], sub[2])
		if !ok {
			return m
		}
		count++
		return fmt.Sprintf("`%s <%s>`__", labelEscaper.Replace(label), url)
	})
	return out, count
}

// Rewrite expands roles in the file in place. File is not touched when
// there is nothing to expand.
func (l *Linker) Rewrite(name string) (int, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return 0, err
	}
	out, count := l.Expand(string(data))
	if count == 0 {
		return 0, nil
	}
	if err := os.WriteFile(name, []byte(out), fi.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("unable to rewrite %s: %w", name, err)
	}
	return count, nil
}

// Run is the "roles" command.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("roles")

	gh := env.Cfg.Github
	if gh.Repo == "" {
		return errors.New("github repository is not configured")
	}
	if cmd.Args().Len() == 0 {
		return errors.New("no pages have been specified")
	}

	l := New(gh.URLBase, gh.Repo, gh.Commitish)
	for _, name := range cmd.Args().Slice() {
		if err := ctx.Err(); err != nil {
			return err
		}
		count, err := l.Rewrite(name)
		if err != nil {
			return err
		}
		log.Debug("Roles expanded", zap.String("file", name), zap.Int("count", count))
	}
	log.Info("Roles expanded", zap.Int("files", cmd.Args().Len()), zap.String("repo", gh.Repo), zap.String("commitish", gh.Commitish))
	return nil
}
