// Package text has natural language helpers used when reflowing paragraphs.
package text

import (
	"iter"
	"strings"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Splitter breaks text into sentences. Nil Splitter is valid and returns
// text unsplit.
type Splitter struct {
	*sentences.DefaultSentenceTokenizer
}

// NewSplitter returns splitter for requested language or nil when there is
// no tokenizer model for it. Only English model is built into tokenizer
// library.
func NewSplitter(lang language.Tag, log *zap.Logger) *Splitter {
	base, confidence := lang.Base()
	if confidence == language.No {
		log.Warn("Unable to determine language base, turning off sentence splitting", zap.Stringer("tag", lang))
		return nil
	}

	en, _ := language.English.Base()
	if base != en {
		log.Warn("Unable to find suitable sentence tokenizer model, turning off sentence splitting",
			zap.Stringer("tag", lang), zap.String("language", display.English.Languages().Name(lang)))
		return nil
	}

	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		log.Warn("Unable to load sentences tokenizer data", zap.Stringer("tag", lang), zap.Error(err))
		return nil
	}
	return &Splitter{tokenizer}
}

// Sentences returns an iterator over sentences. Whitespace between sentences
// stays with the preceding sentence.
func (s *Splitter) Sentences(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == nil {
			yield(in)
			return
		}

		sentences := s.Tokenize(in)
		if len(sentences) == 0 {
			return
		}

		for i := 0; i < len(sentences)-1; i++ {
			text := sentences[i].Text

			// tokenizer attaches trailing spaces to the next sentence, move
			// them back
			nextText := sentences[i+1].Text
			for idx, sym := range nextText {
				if !unicode.IsSpace(sym) {
					text = text + nextText[0:idx]
					sentences[i+1].Text = nextText[idx:]
					break
				}
			}
			if !yield(text) {
				return
			}
		}
		yield(sentences[len(sentences)-1].Text)
	}
}

// Lines reflows text so that every sentence occupies its own line. Empty
// sentences are dropped and result has no trailing newline.
func (s *Splitter) Lines(in string) string {
	var b strings.Builder
	for sentence := range s.Sentences(in) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(sentence)
	}
	return b.String()
}
