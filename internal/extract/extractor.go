// Package extract turns a results page of unknown layout into a record: free
// text patterns for the name, score and status, and table rows for subject
// grades. Every piece is optional.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/v0xg/resultfetch/internal/page"
	"github.com/v0xg/resultfetch/internal/result"
	"go.uber.org/zap"
)

// Extractor parses result pages
type Extractor struct {
	logger *zap.Logger
}

// New creates an Extractor
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract reads the page and builds a record without the identifier key. It
// never fails: a pass that cannot run contributes nothing, and the markup
// length is always recorded.
func (e *Extractor) Extract(p page.Page) result.Record {
	rec := result.New()

	markup, err := p.HTML()
	if err != nil {
		e.logger.Warn("read page markup", zap.Error(err))
	}

	if err := e.guard("text", func() error { return e.textPass(p, markup, &rec) }); err != nil {
		e.logger.Debug("text pass skipped", zap.Error(err))
	}
	if err := e.guard("table", func() error { return e.tablePass(markup, &rec) }); err != nil {
		e.logger.Debug("table pass skipped", zap.Error(err))
	}

	rec.SetPageLength(utf8.RuneCountInString(markup))
	return rec
}

// ExtractHTML runs Extract over saved markup
func (e *Extractor) ExtractHTML(markup string) result.Record {
	doc, err := page.Parse(markup)
	if err != nil {
		rec := result.New()
		rec.SetPageLength(utf8.RuneCountInString(markup))
		return rec
	}
	return e.Extract(doc)
}

func (e *Extractor) textPass(p page.Page, markup string, rec *result.Record) error {
	text, err := p.BodyText()
	if err != nil {
		// a live page that lost its body can still be read from the markup
		doc, perr := page.Parse(markup)
		if perr != nil {
			return fmt.Errorf("body text: %w", err)
		}
		if text, err = doc.BodyText(); err != nil {
			return fmt.Errorf("body text: %w", err)
		}
	}

	if v, ok := Name(text); ok {
		rec.Set(result.KeyName, v)
	}
	if v, ok := Score(text); ok {
		rec.Set(result.KeyAggregateScore, v)
	}
	if v, ok := Status(text); ok {
		rec.Set(result.KeyStatusSummary, v)
	}
	return nil
}

func (e *Extractor) tablePass(markup string, rec *result.Record) error {
	if strings.TrimSpace(markup) == "" {
		return fmt.Errorf("no markup")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("parse markup: %w", err)
	}

	// later rows with the same key overwrite earlier ones
	for _, g := range Subjects(doc.Selection) {
		if prev, ok := rec.Get(g.Key); ok && prev != g.Grade {
			e.logger.Debug("duplicate subject overwritten",
				zap.String("subject", g.Key), zap.String("was", prev), zap.String("now", g.Grade))
		}
		rec.Set(g.Key, g.Grade)
	}
	return nil
}

// guard runs one pass and turns a panic into an error so a broken pass
// cannot take the others down with it.
func (e *Extractor) guard(pass string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s pass panicked: %v", pass, r)
		}
	}()
	return fn()
}
