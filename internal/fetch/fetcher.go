// Package fetch runs the per-roll pipeline against a results portal: load the
// form, find its fields, have a human read the security key, submit, and parse
// whatever comes back. Rolls are processed one at a time.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/v0xg/resultfetch/internal/assist"
	"github.com/v0xg/resultfetch/internal/challenge"
	"github.com/v0xg/resultfetch/internal/extract"
	"github.com/v0xg/resultfetch/internal/locator"
	"github.com/v0xg/resultfetch/internal/page"
	"github.com/v0xg/resultfetch/internal/portal"
	"github.com/v0xg/resultfetch/internal/result"
	"github.com/v0xg/resultfetch/internal/roster"
	"go.uber.org/zap"
)

// ErrSubmitFailed marks a record whose form could not be submitted
var ErrSubmitFailed = errors.New("submission failed")

// Prompter blocks until a human has read the challenge image at imagePath
type Prompter interface {
	Prompt(ctx context.Context, imagePath, identifier string) (string, error)
}

// Options configures a Fetcher
type Options struct {
	URL         string
	LoadDelay   time.Duration
	SubmitDelay time.Duration
	CaptureDir  string
	// FailThreshold is the page length below which a record without a
	// score is treated as a "not found" page
	FailThreshold int
}

// Fetcher owns the page for the whole batch
type Fetcher struct {
	nav       page.Navigator
	prompter  Prompter
	opts      Options
	logger    *zap.Logger
	locator   *locator.Locator
	capturer  *challenge.Capturer
	extractor *extract.Extractor
	assist    assist.Provider
	pacer     *portal.Pacer
	progress  io.Writer
	sleep     func(ctx context.Context, d time.Duration) error

	state State
}

// Option customises a Fetcher
type Option func(*Fetcher)

// WithLocator replaces the default locator table
func WithLocator(l *locator.Locator) Option { return func(f *Fetcher) { f.locator = l } }

// WithCapturer replaces the default challenge capturer
func WithCapturer(c *challenge.Capturer) Option { return func(f *Fetcher) { f.capturer = c } }

// WithAssist enables the LLM fallback for records without a score
func WithAssist(p assist.Provider) Option { return func(f *Fetcher) { f.assist = p } }

// WithPacer spaces consecutive fetches
func WithPacer(p *portal.Pacer) Option { return func(f *Fetcher) { f.pacer = p } }

// WithProgress writes one progress line per roll to w
func WithProgress(w io.Writer) Option { return func(f *Fetcher) { f.progress = w } }

// New creates a Fetcher
func New(nav page.Navigator, prompter Prompter, opts Options, logger *zap.Logger, options ...Option) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CaptureDir == "" {
		opts.CaptureDir = "."
	}
	f := &Fetcher{
		nav:       nav,
		prompter:  prompter,
		opts:      opts,
		logger:    logger,
		locator:   locator.New(locator.DefaultTable(), logger),
		capturer:  challenge.NewCapturer(1, logger),
		extractor: extract.New(logger),
		progress:  io.Discard,
		sleep:     sleep,
	}
	for _, o := range options {
		o(f)
	}
	return f
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (f *Fetcher) enter(s State, id string) {
	f.state = s
	f.logger.Debug("state", zap.String("roll", id), zap.Stringer("state", s))
}

// Fetch runs the pipeline for one roll. Locator misses and interaction
// failures are logged and skipped; an error is returned only when the page
// cannot be loaded or the operator's answer cannot be read.
func (f *Fetcher) Fetch(ctx context.Context, entry roster.Entry) (result.Record, error) {
	id := entry.Identifier
	log := f.logger.With(zap.String("roll", id))
	f.state = StateStart

	if err := f.nav.Navigate(f.opts.URL); err != nil {
		return result.Record{}, err
	}
	if err := f.sleep(ctx, f.opts.LoadDelay); err != nil {
		return result.Record{}, err
	}
	f.enter(StatePageLoaded, id)

	fields := f.locator.Locate(f.nav)
	f.enter(StateFieldsLocated, id)

	var answer string
	if fields.Has(locator.RoleChallengeAnswer) {
		a, err := f.solveChallenge(ctx, id)
		if err != nil {
			return result.Record{}, err
		}
		answer = a
		f.enter(StateChallengeHandled, id)
	}

	f.fill(fields, locator.RoleIdentifier, id, log)
	if entry.Secondary != "" {
		f.fill(fields, locator.RoleSecondaryIdentifier, entry.Secondary, log)
	}
	if answer != "" {
		f.fill(fields, locator.RoleChallengeAnswer, answer, log)
	}
	f.enter(StateFormFilled, id)

	submitted := f.submit(fields, log)
	if submitted {
		f.enter(StateSubmitted, id)
	} else {
		log.Warn("failed to submit form, parsing current page")
	}
	if err := f.sleep(ctx, f.opts.SubmitDelay); err != nil {
		return result.Record{}, err
	}

	rec := f.extractor.Extract(f.nav)
	rec.Set(result.KeyIdentifier, id)
	f.enter(StateResultParsed, id)

	if !rec.Has(result.KeyAggregateScore) && f.assist != nil {
		f.applyAssist(ctx, &rec, log)
	}
	if !submitted {
		if rec.Has(result.KeyAggregateScore) {
			log.Debug("submission failed but the current page holds a result", zap.Error(ErrSubmitFailed))
		} else {
			rec.Set(result.KeyError, ErrSubmitFailed.Error())
		}
	}

	if LikelyFailed(rec, f.opts.FailThreshold) {
		dest := filepath.Join(f.opts.CaptureDir, fmt.Sprintf("error_page_%s.png", id))
		if err := f.nav.Screenshot(dest); err != nil {
			log.Warn("result not found, diagnostic capture failed", zap.Error(err))
		} else {
			log.Warn("result not found or parsing failed, saved page capture",
				zap.String("path", dest), zap.Int("pageLength", rec.PageLength()))
		}
	}
	return rec, nil
}

func (f *Fetcher) solveChallenge(ctx context.Context, id string) (string, error) {
	dest := filepath.Join(f.opts.CaptureDir, fmt.Sprintf("captcha_%s.png", id))
	ref := challenge.Isolate(f.nav)
	if _, err := f.capturer.Capture(f.nav, ref, dest); err != nil {
		f.logger.Warn("could not capture security image", zap.String("roll", id), zap.Error(err))
	}

	answer, err := f.prompter.Prompt(ctx, dest, id)
	if err != nil {
		return "", fmt.Errorf("security key for %s: %w", id, err)
	}
	return answer, nil
}

func (f *Fetcher) fill(fields locator.FieldRoleSet, role locator.Role, value string, log *zap.Logger) {
	el, ok := fields.Get(role)
	if !ok {
		return
	}
	if err := el.Input(value); err != nil {
		log.Warn("could not fill field", zap.String("role", string(role)), zap.Error(err))
	}
}

// submit clicks the submit control, or presses Enter in the roll field
func (f *Fetcher) submit(fields locator.FieldRoleSet, log *zap.Logger) bool {
	if el, ok := fields.Get(locator.RoleSubmit); ok {
		err := el.Click()
		if err == nil {
			return true
		}
		log.Debug("submit click failed", zap.Error(err))
	}
	if el, ok := fields.Get(locator.RoleIdentifier); ok {
		err := el.PressEnter()
		if err == nil {
			return true
		}
		log.Debug("enter key submit failed", zap.Error(err))
	}
	return false
}

func (f *Fetcher) applyAssist(ctx context.Context, rec *result.Record, log *zap.Logger) {
	text, err := f.nav.BodyText()
	if err != nil {
		log.Debug("assist skipped, no body text", zap.Error(err))
		return
	}
	fields, err := f.assist.Fill(ctx, text)
	if err != nil {
		log.Warn("assist failed", zap.Error(err))
		return
	}
	if filled := assist.Apply(rec, fields); len(filled) > 0 {
		log.Info("assist filled fields", zap.Strings("keys", filled))
	}
}

// LikelyFailed reports whether rec looks like a "not found" page: no
// aggregate score and a short page.
func LikelyFailed(rec result.Record, threshold int) bool {
	return !rec.Has(result.KeyAggregateScore) && rec.PageLength() < threshold
}
