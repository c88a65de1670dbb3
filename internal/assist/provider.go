// Package assist asks a language model to read a result page's text when the
// heuristics could not find the aggregate score. It only ever reads page text;
// it is never shown the challenge image.
package assist

import (
	"context"
	"fmt"

	"github.com/v0xg/resultfetch/internal/extract"
	"github.com/v0xg/resultfetch/internal/result"
)

// Fields are the free-text values a model may recover
type Fields struct {
	Name           string `json:"name"`
	AggregateScore string `json:"aggregateScore"`
	StatusSummary  string `json:"statusSummary"`
}

// Provider reads body text and returns whatever fields it can find
type Provider interface {
	Fill(ctx context.Context, bodyText string) (Fields, error)
}

// NewProvider creates a provider by name
func NewProvider(name, model string) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(model)
	case "openai", "gpt":
		return NewOpenAIProvider(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}

// Apply copies fields into rec where rec has no value yet. A score that does
// not fit the 0.00-5.99 grammar is ignored. It returns the keys it filled.
func Apply(rec *result.Record, f Fields) []string {
	var filled []string
	set := func(key, v string) {
		if v == "" || rec.Has(key) {
			return
		}
		rec.Set(key, v)
		filled = append(filled, key)
	}

	set(result.KeyName, trim(f.Name, 60))
	if extract.ValidScore(f.AggregateScore) {
		set(result.KeyAggregateScore, f.AggregateScore)
	}
	set(result.KeyStatusSummary, trim(f.StatusSummary, 30))
	return filled
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) > max {
		r = r[:max]
	}
	return string(r)
}
