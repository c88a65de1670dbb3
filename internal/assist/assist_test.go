package assist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/resultfetch/internal/result"
)

func TestParseFieldsJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Fields
	}{
		{
			name:     "bare object",
			response: `{"name":"Rahim Uddin","aggregateScore":"4.67","statusSummary":"PASSED"}`,
			want:     Fields{Name: "Rahim Uddin", AggregateScore: "4.67", StatusSummary: "PASSED"},
		},
		{
			name:     "wrapped in prose",
			response: "Here you go:\n```json\n{\"name\": \" Fatema {B} \", \"aggregateScore\": \"\", \"statusSummary\": \"FAILED\"}\n```",
			want:     Fields{Name: "Fatema {B}", StatusSummary: "FAILED"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFieldsJSON(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFieldsJSON_Errors(t *testing.T) {
	_, err := parseFieldsJSON("no json here")
	assert.Error(t, err)
	_, err = parseFieldsJSON(`{"name": "unterminated"`)
	assert.Error(t, err)
}

func TestApply_FillsOnlyMissingValidFields(t *testing.T) {
	rec := result.New()
	rec.Set(result.KeyName, "RAHIM UDDIN")

	filled := Apply(&rec, Fields{Name: "Someone Else", AggregateScore: "4.83", StatusSummary: "PASSED"})
	assert.Equal(t, []string{result.KeyAggregateScore, result.KeyStatusSummary}, filled)

	name, _ := rec.Get(result.KeyName)
	assert.Equal(t, "RAHIM UDDIN", name)
	score, _ := rec.Get(result.KeyAggregateScore)
	assert.Equal(t, "4.83", score)
}

func TestApply_RejectsOutOfRangeScore(t *testing.T) {
	rec := result.New()
	filled := Apply(&rec, Fields{AggregateScore: "7.25"})
	assert.Empty(t, filled)
	assert.False(t, rec.Has(result.KeyAggregateScore))
}

func TestBuildUserPrompt_Truncates(t *testing.T) {
	p := buildUserPrompt(strings.Repeat("x", maxBodyChars+500))
	assert.Equal(t, maxBodyChars, strings.Count(p, "x"))
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider("gemini", "")
	assert.Error(t, err)
}

func TestOpenAIProvider_Fill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Contains(t, req.Messages[1].Content, "GPA 4.50")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: `{"name":"Nusrat Jahan","aggregateScore":"4.50","statusSummary":"PASSED"}`,
				},
			}},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	p := newOpenAIProvider(cfg, "")

	got, err := p.Fill(context.Background(), "Name Nusrat Jahan GPA 4.50")
	require.NoError(t, err)
	assert.Equal(t, Fields{Name: "Nusrat Jahan", AggregateScore: "4.50", StatusSummary: "PASSED"}, got)
}
