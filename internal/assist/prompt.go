package assist

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxBodyChars bounds how much page text is sent
const maxBodyChars = 6000

const systemPrompt = `You read the visible text of an examination results web page and extract three fields.

Output a single JSON object with exactly these keys:
- "name": the student's full name as printed, or "" if absent
- "aggregateScore": the overall grade point average with exactly two decimals (for example "4.67"), or "" if absent
- "statusSummary": the short pass/fail result label (for example "PASSED"), or "" if absent

Never guess. If the page says the result was not found, return empty strings.

Respond ONLY with the JSON object, no explanation or markdown.`

func buildUserPrompt(bodyText string) string {
	text := bodyText
	if r := []rune(text); len(r) > maxBodyChars {
		text = string(r[:maxBodyChars])
	}
	return "Page text:\n" + text
}

// parseFieldsJSON extracts and parses a JSON object from a response that may
// contain surrounding text
func parseFieldsJSON(response string) (Fields, error) {
	var f Fields
	if err := json.Unmarshal([]byte(response), &f); err == nil {
		return clean(f), nil
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return Fields{}, fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	end := -1
	inString := false
	for i := start; i < len(response) && end == -1; i++ {
		c := response[i]
		switch {
		case inString:
			if c == '\\' {
				i++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
	}
	if end == -1 {
		return Fields{}, fmt.Errorf("no matching closing brace found")
	}

	if err := json.Unmarshal([]byte(response[start:end]), &f); err != nil {
		return Fields{}, fmt.Errorf("failed to parse extracted JSON: %w", err)
	}
	return clean(f), nil
}

func clean(f Fields) Fields {
	return Fields{
		Name:           strings.TrimSpace(f.Name),
		AggregateScore: strings.TrimSpace(f.AggregateScore),
		StatusSummary:  strings.TrimSpace(f.StatusSummary),
	}
}
