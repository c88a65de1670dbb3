package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	namePattern   = regexp.MustCompile(`(?i)(Student's Name|Name of Student|Name)[:\s\-]*([A-Z][A-Za-z .\-]{2,59})`)
	scorePattern  = regexp.MustCompile(`(?i)(GPA|Grade Point Average)[:\s]*([0-5]\.[0-9]{2})\b`)
	statusPattern = regexp.MustCompile(`(?i)(Result|Status)[:\s]*([A-Za-z ]{3,30})`)
)

// Name finds the student's name following one of its labels
func Name(text string) (string, bool) {
	return firstGroup(namePattern, text)
}

// Score finds the grade point average. Only values 0.00 to 5.99 with exactly
// two decimals are accepted.
func Score(text string) (string, bool) {
	return firstGroup(scorePattern, text)
}

// ValidScore reports whether s is a well-formed aggregate score on its own
func ValidScore(s string) bool {
	v, ok := Score("GPA " + strings.TrimSpace(s))
	return ok && v == strings.TrimSpace(s)
}

// Status finds the short pass/fail label
func Status(text string) (string, bool) {
	return firstGroup(statusPattern, text)
}

// plainSpaces maps every space rune except line breaks and tabs to ' '.
// Browsers keep &nbsp; as U+00A0 in innerText and RE2's \s does not match it.
func plainSpaces(text string) string {
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && r != ' ' && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)
}

func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(plainSpaces(text))
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[2])
	if v == "" {
		return "", false
	}
	return v, true
}
