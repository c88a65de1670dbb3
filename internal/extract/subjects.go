package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/v0xg/resultfetch/internal/result"
)

var gradePattern = regexp.MustCompile(`(?i)^(A\+|[A-DF])\+?$`)

// Grade is one accepted subject row
type Grade struct {
	Subject string
	Key     string
	Grade   string
}

// Subjects walks every table row with at least three cells, taking the second
// cell as the subject and the last as the grade. Rows come back in document
// order; duplicates are kept so the caller decides how to merge them.
func Subjects(sel *goquery.Selection) []Grade {
	var grades []Grade
	sel.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.ChildrenFiltered("td")
			if cells.Length() < 3 {
				return
			}
			subject := strings.TrimSpace(cells.Eq(1).Text())
			grade := cleanGrade(cells.Last().Text())
			if subject == "" || !ValidGrade(grade) {
				return
			}
			key := NormalizeSubject(subject)
			if key == "" {
				return
			}
			grades = append(grades, Grade{Subject: subject, Key: key, Grade: grade})
		})
	})
	return grades
}

// ValidGrade reports whether token is a letter grade
func ValidGrade(token string) bool {
	return gradePattern.MatchString(token)
}

func cleanGrade(s string) string {
	s = strings.ReplaceAll(s, "=", "")
	return strings.Join(strings.Fields(s), "")
}

// NormalizeSubject turns observed subject text into a stable column key.
// Periods, commas and apostrophes are dropped, other punctuation separates
// words, and words are joined with underscores. Keys that would collide with
// a reserved record field get a "subject_" prefix.
func NormalizeSubject(subject string) string {
	var b strings.Builder
	for _, r := range subject {
		switch {
		case r == '.' || r == ',' || r == '\'' || r == '’':
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	key := strings.Join(strings.Fields(b.String()), "_")
	if isReserved(key) {
		key = fmt.Sprintf("subject_%s", key)
	}
	return key
}

func isReserved(key string) bool {
	switch key {
	case result.KeyIdentifier, result.KeyName, result.KeyAggregateScore,
		result.KeyStatusSummary, result.KeyPageLength, result.KeyError:
		return true
	}
	return false
}
