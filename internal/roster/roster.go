// Package roster reads the list of roll numbers to fetch.
package roster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is one requested result: a roll number and, for portals that ask for
// it, a registration number.
type Entry struct {
	Identifier string
	Secondary  string
}

// Defaults is used when no roster file exists
func Defaults() []Entry {
	return []Entry{
		{Identifier: "162555"},
		{Identifier: "162556"},
		{Identifier: "162557"},
		{Identifier: "162558"},
	}
}

// Load reads a roster file. A missing file returns an error satisfying
// errors.Is(err, os.ErrNotExist).
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read parses one entry per line: "roll" or "roll,reg" (comma, tab or
// space separated). Blank lines and lines starting with # are skipped.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parts := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t'
		})
		if len(parts) == 0 {
			continue
		}
		e := Entry{Identifier: parts[0]}
		if len(parts) > 1 {
			e.Secondary = parts[1]
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return entries, nil
}

// Bootstrap writes the default roster to path so the operator has a file to edit
func Bootstrap(path string) error {
	var b strings.Builder
	for _, e := range Defaults() {
		b.WriteString(e.Identifier)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write default roster: %w", err)
	}
	return nil
}
