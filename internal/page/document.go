package page

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Document is a static Page backed by parsed markup. It answers every query a
// live page does but refuses interaction and capture.
type Document struct {
	html string
	doc  *goquery.Document
}

// Parse builds a Document from raw markup
func Parse(markup string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{html: markup, doc: doc}, nil
}

// Elements implements Page
func (d *Document) Elements(selector string) ([]Element, error) {
	return findAll(d.doc.Selection, selector)
}

// HTML returns the markup the document was parsed from
func (d *Document) HTML() (string, error) {
	return d.html, nil
}

// BodyText implements Page. Block boundaries become line breaks so labels on
// neighbouring cells do not run together.
func (d *Document) BodyText() (string, error) {
	body := d.doc.Find("body")
	if body.Length() == 0 {
		return "", ErrNoBody
	}
	return VisibleText(body), nil
}

// Screenshot implements Page
func (d *Document) Screenshot(path string) error {
	return fmt.Errorf("capture %s: %w", path, ErrNotInteractive)
}

// Selection exposes the parsed tree for callers that walk it directly
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

type node struct {
	sel *goquery.Selection
}

func (n node) Attribute(name string) (string, bool) {
	return n.sel.Attr(name)
}

func (n node) Text() (string, error) {
	return strings.TrimSpace(n.sel.Text()), nil
}

func (n node) Elements(selector string) ([]Element, error) {
	return findAll(n.sel, selector)
}

func (n node) Input(string) error { return ErrNotInteractive }

func (n node) Click() error { return ErrNotInteractive }

func (n node) PressEnter() error { return ErrNotInteractive }

func (n node) Screenshot(string) error { return ErrNotInteractive }

// findAll compiles the selector first so a malformed one is reported rather
// than silently matching nothing
func findAll(sel *goquery.Selection, selector string) ([]Element, error) {
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}

	var els []Element
	sel.FindMatcher(m).Each(func(_ int, s *goquery.Selection) {
		els = append(els, node{sel: s})
	})
	return els, nil
}

var blockTags = map[string]bool{
	"p": true, "div": true, "tr": true, "br": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"td": true, "th": true, "section": true, "form": true,
}

// VisibleText flattens a selection to text the way a browser's innerText
// roughly does: scripts and styles dropped, rows on their own lines and
// table cells separated by tabs.
func VisibleText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			n := c.Get(0)
			switch {
			case goquery.NodeName(c) == "#text":
				b.WriteString(flatten.Replace(n.Data))
			case goquery.NodeName(c) == "script", goquery.NodeName(c) == "style":
			default:
				name := goquery.NodeName(c)
				walk(c)
				if blockTags[name] {
					if name == "td" || name == "th" {
						b.WriteString("\t")
					} else {
						b.WriteString("\n")
					}
				}
			}
		})
	}
	walk(sel)

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, line := range lines {
		cells := strings.Split(line, "\t")
		kept := cells[:0]
		for _, c := range cells {
			if c = strings.Join(strings.Fields(c), " "); c != "" {
				kept = append(kept, c)
			}
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, "\t"))
		}
	}
	return strings.Join(out, "\n")
}
