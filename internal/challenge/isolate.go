// Package challenge picks out the CAPTCHA image on a portal page and writes it
// somewhere a human can look at it.
package challenge

import (
	"regexp"
	"strings"

	"github.com/v0xg/resultfetch/internal/page"
)

// Reason records which rule selected the image
type Reason string

const (
	ReasonSource    Reason = "source"
	ReasonContainer Reason = "container"
	ReasonFirst     Reason = "first-image"
)

// Ref is the element judged most likely to be the challenge image
type Ref struct {
	Element page.Element
	Source  string
	Reason  Reason
}

var (
	sourceKeywords = []string{"captcha", "security"}
	// randomised or keyed image endpoints
	sourcePattern = regexp.MustCompile(`(?i)rand|image|key|num`)
)

const containerSelector = "div[id*='security'], div[class*='captcha']"

// Isolate scans every image on the page. It returns nil when the page has no
// images at all, in which case the caller captures the full page.
func Isolate(p page.Page) *Ref {
	imgs, err := p.Elements("img")
	if err != nil || len(imgs) == 0 {
		return nil
	}

	for _, img := range imgs {
		src, _ := img.Attribute("src")
		if MatchesSource(src) {
			return &Ref{Element: img, Source: src, Reason: ReasonSource}
		}
	}

	if img, ok := inContainer(p); ok {
		src, _ := img.Attribute("src")
		return &Ref{Element: img, Source: src, Reason: ReasonContainer}
	}

	src, _ := imgs[0].Attribute("src")
	return &Ref{Element: imgs[0], Source: src, Reason: ReasonFirst}
}

// MatchesSource reports whether an image URL looks like a challenge endpoint
func MatchesSource(src string) bool {
	if src == "" {
		return false
	}
	lower := strings.ToLower(src)
	for _, kw := range sourceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return sourcePattern.MatchString(src)
}

func inContainer(p page.Page) (page.Element, bool) {
	containers, err := p.Elements(containerSelector)
	if err != nil {
		return nil, false
	}
	for _, c := range containers {
		imgs, err := c.Elements("img")
		if err == nil && len(imgs) > 0 {
			return imgs[0], true
		}
	}
	return nil, false
}
