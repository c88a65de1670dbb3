// Package portal holds the courtesy rules for talking to a results portal:
// robots.txt and a minimum spacing between fetches.
package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// Verdict is what robots.txt says about the target page
type Verdict struct {
	Allowed    bool
	CrawlDelay time.Duration
	// Known is false when robots.txt could not be read; Allowed is then true
	Known bool
}

// Check fetches robots.txt for the host of rawURL and tests its path
func Check(ctx context.Context, client *http.Client, rawURL, userAgent string) (Verdict, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Verdict{}, fmt.Errorf("parse URL: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	agent := userAgent
	if agent == "" {
		agent = "resultfetch"
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Verdict{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", agent)

	resp, err := client.Do(req)
	if err != nil {
		// unreachable robots.txt does not block the run
		return Verdict{Allowed: true}, nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return Verdict{Allowed: true}, fmt.Errorf("parse robots.txt: %w", err)
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	v := Verdict{Allowed: data.TestAgent(path, agent), Known: true}
	if group := data.FindGroup(agent); group != nil {
		v.CrawlDelay = group.CrawlDelay
	}
	return v, nil
}
