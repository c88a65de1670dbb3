// Package browser drives a real Chromium through go-rod and exposes it as a
// page.Navigator.
package browser

import (
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/v0xg/resultfetch/internal/page"
)

// Options configures the browser
type Options struct {
	Width     int
	Height    int
	Headless  bool
	Bin       string // Chrome/Chromium binary; looked up when empty
	UserAgent string
	// Timeout bounds each navigation and element operation
	Timeout time.Duration
}

// Browser wraps the Rod browser and its single tab
type Browser struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

// Launch starts a browser with one blank tab
func Launch(opts Options) (*Browser, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	bin := opts.Bin
	if bin == "" {
		bin, _ = launcher.LookPath()
	}
	l := launcher.New().Headless(opts.Headless)
	if bin != "" {
		l = l.Bin(bin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := &Browser{launcher: l, timeout: opts.Timeout}
	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.Close()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	b.page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	if opts.Width > 0 && opts.Height > 0 {
		err = b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
		})
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("set viewport: %w", err)
		}
	}
	if opts.UserAgent != "" {
		if err := b.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
			b.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	return b, nil
}

// Close cleans up browser resources
func (b *Browser) Close() {
	if b.page != nil {
		_ = b.page.Close()
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Cleanup()
	}
}

// Page returns the tab as a page.Navigator
func (b *Browser) Page() page.Navigator {
	return &tab{page: b.page, timeout: b.timeout}
}

var _ page.Navigator = (*tab)(nil)

type tab struct {
	page    *rod.Page
	timeout time.Duration
}

func (t *tab) Navigate(url string) error {
	p := t.page.Timeout(t.timeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	// Don't hang on long polling connections
	t.page.Timeout(5*time.Second).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
	return nil
}

func (t *tab) Elements(selector string) ([]page.Element, error) {
	els, err := t.page.Timeout(t.timeout).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrap(els, t.timeout), nil
}

func (t *tab) HTML() (string, error) {
	return t.page.Timeout(t.timeout).HTML()
}

func (t *tab) BodyText() (string, error) {
	res, err := t.page.Timeout(t.timeout).Eval(`() => document.body ? document.body.innerText : null`)
	if err != nil {
		return "", err
	}
	if res.Value.Nil() {
		return "", page.ErrNoBody
	}
	return res.Value.Str(), nil
}

func (t *tab) Screenshot(path string) error {
	data, err := t.page.Timeout(t.timeout).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("page screenshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

type element struct {
	el      *rod.Element
	timeout time.Duration
}

func wrap(els rod.Elements, timeout time.Duration) []page.Element {
	out := make([]page.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &element{el: el, timeout: timeout})
	}
	return out
}

func (e *element) Attribute(name string) (string, bool) {
	v, err := e.el.Timeout(e.timeout).Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (e *element) Text() (string, error) {
	return e.el.Timeout(e.timeout).Text()
}

func (e *element) Elements(selector string) ([]page.Element, error) {
	els, err := e.el.Timeout(e.timeout).Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrap(els, e.timeout), nil
}

func (e *element) Input(text string) error {
	el := e.el.Timeout(e.timeout)
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text: %w", err)
	}
	return el.Input(text)
}

func (e *element) Click() error {
	return e.el.Timeout(e.timeout).Click(proto.InputMouseButtonLeft, 1)
}

func (e *element) PressEnter() error {
	return e.el.Timeout(e.timeout).Type(input.Enter)
}

func (e *element) Screenshot(path string) error {
	data, err := e.el.Timeout(e.timeout).Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return fmt.Errorf("element screenshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
