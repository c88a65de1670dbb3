// Package page defines the page-rendering collaborator the extraction engine
// works against. A live browser and a static HTML document both satisfy it.
package page

import "errors"

var (
	// ErrNotInteractive is returned by elements that cannot receive input,
	// such as nodes of a static document.
	ErrNotInteractive = errors.New("element is not interactive")
	// ErrNoBody is returned when the page has no body element.
	ErrNoBody = errors.New("page has no body")
)

// Element is a single node on a rendered page
type Element interface {
	// Attribute returns the attribute value and whether it is present
	Attribute(name string) (string, bool)
	Text() (string, error)
	// Elements returns descendants matching a CSS selector, in document order
	Elements(selector string) ([]Element, error)
	// Input replaces the element's current value with text
	Input(text string) error
	Click() error
	// PressEnter sends a terminator keystroke to the element
	PressEnter() error
	// Screenshot captures only this element as a PNG at path
	Screenshot(path string) error
}

// Page is a loaded document that can be inspected and captured
type Page interface {
	// Elements returns all elements matching a CSS selector, in document order
	Elements(selector string) ([]Element, error)
	// HTML returns the full rendered markup
	HTML() (string, error)
	// BodyText returns the visible text of the body
	BodyText() (string, error)
	// Screenshot captures the whole page as a PNG at path
	Screenshot(path string) error
}

// Navigator is a Page that can load a new URL in place
type Navigator interface {
	Page
	Navigate(url string) error
}
