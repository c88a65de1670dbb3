// Package prompt asks the operator to read a challenge image and type what
// it shows.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoAnswer is returned when input closes before the operator answers
var ErrNoAnswer = errors.New("no answer: input closed")

// Terminal prompts on a writer and reads one line per prompt
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal prompter
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

type line struct {
	text string
	err  error
}

// Prompt shows where the image was saved and blocks for one line. An empty
// line is a valid answer meaning the challenge is left blank.
func (t *Terminal) Prompt(ctx context.Context, imagePath, identifier string) (string, error) {
	fmt.Fprintf(t.out, "\n[ACTION REQUIRED] Security key needed for %s\n", identifier)
	fmt.Fprintf(t.out, "  1. Open the image: %s\n", imagePath)
	fmt.Fprintf(t.out, "  2. Type the key shown (for %s): ", identifier)

	ch := make(chan line, 1)
	go func() {
		text, err := t.in.ReadString('\n')
		ch <- line{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", ctx.Err()
	case l := <-ch:
		answer := strings.TrimSpace(l.text)
		if l.err != nil {
			if errors.Is(l.err, io.EOF) && answer != "" {
				return answer, nil
			}
			if errors.Is(l.err, io.EOF) {
				return "", ErrNoAnswer
			}
			return "", fmt.Errorf("read answer: %w", l.err)
		}
		return answer, nil
	}
}
