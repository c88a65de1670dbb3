package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompt_ReadsOneLinePerCall(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(" 4821 \n\n93x7"), &out)
	ctx := context.Background()

	got, err := term.Prompt(ctx, "captcha_1001.png", "1001")
	require.NoError(t, err)
	assert.Equal(t, "4821", got)
	assert.Contains(t, out.String(), "captcha_1001.png")
	assert.Contains(t, out.String(), "1001")

	got, err = term.Prompt(ctx, "captcha_1002.png", "1002")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// last line without a newline still counts
	got, err = term.Prompt(ctx, "captcha_1003.png", "1003")
	require.NoError(t, err)
	assert.Equal(t, "93x7", got)

	_, err = term.Prompt(ctx, "captcha_1004.png", "1004")
	assert.ErrorIs(t, err, ErrNoAnswer)
}

func TestPrompt_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTerminal(r, io.Discard).Prompt(ctx, "c.png", "1001")
	assert.ErrorIs(t, err, context.Canceled)
}
