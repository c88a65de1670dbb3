package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const form = `<html><body>
<form>
  <input name="roll" id="roll_no">
  <img src="captcha.php?rand=9" alt="key">
</form>
<table><tr><td>Name</td><td> RAHIM
  UDDIN </td></tr><tr><td>GPA</td><td>4.67</td></tr></table>
<script>var x = "hidden";</script>
</body></html>`

func TestDocument_Elements(t *testing.T) {
	doc, err := Parse(form)
	require.NoError(t, err)

	els, err := doc.Elements("input[name='roll']")
	require.NoError(t, err)
	require.Len(t, els, 1)
	id, ok := els[0].Attribute("id")
	assert.True(t, ok)
	assert.Equal(t, "roll_no", id)

	_, ok = els[0].Attribute("value")
	assert.False(t, ok)

	none, err := doc.Elements("select")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDocument_BadSelector(t *testing.T) {
	doc, err := Parse(form)
	require.NoError(t, err)

	_, err = doc.Elements("input[")
	assert.Error(t, err)
}

func TestDocument_RefusesInteraction(t *testing.T) {
	doc, err := Parse(form)
	require.NoError(t, err)

	els, err := doc.Elements("input")
	require.NoError(t, err)
	require.NotEmpty(t, els)
	assert.ErrorIs(t, els[0].Input("1"), ErrNotInteractive)
	assert.ErrorIs(t, els[0].Click(), ErrNotInteractive)
	assert.ErrorIs(t, els[0].PressEnter(), ErrNotInteractive)
	assert.ErrorIs(t, els[0].Screenshot("x.png"), ErrNotInteractive)
	assert.ErrorIs(t, doc.Screenshot("x.png"), ErrNotInteractive)
}

func TestDocument_BodyText(t *testing.T) {
	doc, err := Parse(form)
	require.NoError(t, err)

	text, err := doc.BodyText()
	require.NoError(t, err)
	assert.Equal(t, "Name\tRAHIM UDDIN\nGPA\t4.67", text)
	assert.NotContains(t, text, "hidden")

	markup, err := doc.HTML()
	require.NoError(t, err)
	assert.Equal(t, form, markup)
}
