package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	in := "\ufeff162555\n\n  162556  \n# skipped\n162557,8123456\n162558\t8123457\n,,\n"
	got, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Identifier: "162555"},
		{Identifier: "162556"},
		{Identifier: "162557", Secondary: "8123456"},
		{Identifier: "162558", Secondary: "8123457"},
	}, got)
}

func TestRead_Empty(t *testing.T) {
	got, err := Read(strings.NewReader("\n \n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "rolls.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBootstrapThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rolls.txt")
	require.NoError(t, Bootstrap(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}
