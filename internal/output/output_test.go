package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v0xg/resultfetch/internal/result"
	"github.com/xuri/excelize/v2"
)

func sampleRun() result.Run {
	a := result.New()
	a.Set(result.KeyName, "RAHIM UDDIN")
	a.Set(result.KeyAggregateScore, "4.67")
	a.Set(result.KeyStatusSummary, "PASSED")
	a.Set("Physics", "A+")
	a.SetPageLength(1200)
	a.Set(result.KeyIdentifier, "1001")

	b := result.Failed("1002", errors.New("navigate: timeout"))
	return result.Run{a, b}
}

func TestRows(t *testing.T) {
	rows := Rows(sampleRun())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"identifier", "name", "aggregateScore", "statusSummary", "error", "Physics", "pageContentLength"}, rows[0])
	assert.Equal(t, []string{"1001", "RAHIM UDDIN", "4.67", "PASSED", "", "A+", "1200"}, rows[1])
	assert.Equal(t, []string{"1002", "", "", "", "navigate: timeout", "", ""}, rows[2])
}

func TestWrite_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	n, err := Write(sampleRun(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, Rows(sampleRun()), rows)
}

func TestWrite_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	n, err := Write(sampleRun(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "identifier", rows[0][0])
	assert.Equal(t, "4.67", rows[1][2])
	assert.Equal(t, "navigate: timeout", rows[2][4])
}

func TestWrite_UnknownExtension(t *testing.T) {
	_, err := Write(sampleRun(), filepath.Join(t.TempDir(), "results.json"))
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(sampleRun(), &buf)
	out := buf.String()
	assert.Contains(t, out, "RAHIM UDDIN")
	assert.Contains(t, out, "navigate: timeout")
	assert.Contains(t, out, "╭")
}
