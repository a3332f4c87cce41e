package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchpress/benchpress/internal/model"
)

func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	w, err := NewCSVWriter(path, []string{"min", "mean"})
	require.NoError(t, err)

	row := Row{
		Identity: model.Identity{Group: "g", Name: "bench", Params: map[string]string{"n": "1"}},
		Labels:   map[string]float64{"min": 0.001, "mean": 0.002},
	}
	require.NoError(t, w.Write(row))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"group", "name", "fullname", "params", "min", "mean"}, records[0])
	assert.Equal(t, []string{"g", "bench", "g/bench[n=1]", "n=1", "0.001", "0.002"}, records[1])
}

func TestCSVWriter_UnknownColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	w, err := NewCSVWriter(path, []string{"bogus"})
	require.NoError(t, err)
	defer w.Close()

	err = w.Write(Row{Identity: model.Identity{Name: "x"}, Labels: map[string]float64{}})
	require.Error(t, err)
}
