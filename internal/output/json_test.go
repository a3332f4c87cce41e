package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchpress/benchpress/internal/storage"
)

func TestWriteJSONReport(t *testing.T) {
	report := &storage.SavedRun{
		MachineInfo: map[string]string{"node": "test"},
		DateTime:    "2026-08-30T12:00:00Z",
		Version:     "1.0.0",
		Benchmarks: []storage.SavedBenchmark{
			{
				FullName: "g/bench",
				Stats:    map[string]float64{"mean": 0.001},
				Data:     []float64{0.0009, 0.0011},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, WriteJSONReport(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Equal(t, byte('\n'), data[len(data)-1], "report ends with a newline")

	var got storage.SavedRun
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, report.Benchmarks, got.Benchmarks)
	assert.Equal(t, report.MachineInfo, got.MachineInfo)
}
