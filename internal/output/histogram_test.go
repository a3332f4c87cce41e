package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchpress/benchpress/internal/model"
)

func TestWriteHistograms(t *testing.T) {
	groups := []Group{
		{
			Key: "crypto ops",
			Rows: []Row{
				{
					Identity: model.Identity{Group: "crypto ops", Name: "hash"},
					Labels:   map[string]float64{"min": 0.001, "mean": 0.0015, "max": 0.002},
				},
			},
		},
	}

	prefix := filepath.Join(t.TempDir(), "bench")
	files, err := WriteHistograms(prefix, groups)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "bench-crypto_ops.html", filepath.Base(files[0]))

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hash")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a_b_c", sanitize("a b/c"))
	assert.Equal(t, "plain", sanitize("plain"))
}
