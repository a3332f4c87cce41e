package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchpress/benchpress/internal/model"
)

func sampleRows() []Row {
	return []Row{
		{
			Identity: model.Identity{Group: "codec", Name: "decode", Params: map[string]string{"size": "4k"}},
			Labels:   map[string]float64{"min": 0.002, "mean": 0.003, "max": 0.004, "rounds": 10},
		},
		{
			Identity: model.Identity{Group: "codec", Name: "encode", Params: map[string]string{"size": "4k"}},
			Labels:   map[string]float64{"min": 0.001, "mean": 0.002, "max": 0.003, "rounds": 12},
		},
		{
			Identity: model.Identity{Group: "io", Name: "read"},
			Labels:   map[string]float64{"min": 0.5, "mean": 0.6, "max": 0.7, "rounds": 5},
		},
	}
}

func TestGroupRows_ByGroup(t *testing.T) {
	groups, err := GroupRows(sampleRows(), "group")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "codec", groups[0].Key)
	assert.Len(t, groups[0].Rows, 2)
	assert.Equal(t, "io", groups[1].Key)
}

func TestGroupRows_ByParam(t *testing.T) {
	groups, err := GroupRows(sampleRows(), "param:size")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	// Rows without the parameter bucket under the empty key, first.
	assert.Equal(t, "", groups[0].Key)
	assert.Equal(t, "4k", groups[1].Key)
	assert.Len(t, groups[1].Rows, 2)
}

func TestGroupRows_ByFullname(t *testing.T) {
	groups, err := GroupRows(sampleRows(), "fullname")
	require.NoError(t, err)
	assert.Len(t, groups, 3)
}

func TestGroupRows_UnknownMode(t *testing.T) {
	_, err := GroupRows(sampleRows(), "sideways")
	require.Error(t, err)
}

func TestSortRows(t *testing.T) {
	rows := sampleRows()
	require.NoError(t, SortRows(rows, "min"))
	assert.Equal(t, "encode", rows[0].Identity.Name)
	assert.Equal(t, "decode", rows[1].Identity.Name)
	assert.Equal(t, "read", rows[2].Identity.Name)

	require.NoError(t, SortRows(rows, "name"))
	assert.Equal(t, "decode", rows[0].Identity.Name)

	require.Error(t, SortRows(rows, "bogus"))
}

func TestRenderTable(t *testing.T) {
	groups, err := GroupRows(sampleRows(), "group")
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, RenderTable(&buf, groups, []string{"min", "mean", "max", "rounds"}, "min"))
	out := buf.String()

	assert.Contains(t, out, `benchmark "codec": 2 tests`)
	assert.Contains(t, out, `benchmark "io": 1 tests`)
	assert.Contains(t, out, "codec/decode[size=4k]")
	// The codec group's times are milliseconds, io's are seconds; each
	// section picks its own unit.
	assert.Contains(t, out, "min (ms)")
	assert.Contains(t, out, "min (s)")
}

func TestRenderTable_UnknownColumn(t *testing.T) {
	groups, err := GroupRows(sampleRows(), "group")
	require.NoError(t, err)
	err = RenderTable(&strings.Builder{}, groups, []string{"bogus"}, "name")
	require.Error(t, err)
}

func TestUnitFor(t *testing.T) {
	assert.Equal(t, "s", unitFor(2.5).suffix)
	assert.Equal(t, "ms", unitFor(0.002).suffix)
	assert.Equal(t, "us", unitFor(0.000002).suffix)
	assert.Equal(t, "ns", unitFor(0.000000002).suffix)
}
