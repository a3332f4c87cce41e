/*
PURPOSE:
  Renders min/mean/max charts of the measured benchmarks as standalone
  HTML files, one per group, using go-echarts.

REQUIREMENTS:
  User-specified:
  - --histogram PREFIX writes PREFIX-<group>.html per group.

  Implementation-discovered:
  - Values are plotted in the group's common time unit so the y axis is
    readable; the unit goes into the subtitle.

ARCHITECTURE INTEGRATION:
  - Called by: internal/session
  - Consumes: output.Group

ERROR HANDLING:
  - Returns error on file creation or render failure.

USAGE:
  files, err := output.WriteHistograms("benchmark_20260830", groups)

MAINTENANCE:
  - Chart type/series live here only; nothing else depends on go-echarts.
*/

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHistograms writes one chart file per group and returns the paths.
func WriteHistograms(prefix string, groups []Group) ([]string, error) {
	if dir := filepath.Dir(prefix); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create histogram directory %s: %w", dir, err)
		}
	}

	var written []string
	for _, g := range groups {
		key := g.Key
		if key == "" {
			key = "ungrouped"
		}
		path := fmt.Sprintf("%s-%s.html", prefix, sanitize(key))
		if err := writeGroupChart(path, g); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeGroupChart(path string, g Group) error {
	u := unitFor(columnMin(g.Rows, "min"))

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("benchmark %q", g.Key),
			Subtitle: fmt.Sprintf("min/mean/max per iteration (%s)", u.suffix),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	names := make([]string, 0, len(g.Rows))
	series := map[string][]opts.BarData{
		"min": nil, "mean": nil, "max": nil,
	}
	for _, r := range g.Rows {
		names = append(names, r.Identity.FullName())
		for _, metric := range []string{"min", "mean", "max"} {
			series[metric] = append(series[metric], opts.BarData{Value: r.Labels[metric] * u.scale})
		}
	}

	bar.SetXAxis(names).
		AddSeries("min", series["min"]).
		AddSeries("mean", series["mean"]).
		AddSeries("max", series["max"])

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create histogram %s: %w", path, err)
	}
	defer f.Close()

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("failed to render histogram %s: %w", path, err)
	}
	return nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':', '[', ']':
			return '_'
		}
		return r
	}, name)
}
