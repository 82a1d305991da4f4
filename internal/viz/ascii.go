package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/battsim/internal/series"
)

const (
	chartWidth  = 70
	chartHeight = 10
)

// RenderGroups draws each graph group as a captioned ascii chart. Axis
// series (fname-less companions) are skipped so only traces are plotted.
func RenderGroups(groups []series.GraphGroup) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(g.Title + "\n")
		for _, s := range g.Graphs {
			if s.FName == "" {
				continue
			}
			b.WriteString(renderSeries(s) + "\n")
		}
	}
	return b.String()
}

func renderSeries(s series.Series) string {
	if len(s.Values) < 2 {
		return fmt.Sprintf("  %s: (not enough points)", s.Name)
	}
	data := s.Values
	if len(data) > chartWidth {
		data = series.DownsampleToCap(data, chartWidth)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption(s.Name),
	)
}
