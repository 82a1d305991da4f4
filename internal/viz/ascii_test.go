package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/battsim/internal/series"
)

func TestRenderGroupsSkipsAxes(t *testing.T) {
	groups := []series.GraphGroup{
		{
			Title: "Capacity over Cycles",
			Graphs: []series.Series{
				{Name: "Cycle", Values: []float64{0, 1, 2}},
				{Name: "Capacity", FName: "Capacity", Values: []float64{5, 4.5, 4}},
			},
		},
	}

	out := RenderGroups(groups)

	if !strings.Contains(out, "Capacity over Cycles") {
		t.Error("missing group title")
	}
	if !strings.Contains(out, "Capacity") {
		t.Error("missing trace caption")
	}
	// the axis series has no fname and should not be charted
	if strings.Count(out, "Cycle") > 1 {
		t.Error("axis series should not be plotted")
	}
}

func TestRenderSeriesTooFewPoints(t *testing.T) {
	out := renderSeries(series.Series{Name: "Voltage", FName: "1C", Values: []float64{3.7}})
	if !strings.Contains(out, "not enough points") {
		t.Errorf("unexpected output: %q", out)
	}
}
