package store

import (
	"testing"

	"github.com/san-kum/battsim/internal/series"
)

func TestStoreSaveListLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := series.Ok(series.GraphGroup{
		Title: "Capacity over Cycles",
		Graphs: []series.Series{
			{Name: "Cycle", Values: []float64{0, 1.5, 3}},
			{Name: "Throughput capacity [A.h]", FName: "Capacity", Values: []float64{0, 5, 10}},
		},
	})

	runID, err := st.Save("cycling", "Silicon", 3, result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].ID != runID || runs[0].Kind != "cycling" || runs[0].Cycles != 3 {
		t.Errorf("metadata mismatch: %+v", runs[0])
	}

	groups, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Title != "Capacity over Cycles" {
		t.Fatalf("result mismatch: %+v", groups)
	}
	if len(groups[0].Graphs[1].Values) != 3 {
		t.Errorf("trace values lost: %+v", groups[0].Graphs[1])
	}
}

func TestListEmptyDir(t *testing.T) {
	st := New(t.TempDir() + "/missing")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
