// Package series turns per-cycle solver output into chart-ready traces.
package series

import "encoding/json"

// Series is one plotted trace: a display name, an optional function label,
// and its values. Within a group the first Series is the shared x-axis by
// convention.
type Series struct {
	Name   string    `json:"name"`
	FName  string    `json:"fname,omitempty"`
	Values []float64 `json:"values"`
}

// GraphGroup is a titled collection of traces.
type GraphGroup struct {
	Title  string   `json:"title"`
	Graphs []Series `json:"graphs"`
}

// Result is the top-level response: ordered graph groups on success, a
// single-element error envelope otherwise. The envelope shape lets the
// transport always deliver a well-formed body.
type Result struct {
	Groups []GraphGroup
	Err    error
}

// Ok wraps graph groups into a success Result.
func Ok(groups ...GraphGroup) Result {
	return Result{Groups: groups}
}

// Fail discards any partial output and carries the failure.
func Fail(err error) Result {
	return Result{Err: err}
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal([]string{"ERROR: " + r.Err.Error()})
	}
	return json.Marshal(r.Groups)
}
