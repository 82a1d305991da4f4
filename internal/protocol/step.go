package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the operation a step performs.
type Kind int

const (
	Discharge Kind = iota
	Charge
	Hold
)

func (k Kind) String() string {
	switch k {
	case Discharge:
		return "Discharge"
	case Charge:
		return "Charge"
	case Hold:
		return "Hold"
	}
	return "Unknown"
}

// Step is one protocol instruction: an operation at a rate or target voltage,
// a termination condition, and a sampling period.
type Step struct {
	Kind        Kind
	CRate       float64 // charge/discharge rate; unused for Hold
	HoldVoltage float64 // target voltage; Hold only

	MaxDuration    time.Duration // hard time cap; zero means unbounded
	CutoffVoltage  *float64      // stop when voltage crosses this threshold
	CutoffCurrentA *float64      // stop when |current| falls below; Hold only

	Period time.Duration // sampling period
}

// String renders the step the way protocol strings are conventionally written,
// e.g. "Discharge at 1 C for 10 hours or until 3.0 V".
func (s Step) String() string {
	switch s.Kind {
	case Hold:
		if s.CutoffCurrentA != nil {
			return fmt.Sprintf("Hold at %s V until %.4g mA", formatVolts(s.HoldVoltage), *s.CutoffCurrentA*1000)
		}
		return fmt.Sprintf("Hold at %s V", formatVolts(s.HoldVoltage))
	default:
		out := fmt.Sprintf("%s at %.4g C", s.Kind, s.CRate)
		if s.MaxDuration > 0 {
			out += fmt.Sprintf(" for %s", formatDuration(s.MaxDuration))
		}
		if s.CutoffVoltage != nil {
			if s.MaxDuration > 0 {
				out += " or"
			}
			out += fmt.Sprintf(" until %s V", formatVolts(*s.CutoffVoltage))
		}
		return out
	}
}

// formatVolts renders a voltage the way protocol strings write them: minimal
// digits but never bare integers, so 3 reads "3.0" and 3.65 reads "3.65".
func formatVolts(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatDuration(d time.Duration) string {
	hours := d.Hours()
	if hours == float64(int(hours)) {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", int(hours))
	}
	return fmt.Sprintf("%.4g hours", hours)
}

// Experiment is a cycle template repeated Cycles times. InitialSOC, when set,
// forces the starting state of charge before the first step.
type Experiment struct {
	Template   []Step
	Cycles     int
	InitialSOC *float64
}

// Strings renders the template instructions, one per step.
func (e Experiment) Strings() []string {
	out := make([]string, len(e.Template))
	for i, s := range e.Template {
		out[i] = s.String()
	}
	return out
}
