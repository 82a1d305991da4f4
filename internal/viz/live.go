package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/battsim/internal/solver"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type sample struct {
	cycle   int
	t       float64
	voltage float64
	current float64
}

type sampleMsg sample

type doneMsg struct{ err error }

// Feed bridges solver samples into the live view. It implements
// solver.Observer; slow consumers drop samples rather than stall the solve.
type Feed struct {
	samples chan sample
	done    chan error
}

func NewFeed() *Feed {
	return &Feed{
		samples: make(chan sample, 256),
		done:    make(chan error, 1),
	}
}

func (f *Feed) OnSample(cycle int, t float64, values map[string]float64) {
	s := sample{
		cycle:   cycle,
		t:       t,
		voltage: values[solver.VarVoltage],
		current: values[solver.VarCurrent],
	}
	select {
	case f.samples <- s:
	default:
	}
}

func (f *Feed) finish(err error) { f.done <- err }

// Live runs fn in the background, streaming its samples into a terminal
// view. It returns fn's error once both the run and the view have ended.
func Live(ctx context.Context, title string, fn func(solver.Observer) error) error {
	feed := NewFeed()
	go func() { feed.finish(fn(feed)) }()

	p := tea.NewProgram(newLiveModel(title, feed), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return <-feed.done
}

type liveModel struct {
	title   string
	feed    *Feed
	last    sample
	history []float64
	count   int
	done    bool
	err     error
}

func newLiveModel(title string, feed *Feed) liveModel {
	return liveModel{
		title:   title,
		feed:    feed,
		history: make([]float64, 0, historyCapacity),
	}
}

func (m liveModel) Init() tea.Cmd { return waitForSample(m.feed) }

func waitForSample(f *Feed) tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-f.samples:
			return sampleMsg(s)
		case err := <-f.done:
			return doneMsg{err: err}
		}
	}
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case sampleMsg:
		m.last = sample(msg)
		m.count++
		m.history = append(m.history, m.last.voltage)
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		return m, waitForSample(m.feed)
	case doneMsg:
		m.done = true
		m.err = msg.err
		// leave the done channel refilled for Live's final read
		m.feed.done <- msg.err
		return m, nil
	}
	return m, nil
}

func (m liveModel) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("Voltage [V]"),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Cycle") + valueStyle.Render(fmt.Sprintf("%d", m.last.cycle+1)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.0fs", m.last.t)) + "\n")
	s.WriteString(labelStyle.Render("Voltage") + valueStyle.Render(fmt.Sprintf("%.3f V", m.last.voltage)) + "\n")
	s.WriteString(labelStyle.Render("Current") + valueStyle.Render(fmt.Sprintf("%.3f A", m.last.current)) + "\n")
	s.WriteString(labelStyle.Render("Samples") + valueStyle.Render(fmt.Sprintf("%d", m.count)) + "\n")
	if m.done {
		if m.err != nil {
			s.WriteString("\n" + doneStyle.Render(fmt.Sprintf("FAILED: %v", m.err)) + "\n")
		} else {
			s.WriteString("\n" + doneStyle.Render("DONE") + "\n")
		}
	}
	s.WriteString(helpStyle.Render("Q:Quit"))
	return s.String()
}
