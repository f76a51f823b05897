package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	sourceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
)

// doneMsg carries the finished answer into the spinner program.
type doneMsg struct {
	ans answer
	err error
}

// waitModel shows a spinner until a doneMsg arrives.
type waitModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newWaitModel(label string) waitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle
	return waitModel{spinner: s, label: label}
}

func (m waitModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(doneMsg); ok {
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), mutedStyle.Render(m.label))
}

// waitWithSpinner runs fn, showing a spinner on out when it is a terminal.
func waitWithSpinner(out *os.File, label string, fn func() (answer, error)) (answer, error) {
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return fn()
	}

	p := tea.NewProgram(newWaitModel(label),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	results := make(chan doneMsg, 1)
	go func() {
		ans, err := fn()
		results <- doneMsg{ans: ans, err: err}
		p.Send(doneMsg{})
	}()

	// the spinner is cosmetic; the answer comes from the channel either way
	_, _ = p.Run()
	res := <-results
	return res.ans, res.err
}

// renderReply prints text, as highlighted markdown when requested.
func renderReply(w io.Writer, text string, highlight bool) {
	if highlight {
		if err := quick.Highlight(w, text+"\n", "markdown", "terminal256", "monokai"); err == nil {
			return
		}
	}
	fmt.Fprintln(w, text)
}

// summaryLine describes where the answer came from and its size.
func summaryLine(ans answer, promptTokens, replyTokens int) string {
	took := (time.Duration(ans.TookMs) * time.Millisecond).Round(100 * time.Millisecond)
	return fmt.Sprintf("%s %s",
		sourceStyle.Render(ans.Source),
		mutedStyle.Render(fmt.Sprintf("in %s, %d prompt / %d reply tokens", took, promptTokens, replyTokens)),
	)
}
