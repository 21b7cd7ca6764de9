package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

// ProgressFunc returns a callback that forwards done counts to ch without
// blocking. Updates that find the channel full are skipped; the bar catches
// up on the next one.
func ProgressFunc(ch chan<- int64) func(done, total int) {
	return func(done, _ int) {
		select {
		case ch <- int64(done):
		default:
		}
	}
}

// progressMsg is sent when progress updates
type progressMsg int64

// tickMsg is sent periodically to refresh the UI
type tickMsg time.Time

// progressModel is the Bubble Tea model for showing progress
type progressModel struct {
	progress   progress.Model
	total      int64
	current    int64
	label      string
	unit       string
	done       bool
	cancelled  bool
	progressCh <-chan int64
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		waitForProgress(m.progressCh),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForProgress(ch <-chan int64) tea.Cmd {
	return func() tea.Msg {
		// Block on channel read - UI stays alive via tickCmd
		n, ok := <-ch
		if !ok {
			// Channel closed, operation complete
			return progressMsg(-1)
		}
		return progressMsg(n)
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Allow Ctrl+C to quit
		if msg.String() == "ctrl+c" {
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		}

	case tickMsg:
		if m.done {
			return m, tea.Quit
		}
		return m, tickCmd()

	case progressMsg:
		if int64(msg) == -1 {
			m.done = true
			return m, tea.Quit
		}
		m.current = max(m.current, int64(msg))
		return m, waitForProgress(m.progressCh)

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-20, 80)
		return m, nil
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.current) / float64(m.total)
	}

	return fmt.Sprintf(
		"%s\n%s\n%d / %d %s (%.0f%%)\n",
		m.label,
		m.progress.ViewAs(percent),
		m.current,
		m.total,
		m.unit,
		percent*100,
	)
}

// ShowProgress displays a progress bar until progressCh is closed. Each value
// received is the number of units finished so far. The caller closes the
// channel when the work ends, successfully or not.
// Returns an error if cancelled by the user (Ctrl+C).
func ShowProgress(label, unit string, total int64, progressCh <-chan int64) error {
	m := progressModel{
		progress:   progress.New(progress.WithDefaultGradient()),
		total:      total,
		label:      label,
		unit:       unit,
		progressCh: progressCh,
	}

	finalModel, err := tea.NewProgram(m).Run()
	if err != nil {
		return err
	}

	if fm, ok := finalModel.(progressModel); ok && fm.cancelled {
		return fmt.Errorf("cancelled by user")
	}
	return nil
}
