package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// StoryItem is one row of the story browser.
type StoryItem struct {
	Story     catalog.Story
	Category  string // display label
	HasCover  bool
	CoverPath string
}

// FilterValue returns a string used for filtering in the list
func (s StoryItem) FilterValue() string {
	return strings.Join([]string{s.Story.Title, s.Story.Author, s.Category, s.Story.Description}, " ")
}

// Column width constraints
const (
	minTitleWidth    = 12
	maxTitleWidth    = 48
	minAuthorWidth   = 8
	maxAuthorWidth   = 26
	minCategoryWidth = 6
	maxCategoryWidth = 16
	countsWidth      = 14
	columnGap        = 1
)

// computeColumnWidths distributes available width proportionally across columns.
func computeColumnWidths(totalWidth int) (titleW, authorW, categoryW int) {
	// prefix ("› ") plus gaps between four columns
	usable := totalWidth - 2 - columnGap*3 - countsWidth
	if usable < minTitleWidth+minAuthorWidth+minCategoryWidth {
		return minTitleWidth, minAuthorWidth, minCategoryWidth
	}
	titleW = min(usable*50/100, maxTitleWidth)
	remaining := usable - titleW
	authorW = max(min(remaining*60/100, maxAuthorWidth), minAuthorWidth)
	categoryW = max(min(remaining-authorW, maxCategoryWidth), minCategoryWidth)
	return max(titleW, minTitleWidth), authorW, categoryW
}

// padOrTruncate pads s to exactly width cells, truncating with "…" if necessary.
// Widths are measured in terminal cells so wide and combining runes align.
func padOrTruncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = xansi.Truncate(s, width, "…")
	if n := xansi.StringWidth(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// storyDelegate renders one story per line.
type storyDelegate struct{}

func (d storyDelegate) Height() int                               { return 1 }
func (d storyDelegate) Spacing() int                              { return 0 }
func (d storyDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d storyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	si, ok := item.(StoryItem)
	if !ok {
		return
	}

	listWidth := m.Width()
	if listWidth <= 0 {
		listWidth = 80
	}
	titleW, authorW, categoryW := computeColumnWidths(listWidth)
	gap := strings.Repeat(" ", columnGap)

	titleCol := padOrTruncate(si.Story.Title, titleW)
	authorCol := padOrTruncate(si.Story.Author, authorW)
	categoryCol := padOrTruncate(si.Category, categoryW)
	countsCol := padOrTruncate(fmt.Sprintf("♥%d ↓%d", si.Story.Likes, si.Story.Downloads), countsWidth)

	var line string
	if index == m.Index() {
		line = lipgloss.NewStyle().Foreground(ColorYellow).Render("›") + " " +
			StyleHighlight.Render(titleCol) + gap +
			lipgloss.NewStyle().Foreground(ColorYellow).Faint(true).Render(authorCol) + gap +
			StyleTag.Render(categoryCol) + gap +
			StyleCount.Render(countsCol)
	} else {
		line = "  " + StyleNormal.Render(titleCol) + gap +
			StyleHelp.Render(authorCol) + gap +
			StyleTag.Render(categoryCol) + gap +
			StyleHelp.Render(countsCol)
	}
	_, _ = fmt.Fprint(w, line)
}
