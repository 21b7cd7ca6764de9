package tui

import (
	"fmt"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// detailsWidth is 40% of the screen with a floor for readability.
func (m BrowserModel) detailsWidth() int {
	return max((m.width-2)*4/10, 30)
}

func (m BrowserModel) renderDetailsPane() string {
	si, ok := m.list.SelectedItem().(StoryItem)
	if !ok {
		return ""
	}

	width := m.detailsWidth()
	maxTextWidth := max(width-2-10, 10) // padding and the longest label

	var s strings.Builder

	if si.HasCover {
		if img := RenderInlineImage(si.CoverPath, m.protocol); img != "" {
			s.WriteString(ClearInlineImages(m.protocol))
			s.WriteString(img)
			s.WriteString("\n\n")
		}
	}

	s.WriteString(StyleHeader.Render(xansi.Truncate(si.Story.Title, width-2, "…")))
	s.WriteString("\n\n")

	field := func(label, value string) {
		s.WriteString(StyleHighlight.Render(label + ": "))
		s.WriteString(xansi.Truncate(value, maxTextWidth, "…"))
		s.WriteString("\n")
	}
	field("Author", si.Story.Author)
	field("Category", si.Category)
	field("Added", si.Story.CreatedAt.Local().Format("2006-01-02"))
	s.WriteString("\n")

	s.WriteString(StyleCount.Render(fmt.Sprintf("%d views  ♥ %d  ✗ %d  ↓ %d",
		si.Story.Views, si.Story.Likes, si.Story.Dislikes, si.Story.Downloads)))
	s.WriteString("\n\n")

	if si.Story.Description != "" {
		s.WriteString(xansi.Wordwrap(si.Story.Description, width-2, " "))
		s.WriteString("\n\n")
	}

	if n := len(si.Story.Comments); n > 0 {
		s.WriteString(StyleHighlight.Render(fmt.Sprintf("Comments (%d)", n)))
		s.WriteString("\n")
		for _, c := range latestComments(si.Story, 3) {
			s.WriteString(StyleHelp.Render(c.User + ": "))
			s.WriteString(xansi.Truncate(c.Text, maxTextWidth, "…"))
			s.WriteString("\n")
		}
	}

	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(s.String())
}

func latestComments(st catalog.Story, n int) []catalog.Comment {
	out := st.CommentsNewestFirst()
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// browserShortcuts is the footer of the story browser.
var browserShortcuts = []ShortcutEntry{
	{Key: "", Label: "↑/↓ navigate"},
	{Key: "", Label: "/ filter"},
	{Key: "", Label: "enter read"},
	{Key: "", Label: "d download"},
	{Key: "", Label: "L like"},
	{Key: "", Label: "D dislike"},
	{Key: "tab", Label: "tab details"},
	{Key: "", Label: "q quit"},
}

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	body := m.list.View()
	if m.showDetails {
		listStyle := lipgloss.NewStyle().
			BorderRight(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(ColorTeal)
		body = lipgloss.JoinHorizontal(lipgloss.Top, listStyle.Render(body), m.renderDetailsPane())
	}
	return RenderWithFooter(body, browserShortcuts, m.activeCmd)
}
