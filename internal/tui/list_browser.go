package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// BrowserAction represents an action requested from the browser
type BrowserAction string

// Browser actions.
const (
	ActionNone     BrowserAction = ""
	ActionRead     BrowserAction = "read"
	ActionLike     BrowserAction = "like"
	ActionDislike  BrowserAction = "dislike"
	ActionDownload BrowserAction = "download"
)

// BrowserResult holds the result of a browser session
type BrowserResult struct {
	Action BrowserAction
	Item   *StoryItem
	// Index is the cursor position, so a caller looping over the browser
	// can reopen it where the user left off.
	Index int
}

// BrowserModel holds the state for the story browser
type BrowserModel struct {
	list        list.Model
	keys        BrowserKeys
	width       int
	height      int
	showDetails bool
	protocol    TerminalImageProtocol
	activeCmd   string
	quitting    bool
	action      BrowserAction
	selected    *StoryItem
}

// NewBrowserModel builds a browser over stories with the cursor at index.
func NewBrowserModel(title string, stories []StoryItem, index int, protocol TerminalImageProtocol) BrowserModel {
	items := make([]list.Item, len(stories))
	for i, s := range stories {
		items[i] = s
	}

	k := NewBrowserKeys()
	l := list.New(items, storyDelegate{}, 0, 0)
	l.Title = title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = StyleHeader
	l.Styles.PaginationStyle = StyleHelp
	l.Styles.HelpStyle = StyleHelp
	l.AdditionalShortHelpKeys = k.ShortHelp
	if index > 0 && index < len(items) {
		l.Select(index)
	}

	return BrowserModel{list: l, keys: k, protocol: protocol}
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't handle keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Details):
			m.showDetails = !m.showDetails
			m.activeCmd = "tab"
			m.resize()
			return m, HighlightCmd()
		case key.Matches(msg, m.keys.Read):
			return m.choose(ActionRead)
		case key.Matches(msg, m.keys.Like):
			return m.choose(ActionLike)
		case key.Matches(msg, m.keys.Dislike):
			return m.choose(ActionDislike)
		case key.Matches(msg, m.keys.Download):
			return m.choose(ActionDownload)
		}

	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) choose(action BrowserAction) (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(StoryItem)
	if !ok {
		return m, nil
	}
	m.action = action
	m.selected = &item
	m.quitting = true
	return m, tea.Quit
}

// resize fits the list into the space left by the frame, footer and, when
// shown, the details pane.
func (m *BrowserModel) resize() {
	if m.width == 0 {
		return
	}
	h, v := StyleBorder.GetFrameSize()
	w := m.width - h
	if m.showDetails {
		w -= m.detailsWidth() + 1
	}
	m.list.SetSize(max(w, 20), max(m.height-v-2, 5))
}

// RunStoryBrowser launches the interactive story browser with the cursor at
// index. It returns the action the user picked and the story it applies to.
func RunStoryBrowser(title string, stories []StoryItem, index int, protocol TerminalImageProtocol) (*BrowserResult, error) {
	if len(stories) == 0 {
		return nil, fmt.Errorf("no stories to display")
	}

	p := tea.NewProgram(NewBrowserModel(title, stories, index, protocol), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running TUI: %w", err)
	}
	fmt.Print(ClearInlineImages(protocol))

	if fm, ok := finalModel.(BrowserModel); ok {
		return &BrowserResult{
			Action: fm.action,
			Item:   fm.selected,
			Index:  fm.list.Index(),
		}, nil
	}
	return &BrowserResult{Action: ActionNone}, nil
}
