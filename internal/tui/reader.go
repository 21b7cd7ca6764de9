package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/blackwell-systems/storyshelf/internal/viewer"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// ReaderOptions configure a reading session.
type ReaderOptions struct {
	Title    string
	Data     []byte
	Protocol TerminalImageProtocol
}

// pageMsg carries one finished page. Messages whose seq is not the latest
// request are dropped.
type pageMsg struct {
	seq   int
	page  int
	scale float64
	image string
	text  string
	note  string
	err   error
}

// ReaderModel pages through one story. In image mode pages are rasterized
// by the viewer and drawn with the terminal's inline image protocol; in
// text mode the page's text layer is shown instead.
type ReaderModel struct {
	ctx      context.Context
	viewer   *viewer.Viewer
	data     []byte
	title    string
	protocol TerminalImageProtocol

	keys ReaderKeys
	help help.Model

	width, height int
	page, count   int
	scale         float64
	textMode      bool

	seq     int
	loading bool
	body    string
	note    string
	err     error

	activeCmd string
	quitting  bool
}

// NewReaderModel opens opts.Data in v and positions the reader on page one
// at the viewer's default zoom. Without an image protocol the reader starts
// in text mode.
func NewReaderModel(ctx context.Context, v *viewer.Viewer, opts ReaderOptions) (ReaderModel, error) {
	count, err := v.Open(opts.Data)
	if err != nil {
		return ReaderModel{}, err
	}
	return ReaderModel{
		ctx:      ctx,
		viewer:   v,
		data:     opts.Data,
		title:    opts.Title,
		protocol: opts.Protocol,
		keys:     NewReaderKeys(),
		help:     help.New(),
		page:     v.Page(),
		count:    count,
		scale:    v.Scale(),
		textMode: opts.Protocol == ProtocolNone,
		seq:      1,
		loading:  true,
	}, nil
}

// Page returns the page the reader is on.
func (m ReaderModel) Page() int { return m.page }

// Scale returns the current zoom.
func (m ReaderModel) Scale() float64 { return m.scale }

// TextMode reports whether pages are shown as text.
func (m ReaderModel) TextMode() bool { return m.textMode }

func (m ReaderModel) Init() tea.Cmd {
	return m.fetch()
}

// request records a new target page and scale and returns the command that
// renders it.
func (m *ReaderModel) request(page int, scale float64) tea.Cmd {
	page = viewer.ClampPage(page, m.count)
	scale = viewer.ClampZoom(scale)
	if page == m.page && scale == m.scale && m.body != "" {
		return nil
	}
	m.page, m.scale = page, scale
	return m.load()
}

// load starts a new request, superseding any still in flight.
func (m *ReaderModel) load() tea.Cmd {
	m.seq++
	m.loading = true
	return m.fetch()
}

// fetch renders the current page for the current request.
func (m ReaderModel) fetch() tea.Cmd {
	seq, page, scale := m.seq, m.page, m.scale
	if m.textMode {
		data := m.data
		return func() tea.Msg {
			return textPage(seq, data, page, scale, "")
		}
	}
	ctx, v, data, protocol := m.ctx, m.viewer, m.data, m.protocol
	return func() tea.Msg {
		return imagePage(ctx, v, data, protocol, seq, page, scale)
	}
}

func imagePage(ctx context.Context, v *viewer.Viewer, data []byte, protocol TerminalImageProtocol, seq, page int, scale float64) tea.Msg {
	f, err := v.Render(ctx, page, scale)
	if errors.Is(err, viewer.ErrSuperseded) {
		return nil
	}
	if errors.Is(err, pdfrender.ErrRendererUnavailable) {
		return textPage(seq, data, page, scale, "renderer unavailable, showing text")
	}
	if err != nil {
		return pageMsg{seq: seq, page: page, scale: scale, err: err}
	}
	img, err := v.Snapshot(f)
	if err != nil {
		return nil
	}
	encoded, err := EncodePNG(img)
	if err != nil {
		return pageMsg{seq: seq, page: f.Page, scale: f.Scale, err: err}
	}
	return pageMsg{
		seq:   seq,
		page:  f.Page,
		scale: f.Scale,
		image: ClearInlineImages(protocol) + RenderInlineImageBytes(encoded, protocol),
	}
}

func textPage(seq int, data []byte, page int, scale float64, note string) pageMsg {
	text, err := pdfrender.PageText(data, page)
	if err != nil {
		return pageMsg{seq: seq, page: page, scale: scale, err: err}
	}
	text = pdfrender.SanitizeForTerminal(text)
	if strings.TrimSpace(text) == "" {
		text = "(this page has no text layer)"
	}
	return pageMsg{seq: seq, page: page, scale: scale, text: text, note: note}
}

func (m ReaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.note = msg.note
		if msg.err != nil {
			return m, nil
		}
		if msg.image != "" {
			m.body = msg.image
		} else {
			m.body = msg.text
		}
		return m, nil

	case ClearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m ReaderModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.activeCmd = "next"
		cmd = m.request(m.page+1, m.scale)
	case key.Matches(msg, m.keys.Prev):
		m.activeCmd = "prev"
		cmd = m.request(m.page-1, m.scale)
	case key.Matches(msg, m.keys.First):
		cmd = m.request(1, m.scale)
	case key.Matches(msg, m.keys.Last):
		cmd = m.request(m.count, m.scale)
	case key.Matches(msg, m.keys.ZoomIn):
		m.activeCmd = "zoom"
		cmd = m.request(m.page, m.scale+viewer.ZoomStep)
	case key.Matches(msg, m.keys.ZoomOut):
		m.activeCmd = "zoom"
		cmd = m.request(m.page, m.scale-viewer.ZoomStep)
	case key.Matches(msg, m.keys.Mode):
		if m.protocol == ProtocolNone {
			return m, nil
		}
		m.textMode = !m.textMode
		m.body = ""
		cmd = m.load()
	default:
		return m, nil
	}
	if m.activeCmd != "" {
		return m, tea.Batch(cmd, HighlightCmd())
	}
	return m, cmd
}

func (m ReaderModel) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = 80
	}

	status := fmt.Sprintf("page %d/%d · zoom %.0f%%", m.page, m.count, m.scale*100)
	if m.textMode {
		status += " · text"
	}
	if m.loading {
		status += " · rendering…"
	}
	titleWidth := max(width-xansi.StringWidth(status)-3, 8)
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		StyleHeader.Render(xansi.Truncate(m.title, titleWidth, "…")),
		"   ",
		StyleHelp.Render(status),
	)

	var body string
	switch {
	case m.err != nil:
		body = StyleError.Render(m.err.Error())
	case m.textMode || m.protocol == ProtocolNone || m.note != "":
		body = m.renderText(width)
	default:
		body = m.body
	}

	parts := []string{header, ""}
	if m.note != "" {
		parts = append(parts, StyleHelp.Render(m.note))
	}
	parts = append(parts, body, "", m.renderFooter(), m.help.View(m.keys))
	return strings.Join(parts, "\n")
}

// renderText wraps the page text to the window and trims it to the rows
// left after the header and footer.
func (m ReaderModel) renderText(width int) string {
	text := xansi.Wordwrap(m.body, max(width-2, 20), " -")
	if m.height <= 0 {
		return text
	}
	rows := max(m.height-6, 3)
	lines := strings.Split(text, "\n")
	if len(lines) > rows {
		lines = append(lines[:rows-1], StyleHelp.Render("…"))
	}
	return strings.Join(lines, "\n")
}

func (m ReaderModel) renderFooter() string {
	return RenderFooterBar([]ShortcutEntry{
		{Key: "prev", Label: "← prev"},
		{Key: "next", Label: "→ next"},
		{Key: "zoom", Label: "+/- zoom"},
		{Key: "", Label: "t text"},
		{Key: "", Label: "q quit"},
	}, m.activeCmd)
}

// RunReader opens a story in v and runs the reader until the user quits.
// An unreadable document is reported before any screen is drawn.
func RunReader(ctx context.Context, v *viewer.Viewer, opts ReaderOptions) error {
	m, err := NewReaderModel(ctx, v, opts)
	if err != nil {
		return err
	}
	defer v.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running reader: %w", err)
	}
	fmt.Print(ClearInlineImages(opts.Protocol))
	return nil
}
