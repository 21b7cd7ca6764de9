package tui

import "github.com/charmbracelet/bubbles/key"

// StandardKeys defines common key bindings used across TUI components.
type StandardKeys struct {
	Quit   key.Binding
	Select key.Binding
	Help   key.Binding
}

// NewStandardKeys creates a standard set of key bindings.
func NewStandardKeys() StandardKeys {
	return StandardKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "read"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ReaderKeys are the bindings of the page reader.
type ReaderKeys struct {
	Next    key.Binding
	Prev    key.Binding
	First   key.Binding
	Last    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Mode    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// NewReaderKeys creates the reader bindings.
func NewReaderKeys() ReaderKeys {
	std := NewStandardKeys()
	return ReaderKeys{
		Next: key.NewBinding(
			key.WithKeys("right", "l", "pgdown", " ", "n"),
			key.WithHelp("→/l", "next page"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "pgup", "p"),
			key.WithHelp("←/h", "previous page"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first page"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last page"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		Mode: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "text/image"),
		),
		Help: std.Help,
		Quit: std.Quit,
	}
}

// ShortHelp implements help.KeyMap.
func (k ReaderKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.ZoomIn, k.ZoomOut, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k ReaderKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.First, k.Last},
		{k.ZoomIn, k.ZoomOut, k.Mode},
		{k.Help, k.Quit},
	}
}

// BrowserKeys are the story browser bindings on top of the list's own.
type BrowserKeys struct {
	Read     key.Binding
	Details  key.Binding
	Like     key.Binding
	Dislike  key.Binding
	Download key.Binding
	Quit     key.Binding
}

// NewBrowserKeys creates the browser bindings.
func NewBrowserKeys() BrowserKeys {
	std := NewStandardKeys()
	return BrowserKeys{
		Read: std.Select,
		Details: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "details"),
		),
		Like: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "like"),
		),
		Dislike: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "dislike"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Quit: std.Quit,
	}
}

// ShortHelp returns the bindings shown in the list's short help.
func (k BrowserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Read, k.Download, k.Like}
}
