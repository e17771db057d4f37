package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/pders01/roster/internal/config"
)

// keyMap holds every binding the app reacts to. Modifier bindings are built
// from keys.modifier plus the configured letter.
type keyMap struct {
	Refresh  key.Binding
	Shortcut key.Binding
	Clear    key.Binding
	Search   key.Binding
	Open     key.Binding
	Mail     key.Binding
	Details  key.Binding
	Up       key.Binding
	Down     key.Binding
	Back     key.Binding
	Quit     key.Binding
	Help     key.Binding
}

func newKeyMap(cfg *config.Config) keyMap {
	mod := cfg.Keys.Modifier + "+"
	b := cfg.Keys.Bindings

	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys(b.Refresh),
			key.WithHelp(b.Refresh, "refresh"),
		),
		Shortcut: key.NewBinding(
			key.WithKeys(mod+b.Refresh),
			key.WithHelp(mod+b.Refresh, "refresh"),
		),
		Clear: key.NewBinding(
			key.WithKeys(mod+b.Clear),
			key.WithHelp(mod+b.Clear, "clear"),
		),
		Search: key.NewBinding(
			key.WithKeys(b.Search),
			key.WithHelp(b.Search, "search"),
		),
		Open: key.NewBinding(
			key.WithKeys(mod+b.Open),
			key.WithHelp(mod+b.Open, "website"),
		),
		Mail: key.NewBinding(
			key.WithKeys(mod+b.Mail),
			key.WithHelp(mod+b.Mail, "mail"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Back: key.NewBinding(
			key.WithKeys(b.Back),
			key.WithHelp(b.Back, "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys(b.Quit, "ctrl+c"),
			key.WithHelp(b.Quit, "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more"),
		),
	}
}

// bindingList adapts a flat slice of bindings to help.KeyMap.
type bindingList []key.Binding

func (l bindingList) ShortHelp() []key.Binding { return l }

func (l bindingList) FullHelp() [][]key.Binding {
	const perColumn = 4
	var cols [][]key.Binding
	for i := 0; i < len(l); i += perColumn {
		end := i + perColumn
		if end > len(l) {
			end = len(l)
		}
		cols = append(cols, l[i:end])
	}
	return cols
}
