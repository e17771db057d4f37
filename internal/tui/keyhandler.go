package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/roster/internal/debuglog"
	"github.com/pders01/roster/internal/presenter"
	"github.com/pders01/roster/internal/session"
)

// KeyHandler maps key presses to pipeline triggers and view changes using
// the bindings built from the keys config section.
type KeyHandler struct {
	app *App
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(msg); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewCards && kh.app.searchInput.Focused()
}

// handleTextInputMode lets modifier shortcuts through; plain keys go to the
// search box.
func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := kh.app.keys

	switch {
	case msg.String() == "ctrl+c":
		kh.app.Shutdown()
		return kh.app, tea.Quit
	case key.Matches(msg, k.Back), msg.String() == "enter":
		kh.app.searchInput.Blur()
		return kh.app, nil
	case msg.String() == "tab", msg.String() == "down":
		kh.app.searchInput.Blur()
		kh.app.selected = 0
		return kh.app, nil
	case key.Matches(msg, k.Shortcut, k.Clear, k.Open, k.Mail):
		model, cmd, _ := kh.handleCustomKeys(msg)
		return model, cmd
	default:
		return kh.delegateToTextInput(msg)
	}
}

func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.searchInput.Value()
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	if term := kh.app.searchInput.Value(); term != prev {
		kh.app.selected = 0
		kh.app.viewport.GotoTop()
		kh.app.session.SetSearchTerm(term)
	}
	return kh.app, cmd
}

func (kh *KeyHandler) handleCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	k := kh.app.keys

	switch {
	case key.Matches(msg, k.Quit):
		kh.app.Shutdown()
		return kh.app, tea.Quit, true
	case key.Matches(msg, k.Shortcut):
		debuglog.Debugf("key %s: refresh shortcut", msg.String())
		return kh.app, kh.app.startRefresh(session.TriggerShortcut), true
	case key.Matches(msg, k.Refresh):
		debuglog.Debugf("key %s: refresh", msg.String())
		return kh.app, kh.app.startRefresh(session.TriggerRefresh), true
	case key.Matches(msg, k.Clear):
		return kh.app, kh.app.clear(), true
	case key.Matches(msg, k.Open):
		return kh.app, kh.openSelected(func(c presenter.Card) string { return c.WebsiteLink }), true
	case key.Matches(msg, k.Mail):
		return kh.app, kh.openSelected(func(c presenter.Card) string { return c.EmailLink }), true
	case key.Matches(msg, k.Help):
		kh.app.help.ShowAll = !kh.app.help.ShowAll
		return kh.app, nil, true
	}

	switch kh.app.view {
	case ViewCards:
		return kh.handleCardsCustomKeys(msg)
	case ViewDetail:
		return kh.handleDetailCustomKeys(msg)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) handleCardsCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	k := kh.app.keys

	switch {
	case key.Matches(msg, k.Search):
		return kh.app, kh.app.searchInput.Focus(), true
	case key.Matches(msg, k.Up):
		kh.app.moveSelection(-1)
		return kh.app, nil, true
	case key.Matches(msg, k.Down):
		kh.app.moveSelection(1)
		return kh.app, nil, true
	case key.Matches(msg, k.Details):
		return kh.app, kh.app.openDetail(), true
	}
	return kh.app, nil, false
}

func (kh *KeyHandler) handleDetailCustomKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if key.Matches(msg, kh.app.keys.Back) {
		kh.app.view = ViewCards
		return kh.app, nil, true
	}
	return kh.app, nil, false
}

// delegateToCharm hands scrolling keys to the active viewport.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch kh.app.view {
	case ViewDetail:
		kh.app.detail, cmd = kh.app.detail.Update(msg)
	case ViewCards:
		kh.app.viewport, cmd = kh.app.viewport.Update(msg)
	}
	return kh.app, cmd
}

func (kh *KeyHandler) openSelected(link func(presenter.Card) string) tea.Cmd {
	c, ok := kh.app.selectedCard()
	if !ok {
		return kh.app.setStatus(MsgNoSelection, StatusWarn)
	}
	return kh.app.openLink(link(c))
}

// HelpBindings lists the bindings worth showing for the current view.
func (kh *KeyHandler) HelpBindings() bindingList {
	k := kh.app.keys

	switch {
	case kh.isInTextInputMode():
		return bindingList{k.Back, k.Shortcut, k.Clear}
	case kh.app.view == ViewDetail:
		return bindingList{k.Back, k.Open, k.Mail, k.Refresh, k.Quit}
	case len(kh.app.cards) == 0:
		return bindingList{k.Refresh, k.Search, k.Clear, k.Quit}
	default:
		return bindingList{k.Search, k.Up, k.Down, k.Details, k.Open, k.Mail, k.Refresh, k.Clear, k.Quit, k.Help}
	}
}
