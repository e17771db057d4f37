package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/pders01/roster/internal/debuglog"
	"github.com/pders01/roster/internal/presenter"
	"github.com/pders01/roster/internal/printer"
	"github.com/pders01/roster/internal/session"
	"github.com/pders01/roster/internal/users"
)

const statusTTL = 3 * time.Second

type fetchDoneMsg struct {
	outcome users.Outcome
}

// cardRevealMsg reveals card index of render generation seq. Messages from an
// older generation are ignored.
type cardRevealMsg struct {
	seq   int
	index int
}

type statusClearMsg struct {
	seq int
}

type linkOpenedMsg struct {
	link string
}

type detailRenderedMsg struct {
	id      int
	content string
}

// startRefresh begins a refresh on the update loop and returns the command
// that performs the fetch off it. A trigger that arrives while a fetch is
// outstanding only produces a status hint.
func (a *App) startRefresh(trigger session.Trigger) tea.Cmd {
	if !a.session.BeginRefresh(trigger) {
		return a.setStatus(MsgAlreadyLoading, StatusWarn)
	}

	ctx := a.ctx
	s := a.session
	fetch := func() tea.Msg {
		return fetchDoneMsg{outcome: s.Fetch(ctx)}
	}
	return tea.Batch(a.spinner.Tick, fetch)
}

func (a *App) revealNext(seq, index int) tea.Cmd {
	if index >= len(a.cards) {
		return nil
	}
	delay := a.cards[index].RevealDelay
	if index > 0 {
		delay -= a.cards[index-1].RevealDelay
	}
	msg := cardRevealMsg{seq: seq, index: index}
	if delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return msg })
}

func (a *App) reveal(msg cardRevealMsg) tea.Cmd {
	if msg.seq != a.revealSeq || msg.index >= len(a.cards) {
		return nil
	}
	if msg.index+1 > a.revealed {
		a.revealed = msg.index + 1
	}
	return a.revealNext(msg.seq, msg.index+1)
}

func (a *App) setStatus(text string, kind StatusKind) tea.Cmd {
	a.status = text
	a.statusKind = kind
	a.statusSeq++
	seq := a.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return statusClearMsg{seq: seq}
	})
}

func (a *App) openLink(link string) tea.Cmd {
	opener := a.opener
	return func() tea.Msg {
		if err := opener.Open(link); err != nil {
			debuglog.Warnf("open %s: %v", link, err)
			return errorMsg{op: "open", target: link, err: err}
		}
		return linkOpenedMsg{link: link}
	}
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	if a.glamourRenderer == nil || a.rendererWidth != wordWrapWidth {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}
	return a.glamourRenderer, nil
}

// renderDetail renders the card as markdown off the update loop. The renderer
// is resolved up front so the command touches no App state.
func (a *App) renderDetail(c presenter.Card) tea.Cmd {
	r, err := a.getRenderer()
	if err != nil {
		content := "Error initializing renderer: " + err.Error()
		return func() tea.Msg { return detailRenderedMsg{id: c.ID, content: content} }
	}
	return func() tea.Msg {
		rendered, err := r.Render(printer.CardMarkdown(c))
		if err != nil {
			rendered = "Failed to render user: " + err.Error()
		}
		return detailRenderedMsg{id: c.ID, content: rendered}
	}
}
