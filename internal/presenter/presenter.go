// Package presenter projects pipeline state onto an abstract View. It holds no
// business logic and no reference to a concrete rendering technology.
package presenter

import (
	"time"

	"github.com/pders01/roster/internal/users"
)

// View is the rendering capability the pipeline drives. The TUI and the
// non-interactive printer both implement it.
type View interface {
	// SetLoading toggles the loading indicator; refresh is disabled while active.
	SetLoading(active bool)
	RenderCards(cards []Card)
	ShowNoResults(visible bool)
	ShowError(message string)
	HideError()
	SetCount(n int)
	SetLastUpdated(t time.Time)
}

const DefaultRevealStagger = 100 * time.Millisecond

type Presenter struct {
	view    View
	stagger time.Duration
}

func New(view View, stagger time.Duration) *Presenter {
	if stagger <= 0 {
		stagger = DefaultRevealStagger
	}
	return &Presenter{view: view, stagger: stagger}
}

func (p *Presenter) ShowLoading(active bool) {
	p.view.SetLoading(active)
}

// RenderResults renders one card per record, or the "no results" state when
// the view is empty.
func (p *Presenter) RenderResults(records []users.Record) {
	if len(records) == 0 {
		p.view.RenderCards([]Card{})
		p.view.ShowNoResults(true)
		return
	}

	p.view.ShowNoResults(false)
	p.view.RenderCards(Cards(records, p.stagger))
}

// ClearResults empties the card area without showing "no results".
func (p *Presenter) ClearResults() {
	p.view.RenderCards([]Card{})
	p.view.ShowNoResults(false)
}

func (p *Presenter) ShowError(message string) {
	p.view.ShowError(message)
}

func (p *Presenter) HideError() {
	p.view.HideError()
}

func (p *Presenter) UpdateStats(count int) {
	p.view.SetCount(count)
}

// UpdateTimestamp displays now as the last successful fetch time. The caller
// supplies the clock.
func (p *Presenter) UpdateTimestamp(now time.Time) {
	p.view.SetLastUpdated(now)
}

// Cards projects records in order with a staggered reveal.
func Cards(records []users.Record, stagger time.Duration) []Card {
	cards := make([]Card, len(records))
	for i, r := range records {
		cards[i] = NewCard(r, i, stagger)
	}
	return cards
}
