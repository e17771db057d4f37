// Package session drives the fetch → classify → filter → render pipeline for
// one user session.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/roster/internal/dataset"
	"github.com/pders01/roster/internal/debuglog"
	"github.com/pders01/roster/internal/presenter"
	"github.com/pders01/roster/internal/users"
)

// State is the pipeline state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRenderedSuccess
	StateRenderedError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRenderedSuccess:
		return "rendered_success"
	case StateRenderedError:
		return "rendered_error"
	default:
		return "unknown"
	}
}

// Trigger names what started a fetch.
type Trigger int

const (
	TriggerInitial Trigger = iota
	TriggerRefresh
	TriggerShortcut
)

func (t Trigger) String() string {
	switch t {
	case TriggerInitial:
		return "initial"
	case TriggerRefresh:
		return "refresh"
	case TriggerShortcut:
		return "shortcut"
	default:
		return "unknown"
	}
}

// Fetcher performs one classified fetch.
type Fetcher interface {
	FetchUsers(ctx context.Context) users.Outcome
}

type Option func(*Session)

// WithClock overrides the clock used for the last-updated timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is the explicit per-session context: it owns the fetcher, the
// dataset controller and the presenter. At most one fetch is in flight; a
// trigger that arrives while Loading is dropped.
type Session struct {
	mu         sync.Mutex
	id         string
	fetcher    Fetcher
	controller *dataset.Controller
	presenter  *presenter.Presenter
	now        func() time.Time

	state   State
	trigger Trigger
	issued  int
}

func New(fetcher Fetcher, p *presenter.Presenter, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		fetcher:    fetcher,
		controller: dataset.NewController(),
		presenter:  p,
		now:        time.Now,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BeginRefresh moves the session into Loading. It returns false, and does
// nothing, when a fetch is already outstanding.
func (s *Session) BeginRefresh(trigger Trigger) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logger(trigger)
	if s.state == StateLoading {
		log.Debugf("refresh dropped: fetch already in flight")
		return false
	}

	s.state = StateLoading
	s.trigger = trigger
	s.issued++
	s.presenter.ShowLoading(true)
	s.presenter.HideError()
	log.Infof("refresh started")
	return true
}

// Fetch runs the fetcher for a refresh begun with BeginRefresh. It touches no
// session state and may run on any goroutine.
func (s *Session) Fetch(ctx context.Context) users.Outcome {
	return s.fetcher.FetchUsers(ctx)
}

// Complete applies the outcome of the outstanding fetch. The loading
// indicator is cleared whatever the outcome. A failed fetch leaves the
// dataset exactly as it was.
func (s *Session) Complete(outcome users.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeLocked(outcome)
}

func (s *Session) completeLocked(outcome users.Outcome) {
	defer s.presenter.ShowLoading(false)

	switch outcome.Kind {
	case users.KindSuccess:
		if s.trigger != TriggerInitial {
			// a manual refresh also resets the search box
			s.controller.SetSearchTerm("")
		}
		view, count := s.controller.ApplySuccess(outcome.Records)
		s.presenter.HideError()
		s.presenter.RenderResults(view)
		s.presenter.UpdateStats(count)
		s.presenter.UpdateTimestamp(s.now())
		s.state = StateRenderedSuccess
	default:
		message := outcome.Message
		if message == "" {
			message = "An unexpected error occurred"
		}
		s.presenter.ShowError(message)
		s.state = StateRenderedError
	}
	s.logger(s.trigger).Debugf("refresh finished: %s", s.state)
}

func (s *Session) logger(trigger Trigger) *debuglog.FieldLogger {
	return debuglog.WithFields(map[string]interface{}{
		"session": s.id,
		"trigger": trigger.String(),
	})
}

// Refresh begins, fetches and completes in one call. It returns false when
// the trigger was dropped because a fetch is already in flight.
func (s *Session) Refresh(ctx context.Context, trigger Trigger) bool {
	if !s.BeginRefresh(trigger) {
		return false
	}

	outcome := users.Outcome{Kind: users.KindNetworkError, Message: "An unexpected error occurred"}
	defer func() {
		s.Complete(outcome)
	}()

	outcome = s.Fetch(ctx)
	return true
}

// SetSearchTerm refilters the resident dataset. It never waits on the network.
func (s *Session) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view, count := s.controller.SetSearchTerm(term)
	s.presenter.RenderResults(view)
	s.presenter.UpdateStats(count)
}

// Clear empties the dataset and the search term and shows an empty success
// state. An outstanding fetch still completes and is applied on arrival, so
// the session stays in Loading until then.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.Clear()
	s.presenter.ClearResults()
	s.presenter.HideError()
	s.presenter.UpdateStats(0)
	if s.state != StateLoading {
		s.state = StateRenderedSuccess
	}
}

// ID identifies the session in log lines.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FetchesIssued counts refreshes that actually started a fetch.
func (s *Session) FetchesIssued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Records returns the current filtered view.
func (s *Session) Records() []users.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.View()
}

// Total returns the size of the full dataset.
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Total()
}

func (s *Session) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.SearchTerm()
}
