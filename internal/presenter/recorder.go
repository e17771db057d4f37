package presenter

import "time"

// Recorder is an in-memory View that keeps the latest state of every element.
// It backs tests and headless runs.
type Recorder struct {
	Loading      bool
	Cards        []Card
	NoResults    bool
	ErrorVisible bool
	ErrorMessage string
	Count        int
	LastUpdated  time.Time
	Calls        []string
}

func NewRecorder() *Recorder {
	return &Recorder{Cards: []Card{}}
}

func (r *Recorder) SetLoading(active bool) {
	r.Loading = active
	r.Calls = append(r.Calls, "SetLoading")
}

func (r *Recorder) RenderCards(cards []Card) {
	r.Cards = cards
	r.Calls = append(r.Calls, "RenderCards")
}

func (r *Recorder) ShowNoResults(visible bool) {
	r.NoResults = visible
	r.Calls = append(r.Calls, "ShowNoResults")
}

func (r *Recorder) ShowError(message string) {
	r.ErrorVisible = true
	r.ErrorMessage = message
	r.Calls = append(r.Calls, "ShowError")
}

func (r *Recorder) HideError() {
	r.ErrorVisible = false
	r.Calls = append(r.Calls, "HideError")
}

func (r *Recorder) SetCount(n int) {
	r.Count = n
	r.Calls = append(r.Calls, "SetCount")
}

func (r *Recorder) SetLastUpdated(t time.Time) {
	r.LastUpdated = t
	r.Calls = append(r.Calls, "SetLastUpdated")
}
