// Package dataset owns the canonical user list and the active search term and
// derives the filtered view from them.
package dataset

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/pders01/roster/internal/users"
)

// Controller holds the last successfully fetched records and the current
// search term. The filtered view is recomputed whenever either changes.
type Controller struct {
	records []users.Record
	term    string
	folded  string
	view    []users.Record
}

func NewController() *Controller {
	return &Controller{
		records: []users.Record{},
		view:    []users.Record{},
	}
}

// ApplySuccess replaces the dataset wholesale and refilters it against the
// current term.
func (c *Controller) ApplySuccess(records []users.Record) ([]users.Record, int) {
	next := make([]users.Record, len(records))
	copy(next, records)
	c.records = next
	c.refilter()
	return c.View(), len(c.view)
}

// SetSearchTerm stores term as typed and refilters. Matching uses Unicode
// case folding, so "STRASSE" finds "Straße".
func (c *Controller) SetSearchTerm(term string) ([]users.Record, int) {
	c.term = term
	c.folded = Fold(term)
	c.refilter()
	return c.View(), len(c.view)
}

// Clear empties both the dataset and the search term.
func (c *Controller) Clear() {
	c.records = []users.Record{}
	c.term = ""
	c.folded = ""
	c.view = []users.Record{}
}

// RecordCount is the length of the filtered view, not of the dataset.
func (c *Controller) RecordCount() int { return len(c.view) }

// Total is the length of the full dataset.
func (c *Controller) Total() int { return len(c.records) }

func (c *Controller) SearchTerm() string { return c.term }

// View returns a copy of the current filtered view.
func (c *Controller) View() []users.Record {
	out := make([]users.Record, len(c.view))
	copy(out, c.view)
	return out
}

func (c *Controller) refilter() {
	view := make([]users.Record, 0, len(c.records))
	for _, r := range c.records {
		if Matches(r, c.folded) {
			view = append(view, r)
		}
	}
	c.view = view
}

// Fold case-folds s for comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Matches reports whether foldedTerm (already passed through Fold) is a
// substring of the record's name, email, username or company name. The empty
// term matches every record.
func Matches(r users.Record, foldedTerm string) bool {
	if foldedTerm == "" {
		return true
	}
	for _, field := range [...]string{r.Name, r.Email, r.Username, r.Company.Name} {
		if strings.Contains(Fold(field), foldedTerm) {
			return true
		}
	}
	return false
}
