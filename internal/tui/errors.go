package tui

import "fmt"

// errorMsg reports a failed side action such as opening a link. It is shown
// in the status bar and never touches the fetch error banner.
type errorMsg struct {
	op     string
	target string
	err    error
}

func (e errorMsg) Error() string {
	if e.target == "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return fmt.Sprintf("%s %s: %v", e.op, e.target, e.err)
}

func (e errorMsg) Unwrap() error { return e.err }
