package tui

import (
	"fmt"
	"time"
)

// Canonical short status messages used across the app.
const (
	MsgLoading        = "Loading users…"
	MsgAlreadyLoading = "Already refreshing…"
	MsgNoResults      = "No users found matching your search."
	MsgCleared        = "Cleared"
	MsgNoSelection    = "No user selected"
	MsgEmptyDirectory = "No users loaded yet"
)

func MsgUserCount(n int) string {
	if n == 1 {
		return "1 user"
	}
	return fmt.Sprintf("%d users", n)
}

func MsgLastUpdated(t time.Time) string {
	if t.IsZero() {
		return "Never updated"
	}
	return "Last updated: " + t.Format("15:04:05")
}

func MsgOpened(link string) string {
	return "Opened " + truncateMiddle(link, 40)
}
