package reader

import (
	"fmt"
	"time"
)

// maxHistory bounds the navigation history log.
const maxHistory = 10

// Entry is one visited primary-reading position.
type Entry struct {
	Book    string
	Chapter int
	At      time.Time
}

// History is a bounded log of primary-reading positions. Appends that
// repeat the last entry are dropped, so re-renders and repeated triggers
// never duplicate a position; once full, the oldest entry is evicted.
type History struct {
	entries []Entry
	now     func() time.Time
}

// NewHistory creates an empty history using the given clock.
func NewHistory(now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return &History{now: now}
}

// Record appends a position unless it equals the current last entry.
func (h *History) Record(book string, chapter int) {
	if n := len(h.entries); n > 0 {
		last := h.entries[n-1]
		if last.Book == book && last.Chapter == chapter {
			return
		}
	}
	h.entries = append(h.entries, Entry{Book: book, Chapter: chapter, At: h.now()})
	if len(h.entries) > maxHistory {
		h.entries = h.entries[len(h.entries)-maxHistory:]
	}
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns the log newest-first for display.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[len(h.entries)-1-i] = e
	}
	return out
}

// RelativeTime formats how long ago t was relative to now.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
