package domain

import "context"

// EventKind identifies the type of change flowing through the relay.
type EventKind string

const (
	// EventAdd announces a newly tracked username.
	EventAdd EventKind = "add"
	// EventRemove announces an untracked username.
	EventRemove EventKind = "remove"
	// EventRefresh requests a full leaderboard re-render.
	EventRefresh EventKind = "refresh"
)

// Event is a broadcast notification about a tracked user.
// Delivery is best effort: no replay for late subscribers, FIFO per subscriber only.
type Event struct {
	Kind     EventKind
	Username string
}

// EntryStats holds the per-category counters of a contest entry.
type EntryStats struct {
	Wins     int
	Top5s    int
	Top20s   int
	CutsMade int
}

// Entry is a snapshot of a contestant's standing. It is fetched on demand
// for every render and never stored.
type Entry struct {
	ID            string
	Username      string
	FantasyPoints float64
	CurrentPlace  int
	Winnings      float64
	Stats         EntryStats
}

// EntryFinder resolves a tracked username to its contest entry.
// The second return value reports whether an entry was found; lookup
// failures are indistinguishable from a missing user.
type EntryFinder interface {
	FindEntry(ctx context.Context, username string) (*Entry, bool)
}
