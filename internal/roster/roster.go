// Package roster holds the process-wide set of tracked usernames.
package roster

import (
	"sort"
	"strings"
	"sync"
)

// Roster is the set of usernames currently shown on the leaderboard.
// It is the single source of truth for who is displayed; entry data is
// always derived from it. Usernames are case-insensitive and stored
// lowercase. The zero value is not usable, use New.
type Roster struct {
	mu    sync.RWMutex
	users map[string]struct{}
}

// New creates a roster pre-populated with the given seed usernames.
func New(seed ...string) *Roster {
	r := &Roster{users: make(map[string]struct{})}
	for _, u := range seed {
		r.Add(u)
	}
	return r
}

// Normalize maps a username to its canonical roster form.
func Normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Add inserts a username and reports whether it was not already present.
// Empty names are rejected. Adding an existing name is a no-op.
func (r *Roster) Add(username string) bool {
	name := Normalize(username)
	if name == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[name]; exists {
		return false
	}
	r.users[name] = struct{}{}
	return true
}

// Remove deletes a username and reports whether it was present.
// Removing an unknown name is a no-op.
func (r *Roster) Remove(username string) bool {
	name := Normalize(username)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[name]; !exists {
		return false
	}
	delete(r.users, name)
	return true
}

// Contains reports whether a username is tracked.
func (r *Roster) Contains(username string) bool {
	name := Normalize(username)

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.users[name]
	return exists
}

// All returns a sorted copy of the tracked usernames.
func (r *Roster) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of tracked usernames.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
