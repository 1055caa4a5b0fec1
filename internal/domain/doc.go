// Package domain defines the core domain types and interfaces.
//
// Events, contest entries, and the EntryFinder contract live here so the
// relay, leaderboard, and server packages share types without importing
// each other. No implementation code - just contracts.
package domain
