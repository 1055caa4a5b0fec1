// Package contest implements the client for the fantasy-golf contest API.
//
// The upstream exposes a GraphQL endpoint with a prefix-based entry search.
// Every failure mode (timeout, transport error, bad status, malformed body,
// open circuit breaker) degrades to "not found" so the caller never has to
// surface an error state.
package contest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	"github.com/deufel/golftracker/internal/domain"
	"github.com/deufel/golftracker/internal/metrics"
)

const operationName = "contestEntrySearch"

const searchQuery = `query contestEntrySearch($id: ID!, $prefix: String!) {
  entrySearch(contestId: $id, usernamePrefix: $prefix) {
    id fantasyPoints currentPlace winnings
    user { username }
    entryStats { wins top5s top20s cutsMade }
  }
}`

const (
	breakerFailureThreshold = 5
	breakerOpenDuration     = 30 * time.Second
)

// Client queries the contest API for entry snapshots.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	contestID   string
	breaker     *gobreaker.CircuitBreaker
	searchGroup singleflight.Group
}

// NewClient creates a contest client. timeout bounds a single search so one
// slow upstream call cannot stall a render indefinitely.
func NewClient(endpoint, contestID string, timeout time.Duration) *Client {
	settings := gobreaker.Settings{
		Name:    "contest-api",
		Timeout: breakerOpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Contest API circuit breaker state changed", "from", from.String(), "to", to.String())
			metrics.UpstreamBreakerState.Set(breakerStateValue(to))
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		contestID:  contestID,
		breaker:    gobreaker.NewCircuitBreaker(settings),
	}
}

// FindEntry searches the contest for a username. Matching is a
// case-insensitive exact match on the returned username; because the
// upstream search is prefix based, the first candidate is accepted when no
// exact match exists. Returns (nil, false) for both "no such user" and any
// upstream failure; the two are deliberately indistinguishable.
//
// Uses singleflight to collapse concurrent searches for the same username:
// a broadcast makes every subscriber re-render the same roster at once, and
// without collapsing each viewer would trigger its own identical upstream
// call.
func (c *Client) FindEntry(ctx context.Context, username string) (*domain.Entry, bool) {
	result, err, _ := c.searchGroup.Do(strings.ToLower(username), func() (any, error) {
		start := time.Now()
		defer func() { metrics.LookupDuration.Observe(time.Since(start).Seconds()) }()
		return c.breaker.Execute(func() (any, error) {
			return c.search(ctx, username)
		})
	})

	if err != nil {
		metrics.LookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("Entry search degraded to not found", "username", username, "error", err)
		return nil, false
	}

	candidates := result.([]wireEntry)
	if len(candidates) == 0 {
		metrics.LookupsTotal.WithLabelValues("not_found").Inc()
		return nil, false
	}

	for _, cand := range candidates {
		if strings.EqualFold(cand.User.Username, username) {
			metrics.LookupsTotal.WithLabelValues("found").Inc()
			return cand.toDomain(), true
		}
	}

	// Prefix search returned candidates but none matched exactly.
	metrics.LookupsTotal.WithLabelValues("fallback").Inc()
	return candidates[0].toDomain(), true
}

// BreakerState reports the circuit breaker state ("closed", "half-open" or
// "open") for the readiness endpoint.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) search(ctx context.Context, username string) ([]wireEntry, error) {
	payload, err := json.Marshal(searchRequest{
		OperationName: operationName,
		Query:         searchQuery,
		Variables:     searchVariables{ID: c.contestID, Prefix: username},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entry search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("entry search returned status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return body.Data.EntrySearch, nil
}

// --- Wire types ---

type searchRequest struct {
	OperationName string          `json:"operationName"`
	Query         string          `json:"query"`
	Variables     searchVariables `json:"variables"`
}

type searchVariables struct {
	ID     string `json:"id"`
	Prefix string `json:"prefix"`
}

type searchResponse struct {
	Data struct {
		EntrySearch []wireEntry `json:"entrySearch"`
	} `json:"data"`
}

type wireEntry struct {
	ID            string    `json:"id"`
	FantasyPoints flexFloat `json:"fantasyPoints"`
	CurrentPlace  flexFloat `json:"currentPlace"`
	Winnings      flexFloat `json:"winnings"`
	User          struct {
		Username string `json:"username"`
	} `json:"user"`
	EntryStats struct {
		Wins     int `json:"wins"`
		Top5s    int `json:"top5s"`
		Top20s   int `json:"top20s"`
		CutsMade int `json:"cutsMade"`
	} `json:"entryStats"`
}

func (w wireEntry) toDomain() *domain.Entry {
	return &domain.Entry{
		ID:            w.ID,
		Username:      w.User.Username,
		FantasyPoints: float64(w.FantasyPoints),
		CurrentPlace:  int(w.CurrentPlace),
		Winnings:      float64(w.Winnings),
		Stats: domain.EntryStats{
			Wins:     w.EntryStats.Wins,
			Top5s:    w.EntryStats.Top5s,
			Top20s:   w.EntryStats.Top20s,
			CutsMade: w.EntryStats.CutsMade,
		},
	}
}

// flexFloat accepts both JSON numbers and numeric strings; the contest API
// mixes the two freely.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
