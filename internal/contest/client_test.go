package contest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchHandler(t *testing.T, entries string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "contestEntrySearch", req.OperationName)
		assert.Equal(t, "qqf89w", req.Variables.ID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"entrySearch":` + entries + `}}`))
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "qqf89w", 5*time.Second)
}

const aliceEntry = `{"id":"e1","fantasyPoints":"100","currentPlace":3,"winnings":"50",
	"user":{"username":"Alice"},"entryStats":{"wins":1,"top5s":2,"top20s":4,"cutsMade":7}}`

func TestFindEntryExactMatchCaseInsensitive(t *testing.T) {
	c := newTestClient(t, searchHandler(t, `[
		{"id":"e0","fantasyPoints":200,"currentPlace":1,"winnings":900,
			"user":{"username":"alicesmith"},"entryStats":{"wins":0,"top5s":0,"top20s":0,"cutsMade":0}},
		`+aliceEntry+`]`))

	entry, found := c.FindEntry(context.Background(), "alice")
	require.True(t, found)
	assert.Equal(t, "Alice", entry.Username)
	assert.Equal(t, 100.0, entry.FantasyPoints)
	assert.Equal(t, 3, entry.CurrentPlace)
	assert.Equal(t, 50.0, entry.Winnings)
	assert.Equal(t, 2, entry.Stats.Top5s)
}

func TestFindEntryFallsBackToFirstCandidate(t *testing.T) {
	c := newTestClient(t, searchHandler(t, `[
		{"id":"e0","fantasyPoints":200,"currentPlace":1,"winnings":900,
			"user":{"username":"alicesmith"},"entryStats":{"wins":0,"top5s":0,"top20s":0,"cutsMade":0}},
		{"id":"e1","fantasyPoints":10,"currentPlace":40,"winnings":0,
			"user":{"username":"alicejones"},"entryStats":{"wins":0,"top5s":0,"top20s":0,"cutsMade":1}}]`))

	entry, found := c.FindEntry(context.Background(), "alice")
	require.True(t, found)
	assert.Equal(t, "alicesmith", entry.Username)
	assert.Equal(t, 200.0, entry.FantasyPoints)
}

func TestFindEntryNoCandidates(t *testing.T) {
	c := newTestClient(t, searchHandler(t, `[]`))

	entry, found := c.FindEntry(context.Background(), "nobody")
	assert.False(t, found)
	assert.Nil(t, entry)
}

func TestFindEntryServerErrorDegradesToNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, found := c.FindEntry(context.Background(), "alice")
	assert.False(t, found)
}

func TestFindEntryMalformedBodyDegradesToNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, found := c.FindEntry(context.Background(), "alice")
	assert.False(t, found)
}

func TestFindEntryTimeoutDegradesToNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "qqf89w", 50*time.Millisecond)

	_, found := c.FindEntry(context.Background(), "carol")
	assert.False(t, found)
}

func TestConcurrentLookupsCollapseToOneRequest(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"entrySearch":[` + aliceEntry + `]}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "qqf89w", 5*time.Second)

	// Casing differences still share one flight.
	names := []string{"alice", "alice", "Alice", "ALICE"}
	results := make([]bool, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			_, results[i] = c.FindEntry(context.Background(), name)
		}(i, name)
	}

	// Hold the upstream response until every lookup has joined the flight.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), hits.Load())
	for _, found := range results {
		assert.True(t, found)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"entrySearch":[]}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "qqf89w", time.Second)
	assert.Equal(t, "closed", c.BreakerState())

	for i := 0; i < breakerFailureThreshold; i++ {
		_, found := c.FindEntry(context.Background(), "alice")
		assert.False(t, found)
	}
	assert.Equal(t, "open", c.BreakerState())

	// Upstream recovers, but the breaker is open: the next lookup must not
	// reach the server and still reads as not found.
	healthy.Store(true)
	_, found := c.FindEntry(context.Background(), "alice")
	assert.False(t, found)
	assert.Equal(t, int64(breakerFailureThreshold), hits.Load())
}

func TestFlexFloatAcceptsStringsAndNumbers(t *testing.T) {
	var v struct {
		A flexFloat `json:"a"`
		B flexFloat `json:"b"`
		C flexFloat `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.5","b":7,"c":null}`), &v))
	assert.Equal(t, flexFloat(12.5), v.A)
	assert.Equal(t, flexFloat(7), v.B)
	assert.Equal(t, flexFloat(0), v.C)
}
