package relay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/deufel/golftracker/internal/domain"
	"github.com/deufel/golftracker/internal/metrics"
)

const (
	commandTimeout  = 5 * time.Second
	stopTimeout     = 10 * time.Second
	cmdBufferSize   = 256
	eventBufferSize = 16
)

// ErrStopped is returned by Subscribe after the hub has shut down.
var ErrStopped = errors.New("relay: hub stopped")

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdSubscribe struct {
	replyCh chan *Subscription
}

func (cmdSubscribe) hubCmd() {}

type cmdUnsubscribe struct {
	id uuid.UUID
}

func (cmdUnsubscribe) hubCmd() {}

type cmdPublish struct {
	event domain.Event
}

func (cmdPublish) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Subscription ---

// Subscription is one live listener on the hub. Events arrives on a buffered
// channel; the hub closes the channel when the subscription ends, whether by
// Close, by Stop, or by being dropped for not keeping up.
type Subscription struct {
	id     uuid.UUID
	events chan domain.Event
	hub    *Hub
	once   sync.Once
}

// Events returns the channel the hub delivers on. It is closed when the
// subscription terminates.
func (s *Subscription) Events() <-chan domain.Event {
	return s.events
}

// Close unregisters the subscription. Safe to call more than once and after
// the hub has already dropped or stopped it.
func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.hub.cmdCh <- cmdUnsubscribe{id: s.id}:
		case <-s.hub.done:
		}
	})
}

// --- Hub ---

// Hub fans out events to all live subscriptions. A single goroutine owns the
// subscriber registry; all mutation flows through the command channel, so no
// locking is needed. Delivery is best effort: a subscriber whose queue is
// full is dropped without affecting delivery to the rest, and there is no
// backlog for late subscribers.
type Hub struct {
	cmdCh       chan hubCmd
	clock       clockwork.Clock
	subscribers map[uuid.UUID]*Subscription
	done        chan struct{}
}

// NewHub creates the hub and starts its goroutine.
func NewHub(clock clockwork.Clock) *Hub {
	h := &Hub{
		cmdCh:       make(chan hubCmd, cmdBufferSize),
		clock:       clock,
		subscribers: make(map[uuid.UUID]*Subscription),
		done:        make(chan struct{}),
	}
	go h.run()
	return h
}

// Subscribe registers a new listener and returns its subscription.
func (h *Hub) Subscribe() (*Subscription, error) {
	replyCh := make(chan *Subscription, 1)

	select {
	case h.cmdCh <- cmdSubscribe{replyCh: replyCh}:
	case <-h.done:
		return nil, ErrStopped
	}

	// Timeout guards against a stuck hub, mirroring the command pattern
	// rather than trusting an unbounded receive.
	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case sub := <-replyCh:
		return sub, nil
	case <-h.done:
		return nil, ErrStopped
	case <-timer.Chan():
		return nil, fmt.Errorf("subscribe timed out after %v", commandTimeout)
	}
}

// Publish delivers an event to every currently subscribed listener.
// Publishing with no subscribers is a no-op; nothing is retained for
// listeners that subscribe later.
func (h *Hub) Publish(kind domain.EventKind, username string) {
	select {
	case h.cmdCh <- cmdPublish{event: domain.Event{Kind: kind, Username: username}}:
	case <-h.done:
	}
}

// Stop shuts the hub down, closing every subscription channel. Blocks until
// the hub goroutine has exited or the stop timeout is reached.
func (h *Hub) Stop() {
	select {
	case h.cmdCh <- cmdStop{}:
	case <-h.done:
		return
	}

	timer := h.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Relay stopped")
	case <-timer.Chan():
		slog.Warn("Relay stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (h *Hub) run() {
	defer close(h.done)

	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdSubscribe:
			h.handleSubscribe(c)
		case cmdUnsubscribe:
			h.drop(c.id)
		case cmdPublish:
			h.handlePublish(c.event)
		case cmdStop:
			h.handleStop()
			return
		default:
			slog.Warn("Relay received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
		}
	}
}

func (h *Hub) handleSubscribe(c cmdSubscribe) {
	sub := &Subscription{
		id:     uuid.New(),
		events: make(chan domain.Event, eventBufferSize),
		hub:    h,
	}
	h.subscribers[sub.id] = sub
	metrics.RelayActiveSubscribers.Set(float64(len(h.subscribers)))
	slog.Debug("Subscriber registered", "subscriber_id", sub.id.String(), "total", len(h.subscribers))
	c.replyCh <- sub
}

func (h *Hub) handlePublish(event domain.Event) {
	metrics.RelayEventsPublishedTotal.WithLabelValues(string(event.Kind)).Inc()

	var slow []uuid.UUID
	for id, sub := range h.subscribers {
		select {
		case sub.events <- event:
		default:
			slow = append(slow, id)
		}
	}

	for _, id := range slow {
		slog.Warn("Dropping subscriber that cannot keep up", "subscriber_id", id.String())
		metrics.RelayDroppedSubscribersTotal.Inc()
		h.drop(id)
	}
}

func (h *Hub) drop(id uuid.UUID) {
	sub, exists := h.subscribers[id]
	if !exists {
		return
	}
	close(sub.events)
	delete(h.subscribers, id)
	metrics.RelayActiveSubscribers.Set(float64(len(h.subscribers)))
	slog.Debug("Subscriber unregistered", "subscriber_id", id.String(), "remaining", len(h.subscribers))
}

func (h *Hub) handleStop() {
	slog.Info("Relay shutting down", "subscribers", len(h.subscribers))
	for id := range h.subscribers {
		h.drop(id)
	}
}
