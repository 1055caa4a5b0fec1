package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deufel/golftracker/internal/domain"
	"github.com/deufel/golftracker/internal/roster"
)

// addSignals is the datastar signal payload sent by the add form.
type addSignals struct {
	NewUser string `json:"newUser"`
}

func (s *Server) handleHome(c echo.Context) error {
	page, err := s.renderPage(c.Request().Context())
	if err != nil {
		slog.Error("Failed to render home page", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	return c.HTML(http.StatusOK, page)
}

// handleSubscribe opens the long-lived push stream. The current leaderboard
// is sent immediately; after that the connection is a passive listener that
// translates relay events into patches until the client goes away.
func (s *Server) handleSubscribe(c echo.Context) error {
	sub, err := s.hub.Subscribe()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable)
	}
	defer sub.Close()

	ctx := c.Request().Context()
	stream := newEventStream(c.Response())

	view, err := s.renderTracker(ctx)
	if err != nil {
		slog.Error("Failed to render tracker view", "error", err)
		return nil
	}
	if err := stream.patchElements(view); err != nil {
		return nil
	}

	ticker := s.clock.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected; just drop the subscription.
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := s.streamEvent(ctx, stream, event); err != nil {
				return nil
			}
		case <-ticker.Chan():
			if err := stream.keepalive(); err != nil {
				return nil
			}
		}
	}
}

func (s *Server) streamEvent(ctx context.Context, stream *eventStream, event domain.Event) error {
	switch event.Kind {
	case domain.EventAdd:
		// Optimistic: show a loading placeholder right away. The row fetches
		// its own authoritative data once the browser mounts it.
		row, err := s.renderLoadingRow(event.Username)
		if err != nil {
			return err
		}
		return stream.appendElements("#leaderboard-body", row)
	default:
		// remove and refresh both re-render the whole leaderboard; removal
		// is rare and cheap enough to recompute fully.
		view, err := s.renderTracker(ctx)
		if err != nil {
			return err
		}
		return stream.patchElements(view)
	}
}

// handleAdd tracks a new username. Empty or already-tracked names are
// silently ignored; the response never carries a body either way. The visual
// update reaches every viewer, the caller included, through the push stream.
func (s *Server) handleAdd(c echo.Context) error {
	var signals addSignals
	if err := c.Bind(&signals); err != nil {
		return c.NoContent(http.StatusNoContent)
	}

	username := strings.TrimSpace(signals.NewUser)
	if username != "" && s.roster.Add(username) {
		slog.Info("User added", "username", roster.Normalize(username))
		s.hub.Publish(domain.EventAdd, username)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleRemove untracks a username unconditionally. The requesting
// connection gets a direct row-removal patch; everyone else re-renders via
// the broadcast.
func (s *Server) handleRemove(c echo.Context) error {
	username := roster.Normalize(c.QueryParam("user"))
	s.roster.Remove(username)
	slog.Info("User removed", "username", username)

	stream := newEventStream(c.Response())
	if username != "" {
		if err := stream.removeElement("#row-" + username); err != nil {
			return nil
		}
	}

	s.hub.Publish(domain.EventRemove, username)
	return nil
}

// handleFetchUser asks for an authoritative refresh of a tracked username.
// Unknown names are acknowledged without publishing.
func (s *Server) handleFetchUser(c echo.Context) error {
	username := roster.Normalize(c.QueryParam("user"))
	if !s.roster.Contains(username) {
		return c.NoContent(http.StatusNoContent)
	}

	slog.Debug("Refresh requested", "username", username)
	s.hub.Publish(domain.EventRefresh, username)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := s.clock.Since(s.startTime).Seconds()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

// breakerReporter is implemented by finders that sit behind a circuit
// breaker; stubs without one simply omit the field from readiness.
type breakerReporter interface {
	BreakerState() string
}

func (s *Server) handleReadiness(c echo.Context) error {
	body := map[string]any{
		"status":        "ready",
		"tracked_users": s.roster.Len(),
	}
	// An open breaker degrades lookups to "not found" rather than making the
	// service unready, so the state is reported but never fails readiness.
	if reporter, ok := s.finder.(breakerReporter); ok {
		body["upstream_breaker"] = reporter.BreakerState()
	}
	return c.JSON(http.StatusOK, body)
}
