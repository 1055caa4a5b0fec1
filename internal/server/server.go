package server

import (
	"context"
	"fmt"
	"html/template"
	"net"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/deufel/golftracker/internal/config"
	"github.com/deufel/golftracker/internal/domain"
	"github.com/deufel/golftracker/internal/relay"
	"github.com/deufel/golftracker/web"
)

// rosterService is the tracked-user set as the handlers need it.
type rosterService interface {
	Add(username string) bool
	Remove(username string) bool
	Contains(username string) bool
	All() []string
	Len() int
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	roster    rosterService
	finder    domain.EntryFinder
	hub       *relay.Hub
	clock     clockwork.Clock
	templates *template.Template
	startTime time.Time
}

func NewServer(cfg *config.Config, roster rosterService, finder domain.EntryFinder, hub *relay.Hub, clock clockwork.Clock) (*Server, error) {
	// Parse templates once at startup
	templates, err := template.ParseFS(web.TemplateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		roster:    roster,
		finder:    finder,
		hub:       hub,
		clock:     clock,
		templates: templates,
		startTime: clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	return s.echo.Start(net.JoinHostPort(s.config.Host, s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
