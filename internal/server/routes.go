package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Tracker UI and push stream
	s.echo.GET("/", s.handleHome)
	s.echo.GET("/subscribe", s.handleSubscribe)

	// Mutations: mutate the roster, publish, acknowledge with no body
	s.echo.GET("/fetch-user", s.handleFetchUser)
	s.echo.POST("/add", s.handleAdd)
	s.echo.POST("/remove", s.handleRemove)
}
