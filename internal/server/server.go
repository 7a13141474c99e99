// Package server exposes the stored timeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/sdo-timeline/internal/event"
	"github.com/pfrederiksen/sdo-timeline/internal/filter"
	"github.com/pfrederiksen/sdo-timeline/internal/logger"
	"github.com/pfrederiksen/sdo-timeline/internal/storage"
)

// Source provides the current timeline
type Source interface {
	LoadSnapshot() (*event.Snapshot, error)
	GetEventByID(id string) (*event.Event, error)
}

// EventsResponse is the body of GET /events
type EventsResponse struct {
	UpdatedAt string         `json:"updated_at,omitempty"`
	Filter    string         `json:"filter"`
	Count     int            `json:"count"`
	Events    []*event.Event `json:"events"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the timeline API
type Server struct {
	source Source
	log    *logger.Logger
	router *gin.Engine
}

// New creates a Server reading events from source
func New(source Source, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{source: source, log: log}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", s.health)
	r.GET("/events", s.events)
	r.GET("/events/:id", s.event)

	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.log.Debug("request", logger.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(started).String(),
		})
		logger.IncrCounter("http.requests")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) events(c *gin.Context) {
	f, err := parseQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	snapshot, err := s.source.LoadSnapshot()
	if err != nil {
		s.log.Error("loading snapshot", nil, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "timeline unavailable"})
		return
	}

	events := f.Apply(snapshot.Events)
	if events == nil {
		events = []*event.Event{}
	}

	c.JSON(http.StatusOK, EventsResponse{
		UpdatedAt: snapshot.UpdatedAt,
		Filter:    f.String(),
		Count:     len(events),
		Events:    events,
	})
}

func (s *Server) event(c *gin.Context) {
	evt, err := s.source.GetEventByID(c.Param("id"))
	switch {
	case errors.Is(err, storage.ErrEventNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "event not found"})
	case err != nil:
		s.log.Error("loading event", logger.Fields{"id": c.Param("id")}, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "timeline unavailable"})
	default:
		c.JSON(http.StatusOK, evt)
	}
}

// parseQuery builds a filter from the instrument, from, to and q parameters.
// from and to take the same periods as the command line; from is the start
// of its period and to is the end of its period.
func parseQuery(c *gin.Context) (*filter.Filter, error) {
	f := filter.NewFilter()

	instruments, err := filter.ParseInstruments(c.Query("instrument"))
	if err != nil {
		return nil, err
	}
	f.Instruments = instruments

	if from := c.Query("from"); from != "" {
		start, _, err := filter.ParsePeriod(from)
		if err != nil {
			return nil, err
		}
		f.From = &start
	}
	if to := c.Query("to"); to != "" {
		_, end, err := filter.ParsePeriod(to)
		if err != nil {
			return nil, err
		}
		f.To = &end
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, errors.New("from must be before to")
	}

	for _, q := range c.QueryArray("q") {
		if q = strings.TrimSpace(q); q != "" {
			f.Text = append(f.Text, q)
		}
	}

	return f, nil
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving timeline", logger.Fields{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
