// Package web serves the marketing pages and the booking wizard.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/napryag/laundry_pickup/pkg/domain/booking/session"
	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/domain/i18n"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
	"github.com/rs/zerolog"
)

// Notifier receives a copy of every submitted booking and contact message.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP layer. Notifier and Checks are
// optional.
type Deps struct {
	Catalog        *catalog.Catalog
	Locales        *i18n.Bundle
	Sessions       session.Store
	Notifier       Notifier
	Checks         map[string]Pinger
	BusinessNumber string
	Location       *time.Location
	Clock          func() time.Time
	RateLimit      RateLimit
	CORSOrigins    []string
	SessionTTL     time.Duration
}

func (d *Deps) validate() error {
	switch {
	case d.Catalog == nil:
		return errs.Invalid("catalog is required")
	case d.Locales == nil:
		return errs.Invalid("locales are required")
	case d.Sessions == nil:
		return errs.Invalid("session store is required")
	case d.BusinessNumber == "":
		return errs.Invalid("business number is required")
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.SessionTTL <= 0 {
		d.SessionTTL = session.DefaultTTL
	}
	return nil
}

// Server wraps the HTTP server setup.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

func New(addr string, logger zerolog.Logger, deps Deps) (*Server, error) {
	router, err := buildRouter(logger, deps)
	if err != nil {
		return nil, err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
	}, nil
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting http server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readyHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": name + " not reachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
