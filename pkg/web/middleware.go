package web

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/napryag/laundry_pickup/pkg/domain/booking/session"
	"github.com/napryag/laundry_pickup/pkg/domain/i18n"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	ctxTranslator = "translator"
	ctxSession    = "session"

	langCookie    = "lang"
	sessionCookie = "booking_session"
)

// requestLogger writes one zerolog event per request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = logger.Error()
		case status >= http.StatusBadRequest:
			ev = logger.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}

func recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error().Interface("panic", rec).Str("path", c.Request.URL.Path).Msg("recovered")
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// RateLimit configures the per-IP limiter of mutating routes. A zero
// PerMinute disables limiting.
type RateLimit struct {
	PerMinute int
	Burst     int
}

const limiterIdle = 10 * time.Minute

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// rateLimiter holds one token bucket per client IP.
type rateLimiter struct {
	cfg      RateLimit
	logger   zerolog.Logger
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func newRateLimiter(cfg RateLimit, logger zerolog.Logger) *rateLimiter {
	return &rateLimiter{cfg: cfg, logger: logger, visitors: make(map[string]*visitor), now: time.Now}
}

// getLimiter returns the limiter of ip, creating one if it doesn't exist.
// Idle visitors are forgotten whenever a new one arrives.
func (l *rateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		for k, old := range l.visitors {
			if now.Sub(old.seen) > limiterIdle {
				delete(l.visitors, k)
			}
		}
		burst := l.cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		v = &visitor{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.cfg.PerMinute)), burst)}
		l.visitors[ip] = v
	}
	v.seen = now
	return v.limiter
}

func (l *rateLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.cfg.PerMinute <= 0 {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.getLimiter(ip).Allow() {
			l.logger.Warn().Str("ip", ip).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Try again later."})
			return
		}
		c.Next()
	}
}

// localize picks the language from ?lang=, the lang cookie or
// Accept-Language, in that order. An explicit choice is remembered.
func (h *handler) localize() gin.HandlerFunc {
	return func(c *gin.Context) {
		locales := h.deps.Locales
		var lang string
		if q := c.Query("lang"); q != "" && locales.Has(q) {
			lang = q
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(langCookie, lang, 365*24*60*60, "/", "", false, true)
		} else if v, err := c.Cookie(langCookie); err == nil && locales.Has(v) {
			lang = v
		} else {
			lang = locales.Match(c.GetHeader("Accept-Language"))
		}
		c.Set(ctxTranslator, locales.For(lang))
		c.Next()
	}
}

func (h *handler) translator(c *gin.Context) i18n.Translator {
	if v, ok := c.Get(ctxTranslator); ok {
		if tr, ok := v.(i18n.Translator); ok {
			return tr
		}
	}
	return h.deps.Locales.For(i18n.FallbackLang)
}

// withSession loads the booking session of the request, or starts a new one
// that is stored on the first commit.
func (h *handler) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := h.loadSession(c)
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		c.Set(ctxSession, s)
		c.Next()
	}
}

func (h *handler) loadSession(c *gin.Context) (*session.Session, error) {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		s, err := h.deps.Sessions.Load(c.Request.Context(), id)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}
	return session.New(h.deps.Clock()), nil
}

func sessionFrom(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

// commit stores s and (re)issues its cookie. Call it before writing the
// response.
func (h *handler) commit(c *gin.Context, s *session.Session) error {
	if err := h.deps.Sessions.Save(c.Request.Context(), s); err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, s.ID, int(h.deps.SessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	return nil
}

// discard deletes s and expires its cookie.
func (h *handler) discard(c *gin.Context, s *session.Session) {
	if err := h.deps.Sessions.Delete(c.Request.Context(), s.ID); err != nil {
		h.logger.Warn().Err(err).Str("session", s.ID).Msg("failed to delete session")
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
}
