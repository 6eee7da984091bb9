package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{"home", "about", "services", "pricing", "contact", "booking", "done", "error"}

// pages renders a separate template set per page; every set shares
// layout.html and defines its own "content".
type pages map[string]*template.Template

func (p pages) Instance(name string, data any) render.Render {
	return render.HTML{Template: p[name], Name: "layout", Data: data}
}

var templateFuncs = template.FuncMap{
	"stepKey": func(n int) string { return fmt.Sprintf("booking.step%d", n) },
}

func loadPages() (pages, error) {
	layout, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	out := make(pages, len(pageNames))
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := t.ParseFS(templatesFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

type handler struct {
	logger   zerolog.Logger
	deps     Deps
	validate *validator.Validate
}

// buildRouter wires routes for the site and the JSON API.
func buildRouter(logger zerolog.Logger, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	tmpl, err := loadPages()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.HTMLRender = tmpl
	router.Use(requestLogger(logger), recovery(logger))
	// preflight requests never match a route, so cors has to sit on the engine
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	h := &handler{logger: logger, deps: deps, validate: validator.New()}
	limited := newRateLimiter(deps.RateLimit, logger).middleware()
	// map drags get their own buckets so panning never starves the wizard
	mapLimited := newRateLimiter(deps.RateLimit, logger).middleware()

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Checks))

	site := router.Group("/", h.localize())
	site.GET("/", h.home)
	site.GET("/about", h.about)
	site.GET("/services", h.services)
	site.GET("/pricing", h.pricing)
	site.GET("/contact", h.contact)
	site.POST("/contact", limited, h.sendContact)

	wizard := site.Group("/booking", h.withSession())
	wizard.GET("", h.showBooking)
	wizard.POST("/update", limited, h.updateBooking)
	wizard.POST("/toggle", limited, h.toggleService)
	wizard.POST("/next", limited, h.nextStep)
	wizard.POST("/back", limited, h.previousStep)
	wizard.POST("/goto", limited, h.gotoStep)
	wizard.POST("/submit", limited, h.submitBooking)
	wizard.GET("/done", h.bookingDone)

	api := router.Group("/api")
	api.GET("/catalog/services", h.apiServices)
	api.POST("/booking/map", mapLimited, h.withSession(), h.apiMap)

	router.NoRoute(h.localize(), h.notFound)

	return router, nil
}
