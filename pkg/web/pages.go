package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/domain/i18n"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

// layoutData is embedded by every page model.
type layoutData struct {
	Tr        i18n.Translator
	Lang      string
	Dir       i18n.Dir
	Languages []i18n.Dictionary
	Path      string
	TitleKey  string
}

func (h *handler) layout(c *gin.Context, titleKey string) layoutData {
	tr := h.translator(c)
	return layoutData{
		Tr:        tr,
		Lang:      tr.Lang(),
		Dir:       tr.Dir(),
		Languages: h.deps.Locales.Languages(),
		Path:      c.Request.URL.Path,
		TitleKey:  titleKey,
	}
}

type homePage struct {
	layoutData
	Services     []catalog.ServiceOffering
	Testimonials []catalog.Testimonial
}

func (h *handler) home(c *gin.Context) {
	c.HTML(http.StatusOK, "home", homePage{
		layoutData:   h.layout(c, "nav.home"),
		Services:     h.deps.Catalog.Services,
		Testimonials: h.deps.Catalog.Testimonials,
	})
}

func (h *handler) about(c *gin.Context) {
	c.HTML(http.StatusOK, "about", h.layout(c, "about.title"))
}

type servicesPage struct {
	layoutData
	Services []catalog.ServiceOffering
}

func (h *handler) services(c *gin.Context) {
	c.HTML(http.StatusOK, "services", servicesPage{
		layoutData: h.layout(c, "services.title"),
		Services:   h.deps.Catalog.Services,
	})
}

type pricingPage struct {
	layoutData
	Query      string
	Categories []catalog.PricingCategory
}

func (h *handler) pricing(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	c.HTML(http.StatusOK, "pricing", pricingPage{
		layoutData: h.layout(c, "pricing.title"),
		Query:      q,
		Categories: h.deps.Catalog.SearchPricing(q),
	})
}

type contactForm struct {
	Name    string `form:"name" validate:"required,min=2,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Phone   string `form:"phone" validate:"required,min=6,max=20"`
	Message string `form:"message" validate:"required,max=2000"`
}

type contactPage struct {
	layoutData
	Sent     bool
	Form     contactForm
	Problems map[string]string
}

func (h *handler) contact(c *gin.Context) {
	c.HTML(http.StatusOK, "contact", contactPage{
		layoutData: h.layout(c, "contact.title"),
		Sent:       c.Query("sent") == "1",
	})
}

func (h *handler) sendContact(c *gin.Context) {
	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, errs.Invalid("malformed contact form").Wrap(err))
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Message = strings.TrimSpace(form.Message)

	if err := h.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.fail(c, err)
			return
		}
		tr := h.translator(c)
		problems := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			problems[strings.ToLower(fe.Field())] = tr.T("contact.invalid")
		}
		c.HTML(http.StatusUnprocessableEntity, "contact", contactPage{
			layoutData: h.layout(c, "contact.title"),
			Form:       form,
			Problems:   problems,
		})
		return
	}

	h.logger.Info().Str("name", form.Name).Str("email", form.Email).Str("phone", form.Phone).Msg("contact message received")
	h.notify(c, fmt.Sprintf("📩 *Contact form*\nName: %s\nEmail: %s\nPhone: %s\n\n%s", form.Name, form.Email, form.Phone, form.Message))
	c.Redirect(http.StatusSeeOther, "/contact?sent=1")
}

// notify hands text to the staff notifier, if any, detached from the request.
func (h *handler) notify(c *gin.Context, text string) {
	if h.deps.Notifier == nil {
		return
	}
	h.deps.Notifier.Notify(context.WithoutCancel(c.Request.Context()), text)
}

type errorPage struct {
	layoutData
	Status     int
	MessageKey string
}

func (h *handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error", errorPage{
		layoutData: h.layout(c, "error.title"),
		Status:     http.StatusNotFound,
		MessageKey: "error.notFound",
	})
}

// fail maps err to a status by its kind and renders the error page.
func (h *handler) fail(c *gin.Context, err error) {
	status, key := http.StatusInternalServerError, "error.generic"
	switch errs.KindOf(err) {
	case errs.KindInvalid:
		status, key = http.StatusBadRequest, "error.badRequest"
	case errs.KindNotFound:
		status, key = http.StatusNotFound, "error.notFound"
	case errs.KindState:
		status, key = http.StatusConflict, "error.badRequest"
	}

	ev := h.logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = h.logger.Error()
	}
	ev.Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("request failed")

	c.HTML(status, "error", errorPage{
		layoutData: h.layout(c, "error.title"),
		Status:     status,
		MessageKey: key,
	})
}
