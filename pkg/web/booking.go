package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/napryag/laundry_pickup/pkg/domain/booking"
	"github.com/napryag/laundry_pickup/pkg/domain/booking/session"
	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/domain/mappan"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

const bookingPath = "/booking"

type stepView struct {
	Number  int
	Current bool
	Done    bool
}

type dateView struct {
	ISODate string
	Label   string
}

type serviceView struct {
	catalog.ServiceOffering
	Selected bool
}

type reviewView struct {
	EditStep int
	Lines    []string
}

type bookingPage struct {
	layoutData
	Step     int
	Steps    []stepView
	Draft    booking.Draft
	Notice   string
	Problems map[string]string

	CollectionDates        []dateView
	DeliveryDates          []dateView
	TimeSlots              []string
	CollectionInstructions []catalog.Option
	DeliveryInstructions   []catalog.Option
	Frequencies            []catalog.Option
	Services               []serviceView
	Review                 []reviewView
	Map                    mappan.State
}

func (p bookingPage) IsFirst() bool  { return p.Step == int(booking.StepAddress) }
func (p bookingPage) IsReview() bool { return p.Step == int(booking.StepReview) }

func (h *handler) dateViews(opts []booking.DateOption) []dateView {
	out := make([]dateView, 0, len(opts))
	for _, o := range opts {
		out = append(out, dateView{ISODate: o.ISODate, Label: o.Label})
	}
	return out
}

// renderBooking shows the current step of s.
func (h *handler) renderBooking(c *gin.Context, status int, s *session.Session, problems []booking.FieldError) {
	tr := h.translator(c)
	w := s.Wizard
	d := w.Draft()
	today := h.deps.Clock().In(h.deps.Location)

	page := bookingPage{
		layoutData:             h.layout(c, "booking.title"),
		Step:                   int(w.Step()),
		Draft:                  d,
		TimeSlots:              h.deps.Catalog.TimeSlots,
		CollectionInstructions: h.deps.Catalog.CollectionInstructions,
		DeliveryInstructions:   h.deps.Catalog.DeliveryInstructions,
		Frequencies:            h.deps.Catalog.Frequencies,
		Map:                    s.Map,
	}
	for _, st := range booking.Steps() {
		page.Steps = append(page.Steps, stepView{Number: int(st), Current: st == w.Step(), Done: st < w.Step()})
	}
	if len(problems) > 0 {
		page.Notice = tr.T("booking.fillRequired")
		page.Problems = make(map[string]string, len(problems))
		for _, p := range problems {
			page.Problems[string(p.Field)] = p.Message
		}
	}

	relabel := func(views []dateView) []dateView {
		for i := range views {
			switch views[i].Label {
			case booking.LabelToday:
				views[i].Label = tr.T("booking.today")
			case booking.LabelTomorrow:
				views[i].Label = tr.T("booking.tomorrow")
			}
		}
		return views
	}

	switch w.Step() {
	case booking.StepCollection:
		page.CollectionDates = relabel(h.dateViews(booking.CollectionDateOptions(today)))
	case booking.StepDelivery:
		page.DeliveryDates = relabel(h.dateViews(booking.DeliveryDateOptions(today)))
	case booking.StepServices:
		for _, svc := range h.deps.Catalog.Services {
			page.Services = append(page.Services, serviceView{ServiceOffering: svc, Selected: d.HasService(svc.ID)})
		}
	case booking.StepReview:
		sections, err := booking.Review(d, h.deps.Catalog)
		if err != nil {
			h.fail(c, err)
			return
		}
		for _, sec := range sections {
			page.Review = append(page.Review, reviewView{EditStep: int(sec.EditStep), Lines: sec.Lines})
		}
	}

	c.HTML(status, "booking", page)
}

// showBooking renders the current step. ?service= and ?item= seed the draft
// when arriving from the services or pricing pages.
func (h *handler) showBooking(c *gin.Context) {
	s := sessionFrom(c)
	if s.Wizard.Submitted() {
		c.Redirect(http.StatusFound, bookingPath+"/done")
		return
	}
	if h.seed(s.Wizard, c.Query("service"), c.Query("item")) {
		if err := h.commit(c, s); err != nil {
			h.fail(c, err)
			return
		}
		c.Redirect(http.StatusFound, bookingPath)
		return
	}
	h.renderBooking(c, http.StatusOK, s, nil)
}

// seed reports whether it changed the draft.
func (h *handler) seed(w *booking.Wizard, service, item string) bool {
	changed := false
	d := w.Draft()
	if service != "" && h.deps.Catalog.HasService(service) && !d.HasService(service) {
		if err := w.ToggleService(service); err == nil {
			changed = true
		}
	}
	if item = strings.TrimSpace(item); item != "" {
		line := "Item: " + item
		if !strings.Contains(d.DriverNote, line) {
			note := line
			if d.DriverNote != "" {
				note = d.DriverNote + "\n" + line
			}
			if err := w.Update(booking.FieldDriverNote, note); err == nil {
				changed = true
			}
		}
	}
	return changed
}

// applyForm copies the posted fields of the current step into the draft.
// Dates and times must be ones the page offered.
func (h *handler) applyForm(c *gin.Context, w *booking.Wizard) error {
	today := h.deps.Clock().In(h.deps.Location)
	for _, f := range booking.StepFields(w.Step()) {
		v, ok := c.GetPostForm(string(f))
		if !ok {
			continue
		}
		if v != "" {
			var offered bool
			switch f {
			case booking.FieldCollectionDate:
				offered = booking.Offers(booking.CollectionDateOptions(today), v)
			case booking.FieldDeliveryDate:
				offered = booking.Offers(booking.DeliveryDateOptions(today), v)
			case booking.FieldCollectionTime, booking.FieldDeliveryTime:
				offered = h.deps.Catalog.IsTimeSlot(v)
			default:
				offered = true
			}
			if !offered {
				return errs.Invalid(booking.ErrInvalidChoice.Message()).Arg("field", string(f)).Arg("value", v)
			}
		}
		if err := w.Update(f, v); err != nil {
			return err
		}
	}
	return nil
}

// mutate runs fn on the session wizard after applying the posted fields,
// commits and redirects back to the wizard.
func (h *handler) mutate(c *gin.Context, fn func(w *booking.Wizard) error) {
	s := sessionFrom(c)
	if s.Wizard.Submitted() {
		c.Redirect(http.StatusSeeOther, bookingPath+"/done")
		return
	}
	if err := h.applyForm(c, s.Wizard); err != nil {
		h.fail(c, err)
		return
	}
	if fn != nil {
		if err := fn(s.Wizard); err != nil {
			h.fail(c, err)
			return
		}
	}
	if err := h.commit(c, s); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, bookingPath)
}

func (h *handler) updateBooking(c *gin.Context) {
	h.mutate(c, nil)
}

func (h *handler) toggleService(c *gin.Context) {
	id := c.PostForm("service")
	if !h.deps.Catalog.HasService(id) {
		h.fail(c, errs.Invalid("unknown service").Arg("id", id))
		return
	}
	h.mutate(c, func(w *booking.Wizard) error { return w.ToggleService(id) })
}

// nextStep saves the posted fields and advances. An incomplete step is
// rendered again with the required-fields notice.
func (h *handler) nextStep(c *gin.Context) {
	s := sessionFrom(c)
	if s.Wizard.Submitted() {
		c.Redirect(http.StatusSeeOther, bookingPath+"/done")
		return
	}
	if err := h.applyForm(c, s.Wizard); err != nil {
		h.fail(c, err)
		return
	}
	err := s.Wizard.GoNext()
	if cerr := h.commit(c, s); cerr != nil {
		h.fail(c, cerr)
		return
	}
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, bookingPath)
	case errors.Is(err, booking.ErrStepIncomplete):
		h.renderBooking(c, http.StatusUnprocessableEntity, s, s.Wizard.StepProblems(s.Wizard.Step()))
	case errors.Is(err, booking.ErrNoNextStep):
		c.Redirect(http.StatusSeeOther, bookingPath)
	default:
		h.fail(c, err)
	}
}

// previousStep goes back one step. On the first step it leaves the wizard
// for the page the visitor came from.
func (h *handler) previousStep(c *gin.Context) {
	s := sessionFrom(c)
	if s.Wizard.Step() == booking.StepAddress && !s.Wizard.Submitted() {
		if err := h.applyForm(c, s.Wizard); err != nil {
			h.fail(c, err)
			return
		}
		if err := h.commit(c, s); err != nil {
			h.fail(c, err)
			return
		}
		c.Redirect(http.StatusSeeOther, leaveTarget(c))
		return
	}
	h.mutate(c, func(w *booking.Wizard) error { return w.GoBack() })
}

// leaveTarget is the same-site Referer, or the home page.
func leaveTarget(c *gin.Context) string {
	ref, err := url.Parse(c.GetHeader("Referer"))
	if err != nil || ref.Path == "" || strings.HasPrefix(ref.Path, bookingPath) {
		return "/"
	}
	if ref.Host != "" && ref.Host != c.Request.Host {
		return "/"
	}
	return ref.RequestURI()
}

func (h *handler) gotoStep(c *gin.Context) {
	n, err := strconv.Atoi(c.PostForm("step"))
	if err != nil {
		h.fail(c, errs.Invalid(booking.ErrUnknownStep.Message()).Wrap(err))
		return
	}
	s := sessionFrom(c)
	if s.Wizard.Submitted() {
		c.Redirect(http.StatusSeeOther, bookingPath+"/done")
		return
	}
	// review links post no fields, so nothing is applied here
	if err := s.Wizard.GoTo(booking.Step(n)); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.commit(c, s); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, bookingPath)
}

// submitBooking formats the message and moves to the success page. Nothing
// confirms the visitor actually sends the WhatsApp message.
func (h *handler) submitBooking(c *gin.Context) {
	s := sessionFrom(c)
	if s.Wizard.Submitted() {
		c.Redirect(http.StatusSeeOther, bookingPath+"/done")
		return
	}
	sub, err := s.Wizard.Submit(h.deps.Catalog, h.deps.BusinessNumber)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrStepIncomplete):
		// send the visitor to the first step that no longer validates
		for _, st := range booking.Steps() {
			if !s.Wizard.IsStepValid(st) {
				_ = s.Wizard.GoTo(st)
				break
			}
		}
		if cerr := h.commit(c, s); cerr != nil {
			h.fail(c, cerr)
			return
		}
		h.renderBooking(c, http.StatusUnprocessableEntity, s, s.Wizard.StepProblems(s.Wizard.Step()))
		return
	case errors.Is(err, booking.ErrNotAtReview):
		c.Redirect(http.StatusSeeOther, bookingPath)
		return
	default:
		h.fail(c, err)
		return
	}

	s.Link = sub.Link
	if err := h.commit(c, s); err != nil {
		h.fail(c, err)
		return
	}
	d := s.Wizard.Draft()
	h.logger.Info().
		Str("session", s.ID).
		Strs("services", d.SelectedServices).
		Str("collection", d.CollectionDate+" "+d.CollectionTime).
		Msg("booking submitted")
	h.notify(c, sub.Message)
	c.Redirect(http.StatusSeeOther, bookingPath+"/done")
}

type donePage struct {
	layoutData
	Link string
}

// bookingDone shows the success screen once and then forgets the session.
func (h *handler) bookingDone(c *gin.Context) {
	s := sessionFrom(c)
	if !s.Wizard.Submitted() {
		c.Redirect(http.StatusFound, bookingPath)
		return
	}
	h.discard(c, s)
	c.HTML(http.StatusOK, "done", donePage{
		layoutData: h.layout(c, "booking.successTitle"),
		Link:       s.Link,
	})
}
