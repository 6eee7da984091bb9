// Package booking implements the pickup booking wizard: the draft, the step
// state machine with its validation gates, date options, the review
// projection and the WhatsApp message formatter.
package booking

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

// ---------- Steps ----------

type Step int

const (
	StepAddress Step = iota + 1
	StepCollection
	StepDelivery
	StepFrequency
	StepServices
	StepContact
	StepReview
)

// StepCount is the number of wizard screens.
const StepCount = 7

var stepNames = [...]string{"", "Address", "Collection", "Delivery", "Frequency", "Services", "Contact", "Review"}

func (s Step) Valid() bool { return s >= StepAddress && s <= StepReview }

func (s Step) String() string {
	if !s.Valid() {
		return "Unknown"
	}
	return stepNames[s]
}

// Steps lists every step in order.
func Steps() []Step {
	out := make([]Step, 0, StepCount)
	for s := StepAddress; s <= StepReview; s++ {
		out = append(out, s)
	}
	return out
}

// ---------- Fields ----------

// Field names a draft value editable through Update. The values double as
// HTML form names.
type Field string

const (
	FieldBuilding              Field = "building"
	FieldFlat                  Field = "flat"
	FieldLandmark              Field = "landmark"
	FieldArea                  Field = "area"
	FieldCollectionDate        Field = "collectionDate"
	FieldCollectionTime        Field = "collectionTime"
	FieldCollectionInstruction Field = "collectionInstruction"
	FieldDeliveryDate          Field = "deliveryDate"
	FieldDeliveryTime          Field = "deliveryTime"
	FieldDeliveryInstruction   Field = "deliveryInstruction"
	FieldDriverNote            Field = "driverNote"
	FieldFrequency             Field = "frequency"
	FieldName                  Field = "name"
	FieldPhone                 Field = "phone"
	FieldEmail                 Field = "email"
)

var stepFields = map[Step][]Field{
	StepAddress:    {FieldBuilding, FieldFlat, FieldLandmark, FieldArea},
	StepCollection: {FieldCollectionDate, FieldCollectionTime, FieldCollectionInstruction},
	StepDelivery:   {FieldDeliveryDate, FieldDeliveryTime, FieldDeliveryInstruction, FieldDriverNote},
	StepFrequency:  {FieldFrequency},
	StepContact:    {FieldName, FieldPhone, FieldEmail},
}

// StepFields returns the fields edited on step. Services are toggled, not
// updated, and Review edits nothing.
func StepFields(step Step) []Field {
	return stepFields[step]
}

// FieldError points at one field that keeps a step from validating.
type FieldError struct {
	Field   Field
	Message string
}

// ---------- Errors ----------

var (
	ErrStepIncomplete = errs.Invalid("Please fill in all required fields.")
	ErrUnknownStep    = errs.Invalid("unknown step")
	ErrUnknownField   = errs.Invalid("unknown field")
	ErrInvalidChoice  = errs.Invalid("invalid choice")
	ErrNoNextStep     = errs.New("review is the last step").WithKind(errs.KindState)
	ErrFirstStep      = errs.New("already at the first step").WithKind(errs.KindState)
	ErrSubmitted      = errs.New("booking already submitted").WithKind(errs.KindState)
	ErrNotAtReview    = errs.New("booking can only be submitted from review").WithKind(errs.KindState)
)

// ---------- Wizard ----------

// Wizard owns one draft and the step pointer. All mutations go through its
// methods so the address guard and the service set semantics hold.
type Wizard struct {
	step      Step
	submitted bool
	draft     Draft
}

func New() *Wizard {
	return &Wizard{step: StepAddress, draft: NewDraft()}
}

func (w *Wizard) Step() Step      { return w.step }
func (w *Wizard) Submitted() bool { return w.submitted }

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() Draft { return w.draft.clone() }

// IsStepValid evaluates the gate of step against the current draft.
func (w *Wizard) IsStepValid(step Step) bool {
	return len(w.StepProblems(step)) == 0
}

// StepProblems lists the fields failing the gate of step.
func (w *Wizard) StepProblems(step Step) []FieldError {
	d := &w.draft
	var out []FieldError
	switch step {
	case StepAddress:
		if strings.TrimSpace(d.AddressParts.Building) == "" && runeLen(d.Address) <= 3 {
			out = append(out, FieldError{Field: FieldBuilding, Message: "Building is required"})
		}
	case StepCollection:
		if d.CollectionDate == "" {
			out = append(out, FieldError{Field: FieldCollectionDate, Message: "Choose a collection day"})
		}
		if d.CollectionTime == "" {
			out = append(out, FieldError{Field: FieldCollectionTime, Message: "Choose a collection time"})
		}
	case StepDelivery:
		if d.DeliveryDate == "" {
			out = append(out, FieldError{Field: FieldDeliveryDate, Message: "Choose a delivery day"})
		}
		if d.DeliveryTime == "" {
			out = append(out, FieldError{Field: FieldDeliveryTime, Message: "Choose a delivery time"})
		}
	case StepFrequency:
		if d.Frequency == "" {
			out = append(out, FieldError{Field: FieldFrequency, Message: "Choose a frequency"})
		}
	case StepServices:
		if len(d.SelectedServices) == 0 {
			out = append(out, FieldError{Field: "services", Message: "Add at least one service"})
		}
	case StepContact:
		if runeLen(d.Contact.Name) <= 2 {
			out = append(out, FieldError{Field: FieldName, Message: "Name must be at least 3 characters"})
		}
		if runeLen(d.Contact.Phone) <= 5 {
			out = append(out, FieldError{Field: FieldPhone, Message: "Phone must be at least 6 characters"})
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// GoNext advances one step when the current step validates.
func (w *Wizard) GoNext() error {
	if w.submitted {
		return ErrSubmitted
	}
	if w.step == StepReview {
		return ErrNoNextStep
	}
	if !w.IsStepValid(w.step) {
		return errs.Invalid(ErrStepIncomplete.Message()).Arg("step", int(w.step))
	}
	w.step++
	return nil
}

// GoBack retreats one step. On the first step it returns ErrFirstStep and the
// caller leaves the wizard instead.
func (w *Wizard) GoBack() error {
	if w.submitted {
		return ErrSubmitted
	}
	if w.step <= StepAddress {
		return ErrFirstStep
	}
	w.step--
	return nil
}

// GoTo jumps to step without validating anything on the way. It backs the
// edit links of the review screen.
func (w *Wizard) GoTo(step Step) error {
	if w.submitted {
		return ErrSubmitted
	}
	if !step.Valid() {
		return errs.Invalid(ErrUnknownStep.Message()).Arg("step", int(step))
	}
	w.step = step
	return nil
}

// Update sets one draft field. Address parts and area recompose the address.
func (w *Wizard) Update(field Field, value string) error {
	if w.submitted {
		return ErrSubmitted
	}
	d := &w.draft
	switch field {
	case FieldBuilding:
		d.AddressParts.Building = value
	case FieldFlat:
		d.AddressParts.Flat = value
	case FieldLandmark:
		d.AddressParts.Landmark = value
	case FieldArea:
		d.Area = value
	case FieldCollectionDate:
		d.CollectionDate = value
	case FieldCollectionTime:
		d.CollectionTime = value
	case FieldCollectionInstruction:
		ci := CollectionInstruction(value)
		if !ci.valid() {
			return invalidChoice(field, value)
		}
		d.CollectionInstruction = ci
	case FieldDeliveryDate:
		d.DeliveryDate = value
	case FieldDeliveryTime:
		d.DeliveryTime = value
	case FieldDeliveryInstruction:
		di := DeliveryInstruction(value)
		if !di.valid() {
			return invalidChoice(field, value)
		}
		d.DeliveryInstruction = di
	case FieldDriverNote:
		d.DriverNote = value
	case FieldFrequency:
		f := Frequency(value)
		if !f.valid() {
			return invalidChoice(field, value)
		}
		d.Frequency = f
	case FieldName:
		d.Contact.Name = value
	case FieldPhone:
		d.Contact.Phone = value
	case FieldEmail:
		d.Contact.Email = value
	default:
		return errs.Invalid(ErrUnknownField.Message()).Arg("field", string(field))
	}

	switch field {
	case FieldBuilding, FieldFlat, FieldLandmark, FieldArea:
		d.recomposeAddress()
	}
	return nil
}

func invalidChoice(field Field, value string) error {
	return errs.Invalid(ErrInvalidChoice.Message()).Arg("field", string(field)).Arg("value", value)
}

// ToggleService adds id to the selection or removes it when already present.
func (w *Wizard) ToggleService(id string) error {
	if w.submitted {
		return ErrSubmitted
	}
	w.draft.toggleService(id)
	return nil
}

// Submission is the outcome of a submitted booking.
type Submission struct {
	Message string
	Link    string
}

// Submit formats the draft and marks the wizard submitted. Opening Link is
// left to the caller and nothing confirms the message was ever sent.
func (w *Wizard) Submit(c *catalog.Catalog, businessNumber string) (Submission, error) {
	if w.submitted {
		return Submission{}, ErrSubmitted
	}
	if w.step != StepReview {
		return Submission{}, ErrNotAtReview
	}
	for _, s := range Steps()[:StepReview-1] {
		if !w.IsStepValid(s) {
			return Submission{}, errs.Invalid(ErrStepIncomplete.Message()).Arg("step", int(s))
		}
	}

	msg, err := FormatMessage(w.draft, c)
	if err != nil {
		return Submission{}, err
	}
	w.submitted = true
	return Submission{Message: msg, Link: DeepLink(businessNumber, msg)}, nil
}

// ---------- Serialization ----------

type wizardJSON struct {
	Step      Step  `json:"step"`
	Submitted bool  `json:"submitted"`
	Draft     Draft `json:"draft"`
}

func (w *Wizard) MarshalJSON() ([]byte, error) {
	return json.Marshal(wizardJSON{Step: w.step, Submitted: w.submitted, Draft: w.draft})
}

func (w *Wizard) UnmarshalJSON(b []byte) error {
	var v wizardJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if !v.Step.Valid() {
		return errs.Invalid(ErrUnknownStep.Message()).Arg("step", int(v.Step))
	}
	if v.Draft.SelectedServices == nil {
		v.Draft.SelectedServices = []string{}
	}
	w.step, w.submitted, w.draft = v.Step, v.Submitted, v.Draft
	return nil
}
