package booking

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

func mustUpdate(t *testing.T, w *Wizard, f Field, v string) {
	t.Helper()
	if err := w.Update(f, v); err != nil {
		t.Fatalf("update %s=%q: %v", f, v, err)
	}
}

// completeWizard fills every step and walks to review.
func completeWizard(t *testing.T) *Wizard {
	t.Helper()
	w := New()
	mustUpdate(t, w, FieldBuilding, "12A")
	mustUpdate(t, w, FieldFlat, "304")
	mustUpdate(t, w, FieldArea, "Marina")
	mustUpdate(t, w, FieldCollectionDate, "2024-01-01")
	mustUpdate(t, w, FieldCollectionTime, "08:00 - 10:00")
	mustUpdate(t, w, FieldDeliveryDate, "2024-01-03")
	mustUpdate(t, w, FieldDeliveryTime, "18:00 - 20:00")
	mustUpdate(t, w, FieldFrequency, "biweekly")
	if err := w.ToggleService("wash-fold"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	mustUpdate(t, w, FieldName, "Aisha")
	mustUpdate(t, w, FieldPhone, "0501234567")
	for w.Step() < StepReview {
		if err := w.GoNext(); err != nil {
			t.Fatalf("go next from %s: %v", w.Step(), err)
		}
	}
	return w
}

func TestNew_Defaults(t *testing.T) {
	w := New()
	if w.Step() != StepAddress || w.Submitted() {
		t.Fatalf("unexpected initial state step=%d submitted=%v", w.Step(), w.Submitted())
	}
	d := w.Draft()
	if d.CollectionInstruction != CollectOutside || d.DeliveryInstruction != DeliverDoor || d.Frequency != FrequencyOnce {
		t.Fatalf("unexpected defaults %+v", d)
	}
}

func TestIsStepValid_Address(t *testing.T) {
	tests := []struct {
		name     string
		building string
		address  string
		want     bool
	}{
		{name: "building", building: "12A", want: true},
		{name: "blank building", building: "   ", want: false},
		{name: "restored address", address: "Flat 1, Tower", want: true},
		{name: "short address", address: "abc", want: false},
		{name: "padded short address", address: "  abc  ", want: false},
		{name: "nothing", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			w.draft.AddressParts.Building = tt.building
			w.draft.Address = tt.address
			if got := w.IsStepValid(StepAddress); got != tt.want {
				t.Fatalf("IsStepValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsStepValid_CollectionBoundaries(t *testing.T) {
	for _, date := range []string{"", "2024-01-01"} {
		for _, slot := range []string{"", "08:00 - 10:00"} {
			w := New()
			mustUpdate(t, w, FieldCollectionDate, date)
			mustUpdate(t, w, FieldCollectionTime, slot)
			want := date != "" && slot != ""
			if got := w.IsStepValid(StepCollection); got != want {
				t.Fatalf("date=%q slot=%q: IsStepValid = %v, want %v", date, slot, got, want)
			}
		}
	}
}

func TestIsStepValid_DeliveryServicesFrequency(t *testing.T) {
	w := New()
	if w.IsStepValid(StepDelivery) {
		t.Fatalf("empty delivery should be invalid")
	}
	mustUpdate(t, w, FieldDeliveryDate, "2024-01-02")
	if w.IsStepValid(StepDelivery) {
		t.Fatalf("delivery without time should be invalid")
	}
	mustUpdate(t, w, FieldDeliveryTime, "10:00 - 12:00")
	if !w.IsStepValid(StepDelivery) {
		t.Fatalf("delivery should be valid")
	}

	if !w.IsStepValid(StepFrequency) {
		t.Fatalf("frequency has a default and should be valid")
	}
	if w.IsStepValid(StepServices) {
		t.Fatalf("no services should be invalid")
	}
	if err := w.ToggleService("duvets"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !w.IsStepValid(StepServices) {
		t.Fatalf("services should be valid")
	}
	if !w.IsStepValid(StepReview) {
		t.Fatalf("review is always valid")
	}
}

func TestIsStepValid_Contact(t *testing.T) {
	tests := []struct {
		name, person, phone string
		want                bool
	}{
		{name: "valid", person: "Aisha", phone: "0501234567", want: true},
		{name: "short name", person: "Al", phone: "0501234567", want: false},
		{name: "padded name", person: "  Al  ", phone: "0501234567", want: false},
		{name: "short phone", person: "Aisha", phone: "12345", want: false},
		{name: "six digit phone", person: "Aisha", phone: "123456", want: true},
		{name: "arabic name", person: "عائشة", phone: "123456", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			mustUpdate(t, w, FieldName, tt.person)
			mustUpdate(t, w, FieldPhone, tt.phone)
			if got := w.IsStepValid(StepContact); got != tt.want {
				t.Fatalf("IsStepValid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoNext_BlockedOnInvalidStep(t *testing.T) {
	w := New()
	err := w.GoNext()
	if !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("expected ErrStepIncomplete, got %v", err)
	}
	if errs.KindOf(err) != errs.KindInvalid {
		t.Fatalf("expected invalid kind, got %q", errs.KindOf(err))
	}
	if w.Step() != StepAddress {
		t.Fatalf("step moved to %d", w.Step())
	}
}

func TestGoNext_ContactShortPhoneStays(t *testing.T) {
	w := completeWizard(t)
	if err := w.GoTo(StepContact); err != nil {
		t.Fatalf("goto: %v", err)
	}
	mustUpdate(t, w, FieldPhone, "123")

	if err := w.GoNext(); !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("expected ErrStepIncomplete, got %v", err)
	}
	if w.Step() != StepContact {
		t.Fatalf("expected step 6, got %d", w.Step())
	}
	problems := w.StepProblems(StepContact)
	if len(problems) != 1 || problems[0].Field != FieldPhone {
		t.Fatalf("unexpected problems %+v", problems)
	}
}

func TestGoNext_AtReview(t *testing.T) {
	w := completeWizard(t)
	if err := w.GoNext(); !errors.Is(err, ErrNoNextStep) {
		t.Fatalf("expected ErrNoNextStep, got %v", err)
	}
	if w.Step() != StepReview {
		t.Fatalf("step changed to %d", w.Step())
	}
}

func TestGoBack(t *testing.T) {
	w := New()
	if err := w.GoBack(); !errors.Is(err, ErrFirstStep) {
		t.Fatalf("expected ErrFirstStep, got %v", err)
	}
	if w.Step() != StepAddress {
		t.Fatalf("step below floor: %d", w.Step())
	}

	mustUpdate(t, w, FieldBuilding, "Tower 1")
	if err := w.GoNext(); err != nil {
		t.Fatalf("go next: %v", err)
	}
	if err := w.GoBack(); err != nil {
		t.Fatalf("go back: %v", err)
	}
	if w.Step() != StepAddress {
		t.Fatalf("expected step 1, got %d", w.Step())
	}
}

func TestGoTo_SkipsValidation(t *testing.T) {
	for _, from := range Steps() {
		w := New()
		w.step = from
		if err := w.GoTo(StepDelivery); err != nil {
			t.Fatalf("goto from %d: %v", from, err)
		}
		if w.Step() != StepDelivery {
			t.Fatalf("from %d: expected step 3, got %d", from, w.Step())
		}
	}

	w := completeWizard(t)
	if err := w.GoTo(StepDelivery); err != nil {
		t.Fatalf("goto from review: %v", err)
	}
	if w.Step() != StepDelivery {
		t.Fatalf("expected step 3, got %d", w.Step())
	}

	if err := w.GoTo(Step(8)); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
	if err := w.GoTo(Step(0)); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestToggleService_OddCountMembership(t *testing.T) {
	ids := []string{"wash-fold", "clean-press", "press-only", "duvets", "sneakers"}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		w := New()
		counts := map[string]int{}
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			id := ids[rng.Intn(len(ids))]
			counts[id]++
			if err := w.ToggleService(id); err != nil {
				t.Fatalf("toggle: %v", err)
			}
		}
		d := w.Draft()
		seen := map[string]bool{}
		for _, id := range d.SelectedServices {
			if seen[id] {
				t.Fatalf("duplicate id %q in %v", id, d.SelectedServices)
			}
			seen[id] = true
		}
		for _, id := range ids {
			if want := counts[id]%2 == 1; d.HasService(id) != want {
				t.Fatalf("round %d: id %q toggled %d times, present=%v", round, id, counts[id], !want)
			}
		}
	}
}

func TestToggleService_KeepsOrder(t *testing.T) {
	w := New()
	for _, id := range []string{"a", "b", "c", "b", "d"} {
		if err := w.ToggleService(id); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	got := w.Draft().SelectedServices
	want := []string{"a", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestUpdate_RejectsUnknownChoices(t *testing.T) {
	w := New()
	tests := []struct {
		field Field
		value string
		want  error
	}{
		{field: FieldFrequency, value: "daily", want: ErrInvalidChoice},
		{field: FieldCollectionInstruction, value: "door", want: ErrInvalidChoice},
		{field: FieldDeliveryInstruction, value: "outside", want: ErrInvalidChoice},
		{field: Field("shoeSize"), value: "42", want: ErrUnknownField},
	}
	for _, tt := range tests {
		if err := w.Update(tt.field, tt.value); !errors.Is(err, tt.want) {
			t.Fatalf("%s=%q: expected %v, got %v", tt.field, tt.value, tt.want, err)
		}
	}
	d := w.Draft()
	if d.Frequency != FrequencyOnce || d.CollectionInstruction != CollectOutside || d.DeliveryInstruction != DeliverDoor {
		t.Fatalf("rejected updates changed the draft: %+v", d)
	}
}

func TestDraft_ReturnsCopy(t *testing.T) {
	w := New()
	if err := w.ToggleService("wash-fold"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	d := w.Draft()
	d.SelectedServices[0] = "sneakers"
	fresh := w.Draft()
	if !fresh.HasService("wash-fold") {
		t.Fatalf("mutating the copy changed the wizard")
	}
}

func TestSubmit(t *testing.T) {
	c := catalog.Default()
	w := completeWizard(t)

	sub, err := w.Submit(c, "971501234567")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !w.Submitted() || w.Step() != StepReview {
		t.Fatalf("unexpected state step=%d submitted=%v", w.Step(), w.Submitted())
	}
	if sub.Link != DeepLink("971501234567", sub.Message) {
		t.Fatalf("link does not match message")
	}

	if _, err := w.Submit(c, "971501234567"); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("expected ErrSubmitted, got %v", err)
	}
	for name, fn := range map[string]func() error{
		"next":   w.GoNext,
		"back":   w.GoBack,
		"goto":   func() error { return w.GoTo(StepAddress) },
		"update": func() error { return w.Update(FieldName, "X") },
		"toggle": func() error { return w.ToggleService("duvets") },
	} {
		if err := fn(); !errors.Is(err, ErrSubmitted) {
			t.Fatalf("%s after submit: expected ErrSubmitted, got %v", name, err)
		}
	}
}

func TestSubmit_Guards(t *testing.T) {
	c := catalog.Default()

	w := New()
	if _, err := w.Submit(c, "1"); !errors.Is(err, ErrNotAtReview) {
		t.Fatalf("expected ErrNotAtReview, got %v", err)
	}

	w = completeWizard(t)
	if err := w.ToggleService("wash-fold"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := w.Submit(c, "1"); !errors.Is(err, ErrStepIncomplete) {
		t.Fatalf("expected ErrStepIncomplete, got %v", err)
	}
	if w.Submitted() {
		t.Fatalf("wizard submitted with no services")
	}

	w = completeWizard(t)
	if err := w.ToggleService("laundry-on-mars"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if _, err := w.Submit(c, "1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected catalog.ErrNotFound, got %v", err)
	}
	if w.Submitted() {
		t.Fatalf("wizard submitted with an unknown service")
	}
}

func TestWizard_JSONRoundTrip(t *testing.T) {
	w := completeWizard(t)
	if err := w.GoTo(StepServices); err != nil {
		t.Fatalf("goto: %v", err)
	}

	b, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Wizard
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Step() != StepServices || got.Submitted() {
		t.Fatalf("unexpected state step=%d submitted=%v", got.Step(), got.Submitted())
	}
	gotDraft := got.Draft()
	if gotDraft.Address != w.Draft().Address || !gotDraft.HasService("wash-fold") {
		t.Fatalf("draft not restored: %+v", got.Draft())
	}

	if err := json.Unmarshal([]byte(`{"step":9}`), &got); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}
