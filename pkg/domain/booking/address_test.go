package booking

import "testing"

func TestComposeAddress(t *testing.T) {
	tests := []struct {
		name  string
		parts AddressParts
		area  string
		want  string
	}{
		{name: "all parts", parts: AddressParts{Building: "12A", Flat: "304", Landmark: "Near Spinneys"}, area: "Marina", want: "Flat 304, 12A, Near Spinneys, Marina"},
		{name: "flat and building", parts: AddressParts{Building: "12A", Flat: "304"}, area: "Marina", want: "Flat 304, 12A, Marina"},
		{name: "building only", parts: AddressParts{Building: "Tower B"}, want: "Tower B"},
		{name: "area only", area: "JLT", want: "JLT"},
		{name: "empty", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeAddress(tt.parts, tt.area)
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			if again := ComposeAddress(tt.parts, tt.area); again != got {
				t.Fatalf("not idempotent: %q then %q", got, again)
			}
		})
	}
}

func TestUpdate_RecomposesAddress(t *testing.T) {
	w := New()
	mustUpdate(t, w, FieldBuilding, "12A")
	mustUpdate(t, w, FieldFlat, "304")
	mustUpdate(t, w, FieldArea, "Marina")

	if got := w.Draft().Address; got != "Flat 304, 12A, Marina" {
		t.Fatalf("unexpected address %q", got)
	}

	mustUpdate(t, w, FieldLandmark, "Opposite the mall")
	if got := w.Draft().Address; got != "Flat 304, 12A, Opposite the mall, Marina" {
		t.Fatalf("unexpected address %q", got)
	}
}

func TestUpdate_AreaAloneDoesNotClobberAddress(t *testing.T) {
	w := New()
	w.draft.Address = "Villa 7, Jumeirah"

	mustUpdate(t, w, FieldArea, "Al Barsha")
	if got := w.Draft().Address; got != "Villa 7, Jumeirah" {
		t.Fatalf("address overwritten with %q", got)
	}
	if !w.IsStepValid(StepAddress) {
		t.Fatalf("restored address should keep step 1 valid")
	}

	mustUpdate(t, w, FieldBuilding, "Villa 9")
	mustUpdate(t, w, FieldBuilding, "")
	if got := w.Draft().Address; got != "Villa 9, Al Barsha" {
		t.Fatalf("clearing every part should keep the last composed address, got %q", got)
	}
}
