package booking

import (
	"errors"
	"testing"

	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
)

func TestReview(t *testing.T) {
	d := marinaDraft(t, "monthly")
	d.SelectedServices = []string{"duvets", "wash-fold"}

	sections, err := Review(d, catalog.Default())
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if len(sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(sections))
	}
	for i, s := range sections {
		if s.EditStep != Step(i+1) {
			t.Fatalf("section %d edits step %d", i, s.EditStep)
		}
	}

	if got := sections[0].Lines; len(got) != 2 || got[0] != "Flat 304, 12A, Marina" || got[1] != "Marina" {
		t.Fatalf("unexpected address lines %v", got)
	}
	if got := sections[3].Lines; len(got) != 1 || got[0] != "Every four weeks" {
		t.Fatalf("unexpected frequency lines %v", got)
	}
	if got := sections[4].Lines; len(got) != 2 || got[0] != "Duvets & Bulky Items" || got[1] != "Wash & Fold" {
		t.Fatalf("unexpected service lines %v", got)
	}
	if got := sections[5].Lines; len(got) != 2 || got[0] != "Aisha" {
		t.Fatalf("unexpected contact lines %v", got)
	}
}

func TestReview_UnknownService(t *testing.T) {
	d := marinaDraft(t, "once")
	d.SelectedServices = []string{"gold-plating"}
	if _, err := Review(d, catalog.Default()); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected catalog.ErrNotFound, got %v", err)
	}
}
