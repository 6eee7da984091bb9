package booking

import (
	"testing"
	"time"
)

func TestGenerateDateOptions(t *testing.T) {
	today := time.Date(2024, time.January, 1, 21, 45, 0, 0, time.UTC)

	got := GenerateDateOptions(7, today)
	if len(got) != 7 {
		t.Fatalf("expected 7 options, got %d", len(got))
	}

	want := []DateOption{
		{ISODate: "2024-01-01", Label: "Today", DaysAhead: 0},
		{ISODate: "2024-01-02", Label: "Tomorrow", DaysAhead: 1},
		{ISODate: "2024-01-03", Label: "Wed, Jan 3", DaysAhead: 2},
		{ISODate: "2024-01-04", Label: "Thu, Jan 4", DaysAhead: 3},
		{ISODate: "2024-01-05", Label: "Fri, Jan 5", DaysAhead: 4},
		{ISODate: "2024-01-06", Label: "Sat, Jan 6", DaysAhead: 5},
		{ISODate: "2024-01-07", Label: "Sun, Jan 7", DaysAhead: 6},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("option %d: got %+v, want %+v", i, got[i], want[i])
		}
		if i > 0 && got[i].ISODate <= got[i-1].ISODate {
			t.Fatalf("dates not strictly increasing at %d: %v", i, got)
		}
	}
}

func TestGenerateDateOptions_UsesLocalCalendarDay(t *testing.T) {
	dubai := time.FixedZone("GST", 4*60*60)
	// 22:30 UTC on Dec 31 is already Jan 1 in Dubai.
	now := time.Date(2023, time.December, 31, 22, 30, 0, 0, time.UTC).In(dubai)

	got := GenerateDateOptions(2, now)
	if got[0].ISODate != "2024-01-01" || got[1].ISODate != "2024-01-02" {
		t.Fatalf("unexpected dates %+v", got)
	}
}

func TestGenerateDateOptions_CrossesMonthEnd(t *testing.T) {
	got := GenerateDateOptions(3, time.Date(2024, time.February, 28, 9, 0, 0, 0, time.UTC))
	if got[1].ISODate != "2024-02-29" || got[2].ISODate != "2024-03-01" {
		t.Fatalf("unexpected dates %+v", got)
	}
	if got[2].Label != "Fri, Mar 1" {
		t.Fatalf("unexpected label %q", got[2].Label)
	}
}

func TestGenerateDateOptions_NonPositive(t *testing.T) {
	if got := GenerateDateOptions(0, time.Now()); len(got) != 0 {
		t.Fatalf("expected no options, got %v", got)
	}
}

func TestCollectionAndDeliveryOptions(t *testing.T) {
	today := time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)
	window := GenerateDateOptions(DateWindow, today)

	collection := CollectionDateOptions(today)
	if len(collection) != 6 {
		t.Fatalf("expected 6 collection days, got %d", len(collection))
	}
	if collection[0].Label != LabelToday {
		t.Fatalf("collection should start today, got %+v", collection[0])
	}

	delivery := DeliveryDateOptions(today)
	if len(delivery) != 6 {
		t.Fatalf("expected 6 delivery days, got %d", len(delivery))
	}
	if delivery[0].Label != LabelTomorrow || delivery[0] != window[1] {
		t.Fatalf("delivery should start tomorrow, got %+v", delivery[0])
	}
	if Offers(delivery, window[0].ISODate) {
		t.Fatalf("delivery must not offer the first day of the window")
	}
	if !Offers(collection, window[0].ISODate) || Offers(collection, window[6].ISODate) {
		t.Fatalf("collection should offer the first six days only")
	}
}
