package booking

import "time"

const (
	// DateWindow is the number of days offered starting today.
	DateWindow = 7
	// collectionDays is how many of the window collection may use.
	collectionDays = 6

	isoDate     = "2006-01-02"
	shortLayout = "Mon, Jan 2"

	LabelToday    = "Today"
	LabelTomorrow = "Tomorrow"
)

// DateOption is one selectable calendar day.
type DateOption struct {
	ISODate   string
	Label     string
	DaysAhead int
}

// GenerateDateOptions returns count consecutive days starting at today's
// calendar date in today's location.
func GenerateDateOptions(count int, today time.Time) []DateOption {
	if count <= 0 {
		return nil
	}
	y, m, d := today.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	out := make([]DateOption, 0, count)
	for i := 0; i < count; i++ {
		day := start.AddDate(0, 0, i)
		var label string
		switch i {
		case 0:
			label = LabelToday
		case 1:
			label = LabelTomorrow
		default:
			label = day.Format(shortLayout)
		}
		out = append(out, DateOption{ISODate: day.Format(isoDate), Label: label, DaysAhead: i})
	}
	return out
}

// CollectionDateOptions are the first six days of the window.
func CollectionDateOptions(today time.Time) []DateOption {
	return GenerateDateOptions(DateWindow, today)[:collectionDays]
}

// DeliveryDateOptions are the window without its first day: nothing is
// delivered on the day it could have been collected at the earliest.
func DeliveryDateOptions(today time.Time) []DateOption {
	return GenerateDateOptions(DateWindow, today)[1:]
}

// Offers reports whether iso is one of opts.
func Offers(opts []DateOption, iso string) bool {
	for _, o := range opts {
		if o.ISODate == iso {
			return true
		}
	}
	return false
}
