package booking

import "strings"

// ComposeAddress joins the non-empty address parts into one display line:
// "Flat <flat>", building, landmark, area.
func ComposeAddress(parts AddressParts, area string) string {
	flat := ""
	if parts.Flat != "" {
		flat = "Flat " + parts.Flat
	}
	out := make([]string, 0, 4)
	for _, p := range []string{flat, parts.Building, parts.Landmark, area} {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// recomposeAddress refreshes d.Address from the raw parts. It leaves a
// previously composed address alone while building, flat and landmark are all
// empty, so revisiting step 1 cannot blank it.
func (d *Draft) recomposeAddress() {
	p := d.AddressParts
	if p.Building == "" && p.Flat == "" && p.Landmark == "" {
		return
	}
	d.Address = ComposeAddress(p, d.Area)
}
