package booking

import "github.com/napryag/laundry_pickup/pkg/domain/catalog"

// ReviewSection is one block of the review screen. EditStep is where its
// edit link jumps to.
type ReviewSection struct {
	EditStep Step
	Lines    []string
}

// Review projects the draft into the six sections of the review screen.
func Review(d Draft, c *catalog.Catalog) ([]ReviewSection, error) {
	collection, err := c.CollectionInstructionLabel(string(d.CollectionInstruction))
	if err != nil {
		return nil, err
	}
	delivery, err := c.DeliveryInstructionLabel(string(d.DeliveryInstruction))
	if err != nil {
		return nil, err
	}
	frequency, err := c.FrequencyLabel(string(d.Frequency))
	if err != nil {
		return nil, err
	}
	services := make([]string, 0, len(d.SelectedServices))
	for _, id := range d.SelectedServices {
		s, err := c.Service(id)
		if err != nil {
			return nil, err
		}
		services = append(services, s.Title)
	}

	return []ReviewSection{
		{EditStep: StepAddress, Lines: nonEmpty(d.Address, d.Area)},
		{EditStep: StepCollection, Lines: nonEmpty(d.CollectionDate, d.CollectionTime, collection)},
		{EditStep: StepDelivery, Lines: nonEmpty(d.DeliveryDate, d.DeliveryTime, delivery, d.DriverNote)},
		{EditStep: StepFrequency, Lines: []string{frequency}},
		{EditStep: StepServices, Lines: services},
		{EditStep: StepContact, Lines: nonEmpty(d.Contact.Name, d.Contact.Phone, d.Contact.Email)},
	}, nil
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
