package booking

// CollectionInstruction tells the driver how to pick the laundry up.
type CollectionInstruction string

const (
	CollectInPerson  CollectionInstruction = "in_person"
	CollectOutside   CollectionInstruction = "outside"
	CollectReception CollectionInstruction = "reception"
)

// DeliveryInstruction tells the driver how to hand the laundry back.
type DeliveryInstruction string

const (
	DeliverInPerson  DeliveryInstruction = "in_person"
	DeliverDoor      DeliveryInstruction = "door"
	DeliverReception DeliveryInstruction = "reception"
)

type Frequency string

const (
	FrequencyOnce     Frequency = "once"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (c CollectionInstruction) valid() bool {
	switch c {
	case CollectInPerson, CollectOutside, CollectReception:
		return true
	}
	return false
}

func (d DeliveryInstruction) valid() bool {
	switch d {
	case DeliverInPerson, DeliverDoor, DeliverReception:
		return true
	}
	return false
}

func (f Frequency) valid() bool {
	switch f {
	case FrequencyOnce, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// AddressParts are the raw address inputs. They only reach the message
// through the composed Draft.Address.
type AddressParts struct {
	Building string `json:"building"`
	Flat     string `json:"flat"`
	Landmark string `json:"landmark"`
}

type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Draft is the in-progress booking of one session.
type Draft struct {
	Address      string       `json:"address"`
	Area         string       `json:"area"`
	AddressParts AddressParts `json:"addressParts"`

	CollectionDate        string                `json:"collectionDate"`
	CollectionTime        string                `json:"collectionTime"`
	CollectionInstruction CollectionInstruction `json:"collectionInstruction"`

	DeliveryDate        string              `json:"deliveryDate"`
	DeliveryTime        string              `json:"deliveryTime"`
	DeliveryInstruction DeliveryInstruction `json:"deliveryInstruction"`

	DriverNote       string    `json:"driverNote,omitempty"`
	Frequency        Frequency `json:"frequency"`
	SelectedServices []string  `json:"selectedServices"`
	Contact          Contact   `json:"contact"`
}

// NewDraft returns a draft with the default instructions and frequency.
func NewDraft() Draft {
	return Draft{
		CollectionInstruction: CollectOutside,
		DeliveryInstruction:   DeliverDoor,
		Frequency:             FrequencyOnce,
		SelectedServices:      []string{},
	}
}

// HasService reports whether id is currently selected.
func (d *Draft) HasService(id string) bool {
	for _, s := range d.SelectedServices {
		if s == id {
			return true
		}
	}
	return false
}

// toggleService adds id when absent and removes it when present, keeping the
// relative order of the remaining ids.
func (d *Draft) toggleService(id string) {
	for i, s := range d.SelectedServices {
		if s == id {
			d.SelectedServices = append(d.SelectedServices[:i:i], d.SelectedServices[i+1:]...)
			return
		}
	}
	d.SelectedServices = append(d.SelectedServices, id)
}

func (d Draft) clone() Draft {
	out := d
	out.SelectedServices = append([]string(nil), d.SelectedServices...)
	return out
}
