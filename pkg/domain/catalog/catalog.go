// Package catalog holds the read-only reference data shown on the site and
// consumed by the booking wizard: services, time slots, instruction and
// frequency options, pricing and testimonials.
package catalog

import (
	"bytes"
	_ "embed"
	"io"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when an id or option value is not part of the catalog.
var ErrNotFound = errs.NotFound("catalog entry not found")

//go:embed catalog.yml
var embedded []byte

// ServiceOffering is a bookable service.
type ServiceOffering struct {
	ID          string   `yaml:"id" json:"id" validate:"required"`
	Title       string   `yaml:"title" json:"title" validate:"required"`
	Price       string   `yaml:"price" json:"price" validate:"required"`
	Features    []string `yaml:"features" json:"features"`
	Description string   `yaml:"description" json:"description"`
	Icon        string   `yaml:"icon" json:"icon"`
}

// Option is a value/label pair of a fixed choice list.
type Option struct {
	Value string `yaml:"value" json:"value" validate:"required"`
	Label string `yaml:"label" json:"label" validate:"required"`
}

type PricingItem struct {
	Name  string `yaml:"name" json:"name" validate:"required"`
	Price string `yaml:"price" json:"price" validate:"required"`
}

type PricingCategory struct {
	ID    string        `yaml:"id" json:"id" validate:"required"`
	Name  string        `yaml:"name" json:"name" validate:"required"`
	Items []PricingItem `yaml:"items" json:"items" validate:"dive"`
}

type Testimonial struct {
	Name     string `yaml:"name" json:"name" validate:"required"`
	Location string `yaml:"location" json:"location"`
	Quote    string `yaml:"quote" json:"quote" validate:"required"`
	Rating   int    `yaml:"rating" json:"rating" validate:"min=1,max=5"`
}

// Catalog is immutable after Load. All slices keep the order of the source.
type Catalog struct {
	TimeSlots              []string          `yaml:"time_slots" validate:"len=7,unique,dive,required"`
	CollectionInstructions []Option          `yaml:"collection_instructions" validate:"len=3,unique=Value,dive"`
	DeliveryInstructions   []Option          `yaml:"delivery_instructions" validate:"len=3,unique=Value,dive"`
	Frequencies            []Option          `yaml:"frequencies" validate:"len=4,unique=Value,dive"`
	Services               []ServiceOffering `yaml:"services" validate:"min=1,unique=ID,dive"`
	Pricing                []PricingCategory `yaml:"pricing" validate:"unique=ID,dive"`
	Testimonials           []Testimonial     `yaml:"testimonials" validate:"dive"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog compiled into the binary.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(bytes.NewReader(embedded))
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, errs.New("failed to decode catalog").Wrap(err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errs.Invalid("catalog validation failed").Wrap(err)
	}
	return nil
}

// WithListings returns a copy of c whose services, pricing and testimonials
// are replaced. The wizard's fixed option lists are kept.
func (c *Catalog) WithListings(services []ServiceOffering, pricing []PricingCategory, testimonials []Testimonial) (*Catalog, error) {
	out := &Catalog{
		TimeSlots:              c.TimeSlots,
		CollectionInstructions: c.CollectionInstructions,
		DeliveryInstructions:   c.DeliveryInstructions,
		Frequencies:            c.Frequencies,
		Services:               services,
		Pricing:                pricing,
		Testimonials:           testimonials,
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Service looks a service up by id.
func (c *Catalog) Service(id string) (ServiceOffering, error) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, nil
		}
	}
	return ServiceOffering{}, errs.NotFound("unknown service").Arg("id", id).Wrap(ErrNotFound)
}

func (c *Catalog) HasService(id string) bool {
	_, err := c.Service(id)
	return err == nil
}

// IsTimeSlot reports whether s is one of the fixed slot labels.
func (c *Catalog) IsTimeSlot(s string) bool {
	for _, slot := range c.TimeSlots {
		if slot == s {
			return true
		}
	}
	return false
}

func (c *Catalog) CollectionInstructionLabel(value string) (string, error) {
	return label(c.CollectionInstructions, "collection instruction", value)
}

func (c *Catalog) DeliveryInstructionLabel(value string) (string, error) {
	return label(c.DeliveryInstructions, "delivery instruction", value)
}

func (c *Catalog) FrequencyLabel(value string) (string, error) {
	return label(c.Frequencies, "frequency", value)
}

func label(opts []Option, what, value string) (string, error) {
	for _, o := range opts {
		if o.Value == value {
			return o.Label, nil
		}
	}
	return "", errs.NotFound("unknown "+what).Arg("value", value).Wrap(ErrNotFound)
}

// SearchPricing keeps the items whose name contains query, case-insensitively,
// and drops categories left empty. An empty query returns every category.
func (c *Catalog) SearchPricing(query string) []PricingCategory {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]PricingCategory, 0, len(c.Pricing))
	for _, cat := range c.Pricing {
		items := make([]PricingItem, 0, len(cat.Items))
		for _, it := range cat.Items {
			if strings.Contains(strings.ToLower(it.Name), q) {
				items = append(items, it)
			}
		}
		if len(items) == 0 {
			continue
		}
		out = append(out, PricingCategory{ID: cat.ID, Name: cat.Name, Items: items})
	}
	return out
}
