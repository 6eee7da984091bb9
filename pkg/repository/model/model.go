package model

import "context"

// Service is a row of the service table.
type Service struct {
	ID          string
	Title       string
	Price       string
	Features    []string
	Description string
	Icon        string
	Position    int
}

type PricingCategory struct {
	ID       string
	Name     string
	Position int
	Items    []PricingItem
}

type PricingItem struct {
	Name  string
	Price string
}

type Testimonial struct {
	ID       int64
	Name     string
	Location string
	Quote    string
	Rating   int
}

// Repo is the read side of the catalog tables. Every list is ordered by
// position so the site shows rows in the order staff arranged them.
type Repo interface {
	ListServices(ctx context.Context) ([]Service, error)
	ListPricing(ctx context.Context) ([]PricingCategory, error)
	ListTestimonials(ctx context.Context) ([]Testimonial, error)
}
