package store

import (
	"context"

	"github.com/napryag/laundry_pickup/pkg/domain/catalog"
	"github.com/napryag/laundry_pickup/pkg/repository/model"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

// LoadCatalog replaces the listings of base with the rows of repo. Time
// slots, instructions and frequencies always come from base.
func LoadCatalog(ctx context.Context, repo model.Repo, base *catalog.Catalog) (*catalog.Catalog, error) {
	services, err := repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	pricing, err := repo.ListPricing(ctx)
	if err != nil {
		return nil, err
	}
	testimonials, err := repo.ListTestimonials(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]catalog.ServiceOffering, 0, len(services))
	for _, s := range services {
		out = append(out, catalog.ServiceOffering{
			ID:          s.ID,
			Title:       s.Title,
			Price:       s.Price,
			Features:    s.Features,
			Description: s.Description,
			Icon:        s.Icon,
		})
	}

	cats := make([]catalog.PricingCategory, 0, len(pricing))
	for _, p := range pricing {
		c := catalog.PricingCategory{ID: p.ID, Name: p.Name}
		for _, it := range p.Items {
			c.Items = append(c.Items, catalog.PricingItem{Name: it.Name, Price: it.Price})
		}
		cats = append(cats, c)
	}

	quotes := make([]catalog.Testimonial, 0, len(testimonials))
	for _, t := range testimonials {
		quotes = append(quotes, catalog.Testimonial{Name: t.Name, Location: t.Location, Quote: t.Quote, Rating: t.Rating})
	}

	c, err := base.WithListings(out, cats, quotes)
	if err != nil {
		return nil, errs.New("database catalog rejected").Wrap(err)
	}
	return c, nil
}
