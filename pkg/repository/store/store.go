package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/napryag/laundry_pickup/pkg/repository/model"
	"github.com/napryag/laundry_pickup/pkg/utils/errs"
)

type PGRepo struct{ pool *pgxpool.Pool }

var _ model.Repo = (*PGRepo)(nil)

func NewRepo(ctx context.Context, dsn string) (*PGRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errs.New("failed to create pool").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.New("failed to ping database").Wrap(err)
	}
	return &PGRepo{pool: pool}, nil
}

func (r *PGRepo) Close() { r.pool.Close() }

func (r *PGRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *PGRepo) ListServices(ctx context.Context) ([]model.Service, error) {
	const q = `
		SELECT id, title, price, features, description, icon, position
		FROM service
		WHERE is_active
		ORDER BY position, id;
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, errs.New("failed to query services").Wrap(err)
	}
	defer rows.Close()
	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Title, &s.Price, &s.Features, &s.Description, &s.Icon, &s.Position); err != nil {
			return nil, errs.New("failed to scan service").Wrap(err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListPricing(ctx context.Context) ([]model.PricingCategory, error) {
	const q = `
		SELECT c.id, c.name, c.position, i.name, i.price
		FROM pricing_category c
		LEFT JOIN pricing_item i ON i.category_id = c.id
		ORDER BY c.position, c.id, i.position, i.name;
	`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, errs.New("failed to query pricing").Wrap(err)
	}
	defer rows.Close()

	var out []model.PricingCategory
	for rows.Next() {
		var (
			c           model.PricingCategory
			name, price *string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Position, &name, &price); err != nil {
			return nil, errs.New("failed to scan pricing").Wrap(err)
		}
		if n := len(out); n == 0 || out[n-1].ID != c.ID {
			out = append(out, c)
		}
		// categories without items come back with NULL item columns
		if name != nil && price != nil {
			last := &out[len(out)-1]
			last.Items = append(last.Items, model.PricingItem{Name: *name, Price: *price})
		}
	}
	return out, rows.Err()
}

func (r *PGRepo) ListTestimonials(ctx context.Context) ([]model.Testimonial, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, location, quote, rating FROM testimonial ORDER BY position, id`)
	if err != nil {
		return nil, errs.New("failed to query testimonials").Wrap(err)
	}
	defer rows.Close()
	var out []model.Testimonial
	for rows.Next() {
		var t model.Testimonial
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &t.Quote, &t.Rating); err != nil {
			return nil, errs.New("failed to scan testimonial").Wrap(err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
