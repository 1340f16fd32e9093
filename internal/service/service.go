// Package service holds the business operations of the rental store.
// Every operation runs inside exactly one unit of work and returns
// hydrated models; events are published only after the work commits.
package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/hydrate"
	"github.com/iliyamo/rental-store/internal/queue"
	"github.com/iliyamo/rental-store/internal/repository"
)

// EventPublisher delivers rental lifecycle events. *queue.Publisher
// satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.RentalEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.RentalEvent) error { return nil }

// Deps are the collaborators shared by all services.
type Deps struct {
	UoW    *database.UnitOfWork
	Repos  *repository.Repos
	Events EventPublisher
	Log    zerolog.Logger

	// BcryptCost is used for staff password hashes; zero means the bcrypt default.
	BcryptCost int
}

type base struct {
	uow    *database.UnitOfWork
	repos  *repository.Repos
	h      *hydrate.Hydrator
	events EventPublisher
	log    zerolog.Logger
}

// publish sends ev after a commit. A failure is logged and dropped.
func (b *base) publish(ctx context.Context, ev queue.RentalEvent) {
	if err := b.events.Publish(ctx, ev); err != nil {
		b.log.Warn().Err(err).Str("event", ev.Type).Msg("event not delivered")
	}
}

// Services groups the business operations by aggregate.
type Services struct {
	Customers *Customers
	Films     *Films
	Inventory *Inventory
	Rentals   *Rentals
	Payments  *Payments
	Stores    *Stores
	Staff     *Staff
	Catalog   *Catalog
}

func New(d Deps) *Services {
	if d.Repos == nil {
		d.Repos = repository.New()
	}
	if d.Events == nil {
		d.Events = nopPublisher{}
	}
	log := d.Log.With().Str("component", "service").Logger()
	b := &base{uow: d.UoW, repos: d.Repos, h: hydrate.New(d.Repos, d.Log), events: d.Events, log: log}
	return &Services{
		Customers: &Customers{b},
		Films:     &Films{b},
		Inventory: &Inventory{b},
		Rentals:   &Rentals{b},
		Payments:  &Payments{b},
		Stores:    &Stores{b},
		Staff:     &Staff{base: b, BcryptCost: d.BcryptCost},
		Catalog:   &Catalog{b},
	}
}

// required trims v and fails when it is empty or longer than limit bytes.
func required(field, v string, limit int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", badInput("%s is required", field)
	}
	if len(v) > limit {
		return "", badInput("%s must be at most %d characters", field, limit)
	}
	return v, nil
}

// optional trims v; an empty result becomes nil.
func optional(field string, v *string, limit int) (*string, error) {
	if v == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil, nil
	}
	if len(t) > limit {
		return nil, badInput("%s must be at most %d characters", field, limit)
	}
	return &t, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
