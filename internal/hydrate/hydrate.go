// Package hydrate turns the stub-bearing rows of the repository layer into
// loaded aggregates.
//
// Every aggregate is hydrated one level deep: direct references are
// resolved and one-to-many collections are attached as the rows the
// repository returned, still carrying their own stubs. The address chain
// (address, city, country) and the film join rows (actor, category) are
// the only places that go further, and they do so explicitly.
//
// Only the root lookup can fail a hydration. A reference that cannot be
// loaded stays a stub, and a collection that cannot be loaded becomes an
// empty list; both are logged.
package hydrate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
	"github.com/iliyamo/rental-store/internal/repository"
)

// Hydrator loads aggregates through the repositories on the caller's
// session. It holds no state between calls.
type Hydrator struct {
	repos *repository.Repos
	log   zerolog.Logger
}

func New(repos *repository.Repos, log zerolog.Logger) *Hydrator {
	return &Hydrator{repos: repos, log: log.With().Str("component", "hydrate").Logger()}
}

type finder[T any] func(ctx context.Context, s *database.Session, id uint64) (*T, error)

type lister[T any] func(ctx context.Context, s *database.Session, id uint64) ([]*T, error)

// resolve replaces the stub in ref with the row find returns. Nil and
// already resolved references are left alone.
func resolve[T model.Keyed](ctx context.Context, h *Hydrator, s *database.Session, what string, ref *model.Ref[T], find finder[T]) *T {
	if ref == nil {
		return nil
	}
	if v, ok := ref.Get(); ok {
		return v
	}
	v, err := find(ctx, s, ref.ID())
	if err != nil {
		h.log.Warn().Err(err).Str("ref", what).Uint64("id", ref.ID()).Msg("reference left unresolved")
		return nil
	}
	if err := ref.Resolve(v); err != nil {
		h.log.Error().Err(err).Str("ref", what).Uint64("id", ref.ID()).Msg("reference left unresolved")
		return nil
	}
	return v
}

// collect loads the collection owned by id. A failed load yields an
// empty, non-nil list.
func collect[T any](ctx context.Context, h *Hydrator, s *database.Session, what string, id uint64, list lister[T]) []*T {
	v, err := list(ctx, s, id)
	if err != nil {
		h.log.Warn().Err(err).Str("collection", what).Uint64("owner", id).Msg("collection replaced with empty list")
		return []*T{}
	}
	return v
}

// Address loads an address with its city and the city's country.
func (h *Hydrator) Address(ctx context.Context, s *database.Session, id uint64) (*model.Address, error) {
	a, err := h.repos.Addresses.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillAddress(ctx, s, a)
	return a, nil
}

// FillAddress resolves the city and country of a.
func (h *Hydrator) FillAddress(ctx context.Context, s *database.Session, a *model.Address) {
	h.addressChain(ctx, s, a.City)
}

// addressRef resolves an address reference together with its chain.
func (h *Hydrator) addressRef(ctx context.Context, s *database.Session, ref *model.Ref[model.Address]) {
	if a := resolve(ctx, h, s, "address", ref, h.repos.Addresses.FindByID); a != nil {
		h.addressChain(ctx, s, a.City)
	}
}

func (h *Hydrator) addressChain(ctx context.Context, s *database.Session, city *model.Ref[model.City]) {
	if c := resolve(ctx, h, s, "city", city, h.repos.Cities.FindByID); c != nil {
		resolve(ctx, h, s, "country", c.Country, h.repos.Countries.FindByID)
	}
}
