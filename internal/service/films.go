package service

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// Films manages the catalogue of titles.
type Films struct{ *base }

var (
	ratings = []string{"G", "PG", "PG-13", "R", "NC-17"}

	defaultRentalRate      = decimal.RequireFromString("4.99")
	defaultReplacementCost = decimal.RequireFromString("19.99")
	maxRentalRate          = decimal.RequireFromString("99.99")
	maxReplacementCost     = decimal.RequireFromString("999.99")
)

const defaultRentalDuration = 3

// FilmInput creates a film, or updates the fields that are set. ActorIDs
// and CategoryIDs replace the film's links when not nil.
type FilmInput struct {
	Title              *string          `json:"title"`
	Description        *string          `json:"description"`
	ReleaseYear        *int             `json:"release_year"`
	LanguageID         *uint64          `json:"language_id"`
	OriginalLanguageID *uint64          `json:"original_language_id"`
	RentalDuration     *int             `json:"rental_duration"`
	RentalRate         *decimal.Decimal `json:"rental_rate"`
	Length             *int             `json:"length"`
	ReplacementCost    *decimal.Decimal `json:"replacement_cost"`
	Rating             *string          `json:"rating"`
	SpecialFeatures    *string          `json:"special_features"`
	ActorIDs           []uint64         `json:"actor_ids"`
	CategoryIDs        []uint64         `json:"category_ids"`
}

// apply copies the set fields of in onto f and validates the result.
func (in FilmInput) apply(f *model.Film) error {
	var err error
	if in.Title != nil {
		if f.Title, err = required("title", *in.Title, 128); err != nil {
			return err
		}
	}
	if f.Title == "" {
		return badInput("title is required")
	}
	if in.Description != nil {
		if f.Description, err = optional("description", in.Description, 65535); err != nil {
			return err
		}
	}
	if in.ReleaseYear != nil {
		if y := *in.ReleaseYear; y < 1901 || y > 2155 {
			return badInput("release_year must be between 1901 and 2155")
		}
		f.ReleaseYear = in.ReleaseYear
	}
	if in.LanguageID != nil {
		f.Language = model.Unresolved[model.Language](*in.LanguageID)
	}
	if f.Language == nil {
		return badInput("language_id is required")
	}
	if in.OriginalLanguageID != nil {
		f.OriginalLanguage = model.Unresolved[model.Language](*in.OriginalLanguageID)
	}
	if in.RentalDuration != nil {
		if d := *in.RentalDuration; d < 1 || d > 255 {
			return badInput("rental_duration must be between 1 and 255 days")
		}
		f.RentalDuration = *in.RentalDuration
	}
	if in.RentalRate != nil {
		if in.RentalRate.IsNegative() || in.RentalRate.GreaterThan(maxRentalRate) {
			return badInput("rental_rate must be between 0 and %s", maxRentalRate.StringFixed(2))
		}
		if !in.RentalRate.Equal(in.RentalRate.Round(2)) {
			return badInput("rental_rate has more than two decimals")
		}
		f.RentalRate = *in.RentalRate
	}
	if in.Length != nil {
		if *in.Length <= 0 {
			return badInput("length must be positive")
		}
		f.Length = in.Length
	}
	if in.ReplacementCost != nil {
		if in.ReplacementCost.IsNegative() || in.ReplacementCost.GreaterThan(maxReplacementCost) {
			return badInput("replacement_cost must be between 0 and %s", maxReplacementCost.StringFixed(2))
		}
		if !in.ReplacementCost.Equal(in.ReplacementCost.Round(2)) {
			return badInput("replacement_cost has more than two decimals")
		}
		f.ReplacementCost = *in.ReplacementCost
	}
	if in.Rating != nil {
		if f.Rating, err = optional("rating", in.Rating, 5); err != nil {
			return err
		}
		if f.Rating != nil && !slices.Contains(ratings, *f.Rating) {
			return badInput("rating must be one of %v", ratings)
		}
	}
	if in.SpecialFeatures != nil {
		if f.SpecialFeatures, err = optional("special_features", in.SpecialFeatures, 100); err != nil {
			return err
		}
	}
	return nil
}

// checkRefs verifies that every id f and in point at exists.
func (svc *Films) checkRefs(ctx context.Context, s *database.Session, f *model.Film, in FilmInput) error {
	if _, err := svc.repos.Languages.FindByID(ctx, s, f.Language.ID()); err != nil {
		return err
	}
	if f.OriginalLanguage != nil {
		if _, err := svc.repos.Languages.FindByID(ctx, s, f.OriginalLanguage.ID()); err != nil {
			return err
		}
	}
	for _, id := range in.ActorIDs {
		if _, err := svc.repos.Actors.FindByID(ctx, s, id); err != nil {
			return err
		}
	}
	for _, id := range in.CategoryIDs {
		if _, err := svc.repos.Categories.FindByID(ctx, s, id); err != nil {
			return err
		}
	}
	return nil
}

func (svc *Films) link(ctx context.Context, s *database.Session, filmID uint64, in FilmInput) error {
	if in.ActorIDs != nil {
		if err := svc.repos.FilmActors.DeleteByFilm(ctx, s, filmID); err != nil {
			return err
		}
		for _, id := range dedupe(in.ActorIDs) {
			if err := svc.repos.FilmActors.Insert(ctx, s, id, filmID); err != nil {
				return err
			}
		}
	}
	if in.CategoryIDs != nil {
		if err := svc.repos.FilmCategories.DeleteByFilm(ctx, s, filmID); err != nil {
			return err
		}
		for _, id := range dedupe(in.CategoryIDs) {
			if err := svc.repos.FilmCategories.Insert(ctx, s, filmID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func dedupe(ids []uint64) []uint64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func (svc *Films) Create(ctx context.Context, in FilmInput) (*model.Film, error) {
	f := &model.Film{
		RentalDuration:  defaultRentalDuration,
		RentalRate:      defaultRentalRate,
		ReplacementCost: defaultReplacementCost,
	}
	if err := in.apply(f); err != nil {
		return nil, err
	}
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Film, error) {
		if err := svc.checkRefs(ctx, s, f, in); err != nil {
			return nil, err
		}
		if _, err := svc.repos.Films.Insert(ctx, s, f); err != nil {
			return nil, err
		}
		if err := svc.link(ctx, s, f.ID, in); err != nil {
			return nil, err
		}
		return svc.h.Film(ctx, s, f.ID)
	})
}

func (svc *Films) Get(ctx context.Context, id uint64) (*model.Film, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Film, error) {
		return svc.h.Film(ctx, s, id)
	})
}

func (svc *Films) List(ctx context.Context, limit, offset int) ([]*model.Film, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Film, error) {
		list, err := svc.repos.Films.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, f := range list {
			svc.h.FillFilm(ctx, s, f)
		}
		return list, nil
	})
}

func (svc *Films) Update(ctx context.Context, id uint64, in FilmInput) (*model.Film, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Film, error) {
		f, err := svc.repos.Films.FindByID(ctx, s, id)
		if err != nil {
			return nil, err
		}
		if err := in.apply(f); err != nil {
			return nil, err
		}
		if err := svc.checkRefs(ctx, s, f, in); err != nil {
			return nil, err
		}
		if err := svc.repos.Films.Update(ctx, s, f); err != nil {
			return nil, err
		}
		if err := svc.link(ctx, s, id, in); err != nil {
			return nil, err
		}
		return svc.h.Film(ctx, s, id)
	})
}

// Delete removes a film and its actor and category links. A film with
// copies in any store cannot be deleted.
func (svc *Films) Delete(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		if _, err := svc.repos.Films.FindByID(ctx, s, id); err != nil {
			return err
		}
		n, err := svc.repos.Inventory.CountByFilm(ctx, s, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("film %d has %d inventory item(s)", id, n)
		}
		if err := svc.repos.FilmActors.DeleteByFilm(ctx, s, id); err != nil {
			return err
		}
		if err := svc.repos.FilmCategories.DeleteByFilm(ctx, s, id); err != nil {
			return err
		}
		return svc.repos.Films.DeleteByID(ctx, s, id)
	})
}

// Availability counts the film's copies per store.
func (svc *Films) Availability(ctx context.Context, id uint64) ([]model.StoreAvailability, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]model.StoreAvailability, error) {
		if _, err := svc.repos.Films.FindByID(ctx, s, id); err != nil {
			return nil, err
		}
		return svc.repos.Inventory.AvailabilityByFilm(ctx, s, id)
	})
}
