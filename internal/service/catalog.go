package service

import (
	"context"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// Catalog covers the small lookup tables: actors, categories, languages,
// countries and cities.
type Catalog struct{ *base }

type ActorInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (in ActorInput) validate() (first, last string, err error) {
	if first, err = required("first_name", in.FirstName, 45); err != nil {
		return "", "", err
	}
	if last, err = required("last_name", in.LastName, 45); err != nil {
		return "", "", err
	}
	return first, last, nil
}

func (svc *Catalog) CreateActor(ctx context.Context, in ActorInput) (*model.Actor, error) {
	first, last, err := in.validate()
	if err != nil {
		return nil, err
	}
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Actor, error) {
		a := &model.Actor{FirstName: first, LastName: last}
		if _, err := svc.repos.Actors.Insert(ctx, s, a); err != nil {
			return nil, err
		}
		return svc.repos.Actors.FindByID(ctx, s, a.ID)
	})
}

func (svc *Catalog) Actor(ctx context.Context, id uint64) (*model.Actor, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Actor, error) {
		return svc.repos.Actors.FindByID(ctx, s, id)
	})
}

func (svc *Catalog) Actors(ctx context.Context, limit, offset int) ([]*model.Actor, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Actor, error) {
		return svc.repos.Actors.FindAll(ctx, s, limit, offset)
	})
}

func (svc *Catalog) UpdateActor(ctx context.Context, id uint64, in ActorInput) (*model.Actor, error) {
	first, last, err := in.validate()
	if err != nil {
		return nil, err
	}
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Actor, error) {
		if _, err := svc.repos.Actors.FindByID(ctx, s, id); err != nil {
			return nil, err
		}
		if err := svc.repos.Actors.Update(ctx, s, &model.Actor{ID: id, FirstName: first, LastName: last}); err != nil {
			return nil, err
		}
		return svc.repos.Actors.FindByID(ctx, s, id)
	})
}

// DeleteActor removes an actor who is credited in no film.
func (svc *Catalog) DeleteActor(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		if _, err := svc.repos.Actors.FindByID(ctx, s, id); err != nil {
			return err
		}
		films, err := svc.repos.FilmActors.FindByActor(ctx, s, id)
		if err != nil {
			return err
		}
		if len(films) > 0 {
			return conflict("actor %d appears in %d film(s)", id, len(films))
		}
		return svc.repos.Actors.DeleteByID(ctx, s, id)
	})
}

func (svc *Catalog) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	name, err := required("name", name, 25)
	if err != nil {
		return nil, err
	}
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Category, error) {
		c := &model.Category{Name: name}
		if _, err := svc.repos.Categories.Insert(ctx, s, c); err != nil {
			return nil, err
		}
		return svc.repos.Categories.FindByID(ctx, s, c.ID)
	})
}

func (svc *Catalog) Category(ctx context.Context, id uint64) (*model.Category, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Category, error) {
		return svc.repos.Categories.FindByID(ctx, s, id)
	})
}

func (svc *Catalog) Categories(ctx context.Context, limit, offset int) ([]*model.Category, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Category, error) {
		return svc.repos.Categories.FindAll(ctx, s, limit, offset)
	})
}

func (svc *Catalog) Language(ctx context.Context, id uint64) (*model.Language, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Language, error) {
		return svc.repos.Languages.FindByID(ctx, s, id)
	})
}

func (svc *Catalog) Languages(ctx context.Context, limit, offset int) ([]*model.Language, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Language, error) {
		return svc.repos.Languages.FindAll(ctx, s, limit, offset)
	})
}

func (svc *Catalog) Countries(ctx context.Context, limit, offset int) ([]*model.Country, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Country, error) {
		return svc.repos.Countries.FindAll(ctx, s, limit, offset)
	})
}

// Cities lists cities with their country resolved.
func (svc *Catalog) Cities(ctx context.Context, limit, offset int) ([]*model.City, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.City, error) {
		list, err := svc.repos.Cities.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			svc.h.FillCity(ctx, s, c)
		}
		return list, nil
	})
}
