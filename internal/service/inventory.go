package service

import (
	"context"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// Inventory manages physical copies of films.
type Inventory struct{ *base }

func (svc *Inventory) Create(ctx context.Context, filmID, storeID uint64) (*model.Inventory, error) {
	if filmID == 0 || storeID == 0 {
		return nil, badInput("film_id and store_id are required")
	}
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Inventory, error) {
		if _, err := svc.repos.Films.FindByID(ctx, s, filmID); err != nil {
			return nil, err
		}
		if _, err := svc.repos.Stores.FindByID(ctx, s, storeID); err != nil {
			return nil, err
		}
		i := &model.Inventory{
			Film:  model.Unresolved[model.Film](filmID),
			Store: model.Unresolved[model.Store](storeID),
		}
		if _, err := svc.repos.Inventory.Insert(ctx, s, i); err != nil {
			return nil, err
		}
		return svc.h.Inventory(ctx, s, i.ID)
	})
}

func (svc *Inventory) Get(ctx context.Context, id uint64) (*model.Inventory, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Inventory, error) {
		return svc.h.Inventory(ctx, s, id)
	})
}

func (svc *Inventory) List(ctx context.Context, limit, offset int) ([]*model.Inventory, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Inventory, error) {
		list, err := svc.repos.Inventory.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, i := range list {
			svc.h.FillInventory(ctx, s, i)
		}
		return list, nil
	})
}

// Delete removes a copy that has never been rented.
func (svc *Inventory) Delete(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		if _, err := svc.repos.Inventory.FindByID(ctx, s, id); err != nil {
			return err
		}
		open, err := svc.repos.Rentals.CountOpenByInventory(ctx, s, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return conflict("inventory %d is rented out", id)
		}
		n, err := svc.repos.Rentals.CountByInventory(ctx, s, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("inventory %d has %d rental(s) on record", id, n)
		}
		return svc.repos.Inventory.DeleteByID(ctx, s, id)
	})
}
