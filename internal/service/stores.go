package service

import (
	"context"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// Stores manages rental locations.
type Stores struct{ *base }

type CreateStoreInput struct {
	ManagerID uint64       `json:"manager_staff_id"`
	Address   AddressInput `json:"address"`
}

type UpdateStoreInput struct {
	ManagerID *uint64       `json:"manager_staff_id"`
	Address   *AddressInput `json:"address"`
}

// assignManager makes staffID the manager of storeID and moves them into
// it. A staff member manages at most one store.
func (svc *Stores) assignManager(ctx context.Context, s *database.Session, staffID, storeID uint64) error {
	if _, err := svc.repos.Staff.FindByID(ctx, s, staffID); err != nil {
		return err
	}
	managed, err := svc.repos.Stores.FindByManager(ctx, s, staffID)
	if err != nil {
		return err
	}
	for _, st := range managed {
		if st.ID != storeID {
			return conflict("staff %d already manages store %d", staffID, st.ID)
		}
	}
	return svc.repos.Staff.SetStore(ctx, s, staffID, storeID)
}

func (svc *Stores) Create(ctx context.Context, in CreateStoreInput) (*model.Store, error) {
	if in.ManagerID == 0 {
		return nil, badInput("manager_staff_id is required")
	}
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Store, error) {
		if _, err := svc.repos.Staff.FindByID(ctx, s, in.ManagerID); err != nil {
			return nil, err
		}
		addressID, err := svc.createAddress(ctx, s, in.Address)
		if err != nil {
			return nil, err
		}
		st := &model.Store{
			Manager: model.Unresolved[model.Staff](in.ManagerID),
			Address: model.Unresolved[model.Address](addressID),
		}
		if _, err := svc.repos.Stores.Insert(ctx, s, st); err != nil {
			return nil, err
		}
		if err := svc.assignManager(ctx, s, in.ManagerID, st.ID); err != nil {
			return nil, err
		}
		return svc.h.Store(ctx, s, st.ID)
	})
}

func (svc *Stores) Get(ctx context.Context, id uint64) (*model.Store, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Store, error) {
		return svc.h.Store(ctx, s, id)
	})
}

func (svc *Stores) List(ctx context.Context, limit, offset int) ([]*model.Store, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Store, error) {
		list, err := svc.repos.Stores.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, st := range list {
			svc.h.FillStore(ctx, s, st)
		}
		return list, nil
	})
}

func (svc *Stores) Update(ctx context.Context, id uint64, in UpdateStoreInput) (*model.Store, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Store, error) {
		st, err := svc.repos.Stores.FindByID(ctx, s, id)
		if err != nil {
			return nil, err
		}
		if in.ManagerID != nil {
			if err := svc.assignManager(ctx, s, *in.ManagerID, id); err != nil {
				return nil, err
			}
			st.Manager = model.Unresolved[model.Staff](*in.ManagerID)
		}
		if in.Address != nil {
			if err := svc.replaceAddress(ctx, s, st.Address.ID(), *in.Address); err != nil {
				return nil, err
			}
		}
		if err := svc.repos.Stores.Update(ctx, s, st); err != nil {
			return nil, err
		}
		return svc.h.Store(ctx, s, id)
	})
}

// Delete removes a store nobody belongs to any more: no customers, no
// inventory and no staff, the manager included.
func (svc *Stores) Delete(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		if _, err := svc.repos.Stores.FindByID(ctx, s, id); err != nil {
			return err
		}
		customers, err := svc.repos.Customers.CountByStore(ctx, s, id)
		if err != nil {
			return err
		}
		inventory, err := svc.repos.Inventory.CountByStore(ctx, s, id)
		if err != nil {
			return err
		}
		staff, err := svc.repos.Staff.CountByStore(ctx, s, id)
		if err != nil {
			return err
		}
		if customers+inventory+staff > 0 {
			return conflict("store %d still has %d customer(s), %d inventory item(s) and %d staff", id, customers, inventory, staff)
		}
		return svc.repos.Stores.DeleteByID(ctx, s, id)
	})
}
