package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// Customers manages store members.
type Customers struct{ *base }

type CreateCustomerInput struct {
	StoreID   uint64       `json:"store_id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Email     *string      `json:"email"`
	Active    *bool        `json:"active"`
	Address   AddressInput `json:"address"`
}

// UpdateCustomerInput changes only the fields that are set.
type UpdateCustomerInput struct {
	StoreID   *uint64       `json:"store_id"`
	FirstName *string       `json:"first_name"`
	LastName  *string       `json:"last_name"`
	Email     *string       `json:"email"`
	Active    *bool         `json:"active"`
	Address   *AddressInput `json:"address"`
}

// Balance summarises a customer's account.
type Balance struct {
	CustomerID  uint64
	Paid        decimal.Decimal
	OpenRentals int
}

// Create writes the country, city, address and customer rows in one
// transaction and returns the hydrated customer.
func (svc *Customers) Create(ctx context.Context, in CreateCustomerInput) (*model.Customer, error) {
	first, err := required("first_name", in.FirstName, 45)
	if err != nil {
		return nil, err
	}
	last, err := required("last_name", in.LastName, 45)
	if err != nil {
		return nil, err
	}
	email, err := optional("email", in.Email, 50)
	if err != nil {
		return nil, err
	}
	if in.StoreID == 0 {
		return nil, badInput("store_id is required")
	}

	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Customer, error) {
		if _, err := svc.repos.Stores.FindByID(ctx, s, in.StoreID); err != nil {
			return nil, err
		}
		addressID, err := svc.createAddress(ctx, s, in.Address)
		if err != nil {
			return nil, err
		}
		c := &model.Customer{
			Store:     model.Unresolved[model.Store](in.StoreID),
			FirstName: first,
			LastName:  last,
			Email:     email,
			Address:   model.Unresolved[model.Address](addressID),
			Active:    boolOr(in.Active, true),
		}
		if _, err := svc.repos.Customers.Insert(ctx, s, c); err != nil {
			return nil, err
		}
		return svc.h.Customer(ctx, s, c.ID)
	})
}

func (svc *Customers) Get(ctx context.Context, id uint64) (*model.Customer, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Customer, error) {
		return svc.h.Customer(ctx, s, id)
	})
}

func (svc *Customers) List(ctx context.Context, limit, offset int) ([]*model.Customer, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Customer, error) {
		list, err := svc.repos.Customers.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, c := range list {
			svc.h.FillCustomer(ctx, s, c)
		}
		return list, nil
	})
}

func (svc *Customers) Update(ctx context.Context, id uint64, in UpdateCustomerInput) (*model.Customer, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Customer, error) {
		c, err := svc.repos.Customers.FindByID(ctx, s, id)
		if err != nil {
			return nil, err
		}
		if in.FirstName != nil {
			if c.FirstName, err = required("first_name", *in.FirstName, 45); err != nil {
				return nil, err
			}
		}
		if in.LastName != nil {
			if c.LastName, err = required("last_name", *in.LastName, 45); err != nil {
				return nil, err
			}
		}
		if in.Email != nil {
			if c.Email, err = optional("email", in.Email, 50); err != nil {
				return nil, err
			}
		}
		if in.Active != nil {
			c.Active = *in.Active
		}
		if in.StoreID != nil {
			if _, err := svc.repos.Stores.FindByID(ctx, s, *in.StoreID); err != nil {
				return nil, err
			}
			c.Store = model.Unresolved[model.Store](*in.StoreID)
		}
		if in.Address != nil {
			if err := svc.replaceAddress(ctx, s, c.Address.ID(), *in.Address); err != nil {
				return nil, err
			}
		}
		if err := svc.repos.Customers.Update(ctx, s, c); err != nil {
			return nil, err
		}
		return svc.h.Customer(ctx, s, id)
	})
}

// Delete removes a customer with its payments and rental history. A
// customer with a film still out cannot be deleted.
func (svc *Customers) Delete(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		if _, err := svc.repos.Customers.FindByID(ctx, s, id); err != nil {
			return err
		}
		open, err := svc.repos.Rentals.CountOpenByCustomer(ctx, s, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return conflict("customer %d has %d open rental(s)", id, open)
		}
		if _, err := svc.repos.Payments.DeleteByCustomer(ctx, s, id); err != nil {
			return err
		}
		if _, err := svc.repos.Rentals.DeleteByCustomer(ctx, s, id); err != nil {
			return err
		}
		return svc.repos.Customers.DeleteByID(ctx, s, id)
	})
}

// Rentals lists a customer's rentals, each hydrated one level.
func (svc *Customers) Rentals(ctx context.Context, id uint64) ([]*model.Rental, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Rental, error) {
		if _, err := svc.repos.Customers.FindByID(ctx, s, id); err != nil {
			return nil, err
		}
		list, err := svc.repos.Rentals.FindByCustomer(ctx, s, id)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			svc.h.FillRental(ctx, s, r)
		}
		return list, nil
	})
}

// Payments lists a customer's payments, each hydrated one level.
func (svc *Customers) Payments(ctx context.Context, id uint64) ([]*model.Payment, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Payment, error) {
		if _, err := svc.repos.Customers.FindByID(ctx, s, id); err != nil {
			return nil, err
		}
		list, err := svc.repos.Payments.FindByCustomer(ctx, s, id)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			svc.h.FillPayment(ctx, s, p)
		}
		return list, nil
	})
}

func (svc *Customers) Balance(ctx context.Context, id uint64) (*Balance, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*Balance, error) {
		if _, err := svc.repos.Customers.FindByID(ctx, s, id); err != nil {
			return nil, err
		}
		paid, err := svc.repos.Payments.SumByCustomer(ctx, s, id)
		if err != nil {
			return nil, err
		}
		open, err := svc.repos.Rentals.CountOpenByCustomer(ctx, s, id)
		if err != nil {
			return nil, err
		}
		return &Balance{CustomerID: id, Paid: paid, OpenRentals: open}, nil
	})
}
