package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// Payments records money taken from customers.
type Payments struct{ *base }

var maxPayment = decimal.RequireFromString("999.99")

type CreatePaymentInput struct {
	CustomerID  uint64          `json:"customer_id"`
	StaffID     uint64          `json:"staff_id"`
	RentalID    *uint64         `json:"rental_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate *time.Time      `json:"payment_date"`
}

func (svc *Payments) Create(ctx context.Context, in CreatePaymentInput) (*model.Payment, error) {
	if in.CustomerID == 0 || in.StaffID == 0 {
		return nil, badInput("customer_id and staff_id are required")
	}
	if !in.Amount.IsPositive() || in.Amount.GreaterThan(maxPayment) {
		return nil, badInput("amount must be greater than 0 and at most %s", maxPayment.StringFixed(2))
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, badInput("amount has more than two decimals")
	}

	p, err := database.Within(ctx, svc.uow, func(s *database.Session) (*model.Payment, error) {
		if _, err := svc.repos.Customers.FindByID(ctx, s, in.CustomerID); err != nil {
			return nil, err
		}
		if _, err := svc.repos.Staff.FindByID(ctx, s, in.StaffID); err != nil {
			return nil, err
		}
		p := &model.Payment{
			Customer: model.Unresolved[model.Customer](in.CustomerID),
			Staff:    model.Unresolved[model.Staff](in.StaffID),
			Amount:   in.Amount,
		}
		if in.RentalID != nil {
			r, err := svc.repos.Rentals.FindByID(ctx, s, *in.RentalID)
			if err != nil {
				return nil, err
			}
			if r.Customer.ID() != in.CustomerID {
				return nil, conflict("rental %d belongs to another customer", r.ID)
			}
			p.Rental = model.Unresolved[model.Rental](r.ID)
		}
		if in.PaymentDate != nil {
			p.PaymentDate = in.PaymentDate.UTC()
		}
		if _, err := svc.repos.Payments.Insert(ctx, s, p); err != nil {
			return nil, err
		}
		return svc.h.Payment(ctx, s, p.ID)
	})
	if err != nil {
		return nil, err
	}
	svc.publishPayment(ctx, p)
	return p, nil
}

func (svc *Payments) Get(ctx context.Context, id uint64) (*model.Payment, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Payment, error) {
		return svc.h.Payment(ctx, s, id)
	})
}

func (svc *Payments) List(ctx context.Context, limit, offset int) ([]*model.Payment, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Payment, error) {
		list, err := svc.repos.Payments.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			svc.h.FillPayment(ctx, s, p)
		}
		return list, nil
	})
}

func (svc *Payments) Delete(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		if _, err := svc.repos.Payments.FindByID(ctx, s, id); err != nil {
			return err
		}
		return svc.repos.Payments.DeleteByID(ctx, s, id)
	})
}
