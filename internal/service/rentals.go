package service

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
	"github.com/iliyamo/rental-store/internal/queue"
	"github.com/iliyamo/rental-store/internal/repository"
)

// Rentals checks copies out and back in.
type Rentals struct{ *base }

// LateFeePerDay is charged for every started day past the film's rental
// duration.
var LateFeePerDay = decimal.RequireFromString("1.00")

type CreateRentalInput struct {
	InventoryID uint64     `json:"inventory_id"`
	CustomerID  uint64     `json:"customer_id"`
	StaffID     uint64     `json:"staff_id"`
	RentalDate  *time.Time `json:"rental_date"`
	ReturnDate  *time.Time `json:"return_date"`
}

// LateFee is the charge for returning a copy rented at rented, with a
// rental duration of days, at returned.
func LateFee(rented, returned time.Time, days int) decimal.Decimal {
	held := returned.Sub(rented)
	if held <= 0 {
		return decimal.Zero
	}
	started := int(math.Ceil(held.Hours() / 24))
	over := started - days
	if over <= 0 {
		return decimal.Zero
	}
	return LateFeePerDay.Mul(decimal.NewFromInt(int64(over)))
}

// Create checks a copy out. The copy must not be out already, whether or
// not the rental is recorded with a return date. The film's rental rate
// is charged as a payment in the same transaction, plus the late fee
// when the return date is already known.
func (svc *Rentals) Create(ctx context.Context, in CreateRentalInput) (*model.Rental, error) {
	if in.InventoryID == 0 || in.CustomerID == 0 || in.StaffID == 0 {
		return nil, badInput("inventory_id, customer_id and staff_id are required")
	}
	rentedAt := time.Now().UTC().Truncate(time.Second)
	if in.RentalDate != nil {
		rentedAt = in.RentalDate.UTC()
	}
	if in.ReturnDate != nil && in.ReturnDate.Before(rentedAt) {
		return nil, badInput("return_date precedes rental_date")
	}

	var charged []*model.Payment
	var inv *model.Inventory
	r, err := database.Within(ctx, svc.uow, func(s *database.Session) (*model.Rental, error) {
		var err error
		inv, err = svc.repos.Inventory.FindByID(ctx, s, in.InventoryID)
		if err != nil {
			return nil, err
		}
		cust, err := svc.repos.Customers.FindByID(ctx, s, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if !cust.Active {
			return nil, conflict("customer %d is inactive", cust.ID)
		}
		if _, err := svc.repos.Staff.FindByID(ctx, s, in.StaffID); err != nil {
			return nil, err
		}
		film, err := svc.repos.Films.FindByID(ctx, s, inv.Film.ID())
		if err != nil {
			return nil, err
		}
		open, err := svc.repos.Rentals.CountOpenByInventory(ctx, s, inv.ID)
		if err != nil {
			return nil, err
		}
		if open > 0 {
			return nil, conflict("inventory %d is already rented out", inv.ID)
		}

		r := &model.Rental{
			RentalDate: rentedAt,
			Inventory:  model.Unresolved[model.Inventory](inv.ID),
			Customer:   model.Unresolved[model.Customer](cust.ID),
			ReturnDate: in.ReturnDate,
			Staff:      model.Unresolved[model.Staff](in.StaffID),
		}
		if _, err := svc.repos.Rentals.Insert(ctx, s, r); err != nil {
			return nil, err
		}

		fee := &model.Payment{
			Customer:    r.Customer,
			Staff:       r.Staff,
			Rental:      model.Unresolved[model.Rental](r.ID),
			Amount:      film.RentalRate,
			PaymentDate: rentedAt,
		}
		if _, err := svc.repos.Payments.Insert(ctx, s, fee); err != nil {
			return nil, err
		}
		charged = append(charged, fee)
		if in.ReturnDate != nil {
			if late := LateFee(rentedAt, *in.ReturnDate, film.RentalDuration); late.IsPositive() {
				p := &model.Payment{Customer: r.Customer, Staff: r.Staff, Rental: fee.Rental, Amount: late, PaymentDate: *in.ReturnDate}
				if _, err := svc.repos.Payments.Insert(ctx, s, p); err != nil {
					return nil, err
				}
				charged = append(charged, p)
			}
		}
		return svc.h.Rental(ctx, s, r.ID)
	})
	if err != nil {
		return nil, err
	}

	ev := queue.NewEvent(queue.RentalCreated)
	ev.RentalID, ev.CustomerID, ev.InventoryID = r.ID, r.Customer.ID(), inv.ID
	ev.FilmID, ev.StoreID, ev.StaffID = inv.Film.ID(), inv.Store.ID(), r.Staff.ID()
	svc.publish(ctx, ev)
	for _, p := range charged {
		svc.publishPayment(ctx, p)
	}
	return r, nil
}

func (b *base) publishPayment(ctx context.Context, p *model.Payment) {
	ev := queue.NewEvent(queue.PaymentRecorded)
	ev.PaymentID, ev.RentalID, ev.CustomerID, ev.StaffID = p.ID, p.Rental.ID(), p.Customer.ID(), p.Staff.ID()
	ev.Amount = p.Amount.StringFixed(2)
	b.publish(ctx, ev)
}

func (svc *Rentals) Get(ctx context.Context, id uint64) (*model.Rental, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Rental, error) {
		return svc.h.Rental(ctx, s, id)
	})
}

func (svc *Rentals) List(ctx context.Context, limit, offset int) ([]*model.Rental, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Rental, error) {
		list, err := svc.repos.Rentals.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, r := range list {
			svc.h.FillRental(ctx, s, r)
		}
		return list, nil
	})
}

// Return checks a copy back in at at, or now when at is nil, and charges
// the late fee if one is due. Returning twice is a conflict.
func (svc *Rentals) Return(ctx context.Context, id uint64, at *time.Time) (*model.Rental, error) {
	returnedAt := time.Now().UTC().Truncate(time.Second)
	if at != nil {
		returnedAt = at.UTC()
	}

	var late *model.Payment
	var inv *model.Inventory
	r, err := database.Within(ctx, svc.uow, func(s *database.Session) (*model.Rental, error) {
		r, err := svc.repos.Rentals.FindByID(ctx, s, id)
		if err != nil {
			return nil, err
		}
		if !r.Open() {
			return nil, repository.ErrAlreadyReturned
		}
		if returnedAt.Before(r.RentalDate) {
			return nil, badInput("return_date precedes rental_date")
		}
		if inv, err = svc.repos.Inventory.FindByID(ctx, s, r.Inventory.ID()); err != nil {
			return nil, err
		}
		film, err := svc.repos.Films.FindByID(ctx, s, inv.Film.ID())
		if err != nil {
			return nil, err
		}
		if err := svc.repos.Rentals.MarkReturned(ctx, s, id, &returnedAt); err != nil {
			return nil, err
		}
		if fee := LateFee(r.RentalDate, returnedAt, film.RentalDuration); fee.IsPositive() {
			late = &model.Payment{
				Customer:    r.Customer,
				Staff:       r.Staff,
				Rental:      model.Unresolved[model.Rental](id),
				Amount:      fee,
				PaymentDate: returnedAt,
			}
			if _, err := svc.repos.Payments.Insert(ctx, s, late); err != nil {
				return nil, err
			}
		}
		return svc.h.Rental(ctx, s, id)
	})
	if err != nil {
		return nil, err
	}

	ev := queue.NewEvent(queue.RentalReturned)
	ev.RentalID, ev.CustomerID, ev.InventoryID = r.ID, r.Customer.ID(), inv.ID
	ev.FilmID, ev.StoreID, ev.StaffID = inv.Film.ID(), inv.Store.ID(), r.Staff.ID()
	if late != nil {
		ev.Amount = late.Amount.StringFixed(2)
	}
	svc.publish(ctx, ev)
	if late != nil {
		svc.publishPayment(ctx, late)
	}
	return r, nil
}

// Delete removes a closed rental and its payments.
func (svc *Rentals) Delete(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		r, err := svc.repos.Rentals.FindByID(ctx, s, id)
		if err != nil {
			return err
		}
		if r.Open() {
			return conflict("rental %d is still open", id)
		}
		if _, err := svc.repos.Payments.DeleteByRental(ctx, s, id); err != nil {
			return err
		}
		return svc.repos.Rentals.DeleteByID(ctx, s, id)
	})
}
