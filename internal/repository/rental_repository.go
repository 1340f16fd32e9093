package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

var (
	// ErrRentalNotFound is returned when a rental lookup fails.
	ErrRentalNotFound = fmt.Errorf("rental %w", ErrNotFound)
	// ErrAlreadyReturned is returned when closing a rental that has a return date.
	ErrAlreadyReturned = fmt.Errorf("%w: rental already returned", ErrConflict)
)

// RentalRepo reads and writes the rental table.
type RentalRepo struct{}

const rentalCols = `rental_id, rental_date, inventory_id, customer_id, return_date, staff_id, last_update`

func scanRental(s scanner) (*model.Rental, error) {
	var (
		r                          model.Rental
		inventory, customer, staff sql.NullInt64
		returned                   sql.NullTime
	)
	if err := s.Scan(&r.ID, &r.RentalDate, &inventory, &customer, &returned, &staff, &r.LastUpdate); err != nil {
		return nil, err
	}
	r.Inventory = refOf[model.Inventory](inventory)
	r.Customer = refOf[model.Customer](customer)
	r.Staff = refOf[model.Staff](staff)
	r.ReturnDate = timePtr(returned)
	return &r, nil
}

func timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// Insert adds rn and sets its generated id. A zero RentalDate is filled
// with the database's current time.
func (r *RentalRepo) Insert(ctx context.Context, s *database.Session, rn *model.Rental) (uint64, error) {
	const q = `INSERT INTO rental (rental_date, inventory_id, customer_id, return_date, staff_id)
	           VALUES (COALESCE(?, CURRENT_TIMESTAMP), ?, ?, ?, ?)`
	res, err := s.ExecContext(ctx, q, timeArg(rn.RentalDate), refArg(rn.Inventory), refArg(rn.Customer),
		timePtrArg(rn.ReturnDate), refArg(rn.Staff))
	if err != nil {
		return 0, fmt.Errorf("insert rental: %w", err)
	}
	id, err := insertedID(res, "rental")
	if err != nil {
		return 0, err
	}
	rn.ID = id
	if err := s.QueryRowContext(ctx, `SELECT rental_date, last_update FROM rental WHERE rental_id = ?`, id).
		Scan(&rn.RentalDate, &rn.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert rental: %w", err)
	}
	return id, nil
}

func (r *RentalRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Rental, error) {
	rn, err := scanRental(s.QueryRowContext(ctx, `SELECT `+rentalCols+` FROM rental WHERE rental_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrRentalNotFound)
	}
	return rn, nil
}

func (r *RentalRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Rental, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+rentalCols+` FROM rental ORDER BY rental_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	return collect(rows, scanRental)
}

func (r *RentalRepo) FindByCustomer(ctx context.Context, s *database.Session, customerID uint64) ([]*model.Rental, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+rentalCols+` FROM rental WHERE customer_id = ? ORDER BY rental_id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list rentals by customer: %w", err)
	}
	return collect(rows, scanRental)
}

func (r *RentalRepo) FindByInventory(ctx context.Context, s *database.Session, inventoryID uint64) ([]*model.Rental, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+rentalCols+` FROM rental WHERE inventory_id = ? ORDER BY rental_id`, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("list rentals by inventory: %w", err)
	}
	return collect(rows, scanRental)
}

// FindOpenByCustomer lists rentals the customer has not returned yet.
func (r *RentalRepo) FindOpenByCustomer(ctx context.Context, s *database.Session, customerID uint64) ([]*model.Rental, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+rentalCols+` FROM rental WHERE customer_id = ? AND return_date IS NULL ORDER BY rental_id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list open rentals: %w", err)
	}
	return collect(rows, scanRental)
}

func (r *RentalRepo) Update(ctx context.Context, s *database.Session, rn *model.Rental) error {
	const q = `UPDATE rental
	           SET rental_date = ?, inventory_id = ?, customer_id = ?, return_date = ?, staff_id = ?, last_update = CURRENT_TIMESTAMP
	           WHERE rental_id = ?`
	res, err := s.ExecContext(ctx, q, rn.RentalDate.UTC(), refArg(rn.Inventory), refArg(rn.Customer),
		timePtrArg(rn.ReturnDate), refArg(rn.Staff), rn.ID)
	if err != nil {
		return fmt.Errorf("update rental: %w", err)
	}
	return mustAffect(res, "update", "rental", rn.ID)
}

// MarkReturned sets the return date of an open rental. A nil at means
// now. Closing a rental twice fails with ErrAlreadyReturned.
func (r *RentalRepo) MarkReturned(ctx context.Context, s *database.Session, id uint64, at *time.Time) error {
	const q = `UPDATE rental SET return_date = COALESCE(?, CURRENT_TIMESTAMP), last_update = CURRENT_TIMESTAMP
	           WHERE rental_id = ? AND return_date IS NULL`
	res, err := s.ExecContext(ctx, q, timePtrArg(at), id)
	if err != nil {
		return fmt.Errorf("return rental: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("return rental %d: %w", id, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.FindByID(ctx, s, id); err != nil {
		return err
	}
	return ErrAlreadyReturned
}

func (r *RentalRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM rental WHERE rental_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete rental: %w", err)
	}
	return mustAffect(res, "delete", "rental", id)
}

// DeleteByCustomer removes every rental of a customer and reports how many went.
func (r *RentalRepo) DeleteByCustomer(ctx context.Context, s *database.Session, customerID uint64) (int64, error) {
	res, err := s.ExecContext(ctx, `DELETE FROM rental WHERE customer_id = ?`, customerID)
	if err != nil {
		return 0, fmt.Errorf("delete rentals of customer %d: %w", customerID, err)
	}
	return res.RowsAffected()
}

func (r *RentalRepo) CountByInventory(ctx context.Context, s *database.Session, inventoryID uint64) (int, error) {
	return count(ctx, s, "rentals", `SELECT COUNT(*) FROM rental WHERE inventory_id = ?`, inventoryID)
}

func (r *RentalRepo) CountOpenByInventory(ctx context.Context, s *database.Session, inventoryID uint64) (int, error) {
	return count(ctx, s, "open rentals", `SELECT COUNT(*) FROM rental WHERE inventory_id = ? AND return_date IS NULL`, inventoryID)
}

func (r *RentalRepo) CountOpenByCustomer(ctx context.Context, s *database.Session, customerID uint64) (int, error) {
	return count(ctx, s, "open rentals", `SELECT COUNT(*) FROM rental WHERE customer_id = ? AND return_date IS NULL`, customerID)
}

func (r *RentalRepo) CountByStaff(ctx context.Context, s *database.Session, staffID uint64) (int, error) {
	return count(ctx, s, "rentals", `SELECT COUNT(*) FROM rental WHERE staff_id = ?`, staffID)
}
