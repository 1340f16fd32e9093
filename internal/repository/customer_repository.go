package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// ErrCustomerNotFound is returned when a customer lookup fails.
var ErrCustomerNotFound = fmt.Errorf("customer %w", ErrNotFound)

// CustomerRepo reads and writes the customer table.
type CustomerRepo struct{}

const customerCols = `customer_id, store_id, first_name, last_name, email, address_id, active, create_date, last_update`

func scanCustomer(s scanner) (*model.Customer, error) {
	var (
		c              model.Customer
		store, address sql.NullInt64
		email          sql.NullString
	)
	if err := s.Scan(&c.ID, &store, &c.FirstName, &c.LastName, &email, &address, &c.Active, &c.CreateDate, &c.LastUpdate); err != nil {
		return nil, err
	}
	c.Store = refOf[model.Store](store)
	c.Address = refOf[model.Address](address)
	c.Email = strPtr(email)
	return &c, nil
}

// timeArg passes a zero time as NULL so the statement's own clock fills
// the column.
func timeArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// Insert adds c and sets its generated id. A zero CreateDate is filled
// with the database's current time.
func (r *CustomerRepo) Insert(ctx context.Context, s *database.Session, c *model.Customer) (uint64, error) {
	const q = `INSERT INTO customer (store_id, first_name, last_name, email, address_id, active, create_date)
	           VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`
	res, err := s.ExecContext(ctx, q, refArg(c.Store), c.FirstName, c.LastName, c.Email, refArg(c.Address), c.Active, timeArg(c.CreateDate))
	if err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	id, err := insertedID(res, "customer")
	if err != nil {
		return 0, err
	}
	c.ID = id
	if err := s.QueryRowContext(ctx, `SELECT create_date, last_update FROM customer WHERE customer_id = ?`, id).
		Scan(&c.CreateDate, &c.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	return id, nil
}

func (r *CustomerRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Customer, error) {
	c, err := scanCustomer(s.QueryRowContext(ctx, `SELECT `+customerCols+` FROM customer WHERE customer_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrCustomerNotFound)
	}
	return c, nil
}

func (r *CustomerRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Customer, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+customerCols+` FROM customer ORDER BY customer_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return collect(rows, scanCustomer)
}

func (r *CustomerRepo) FindByStore(ctx context.Context, s *database.Session, storeID uint64) ([]*model.Customer, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+customerCols+` FROM customer WHERE store_id = ? ORDER BY customer_id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list customers by store: %w", err)
	}
	return collect(rows, scanCustomer)
}

func (r *CustomerRepo) Update(ctx context.Context, s *database.Session, c *model.Customer) error {
	const q = `UPDATE customer
	           SET store_id = ?, first_name = ?, last_name = ?, email = ?, address_id = ?, active = ?, last_update = CURRENT_TIMESTAMP
	           WHERE customer_id = ?`
	res, err := s.ExecContext(ctx, q, refArg(c.Store), c.FirstName, c.LastName, c.Email, refArg(c.Address), c.Active, c.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return mustAffect(res, "update", "customer", c.ID)
}

func (r *CustomerRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM customer WHERE customer_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return mustAffect(res, "delete", "customer", id)
}

func (r *CustomerRepo) CountByStore(ctx context.Context, s *database.Session, storeID uint64) (int, error) {
	return count(ctx, s, "customers", `SELECT COUNT(*) FROM customer WHERE store_id = ?`, storeID)
}

func (r *CustomerRepo) CountByAddress(ctx context.Context, s *database.Session, addressID uint64) (int, error) {
	return count(ctx, s, "customers", `SELECT COUNT(*) FROM customer WHERE address_id = ?`, addressID)
}
