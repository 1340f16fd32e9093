package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// ErrPaymentNotFound is returned when a payment lookup fails.
var ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)

// PaymentRepo reads and writes the payment table.
type PaymentRepo struct{}

const paymentCols = `payment_id, customer_id, staff_id, rental_id, amount, payment_date, last_update`

func scanPayment(s scanner) (*model.Payment, error) {
	var (
		p                       model.Payment
		customer, staff, rental sql.NullInt64
	)
	if err := s.Scan(&p.ID, &customer, &staff, &rental, &p.Amount, &p.PaymentDate, &p.LastUpdate); err != nil {
		return nil, err
	}
	p.Customer = refOf[model.Customer](customer)
	p.Staff = refOf[model.Staff](staff)
	p.Rental = refOf[model.Rental](rental)
	return &p, nil
}

// Insert adds p and sets its generated id. A zero PaymentDate is filled
// with the database's current time.
func (r *PaymentRepo) Insert(ctx context.Context, s *database.Session, p *model.Payment) (uint64, error) {
	const q = `INSERT INTO payment (customer_id, staff_id, rental_id, amount, payment_date)
	           VALUES (?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP))`
	res, err := s.ExecContext(ctx, q, refArg(p.Customer), refArg(p.Staff), refArg(p.Rental), p.Amount.StringFixed(2), timeArg(p.PaymentDate))
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := insertedID(res, "payment")
	if err != nil {
		return 0, err
	}
	p.ID = id
	if err := s.QueryRowContext(ctx, `SELECT payment_date, last_update FROM payment WHERE payment_id = ?`, id).
		Scan(&p.PaymentDate, &p.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	return id, nil
}

func (r *PaymentRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Payment, error) {
	p, err := scanPayment(s.QueryRowContext(ctx, `SELECT `+paymentCols+` FROM payment WHERE payment_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return p, nil
}

func (r *PaymentRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Payment, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+paymentCols+` FROM payment ORDER BY payment_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return collect(rows, scanPayment)
}

func (r *PaymentRepo) FindByCustomer(ctx context.Context, s *database.Session, customerID uint64) ([]*model.Payment, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+paymentCols+` FROM payment WHERE customer_id = ? ORDER BY payment_id`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list payments by customer: %w", err)
	}
	return collect(rows, scanPayment)
}

func (r *PaymentRepo) FindByRental(ctx context.Context, s *database.Session, rentalID uint64) ([]*model.Payment, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+paymentCols+` FROM payment WHERE rental_id = ? ORDER BY payment_id`, rentalID)
	if err != nil {
		return nil, fmt.Errorf("list payments by rental: %w", err)
	}
	return collect(rows, scanPayment)
}

func (r *PaymentRepo) Update(ctx context.Context, s *database.Session, p *model.Payment) error {
	const q = `UPDATE payment
	           SET customer_id = ?, staff_id = ?, rental_id = ?, amount = ?, payment_date = ?, last_update = CURRENT_TIMESTAMP
	           WHERE payment_id = ?`
	res, err := s.ExecContext(ctx, q, refArg(p.Customer), refArg(p.Staff), refArg(p.Rental), p.Amount.StringFixed(2), p.PaymentDate.UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return mustAffect(res, "update", "payment", p.ID)
}

func (r *PaymentRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM payment WHERE payment_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return mustAffect(res, "delete", "payment", id)
}

// DeleteByCustomer removes every payment of a customer and reports how many went.
func (r *PaymentRepo) DeleteByCustomer(ctx context.Context, s *database.Session, customerID uint64) (int64, error) {
	res, err := s.ExecContext(ctx, `DELETE FROM payment WHERE customer_id = ?`, customerID)
	if err != nil {
		return 0, fmt.Errorf("delete payments of customer %d: %w", customerID, err)
	}
	return res.RowsAffected()
}

func (r *PaymentRepo) DeleteByRental(ctx context.Context, s *database.Session, rentalID uint64) (int64, error) {
	res, err := s.ExecContext(ctx, `DELETE FROM payment WHERE rental_id = ?`, rentalID)
	if err != nil {
		return 0, fmt.Errorf("delete payments of rental %d: %w", rentalID, err)
	}
	return res.RowsAffected()
}

// SumByCustomer totals what a customer has paid.
func (r *PaymentRepo) SumByCustomer(ctx context.Context, s *database.Session, customerID uint64) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := s.QueryRowContext(ctx, `SELECT SUM(amount) FROM payment WHERE customer_id = ?`, customerID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}
