package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// DefaultPageSize is used by FindAll when the caller passes limit <= 0.
const DefaultPageSize = 100

// MaxPageSize caps FindAll pages.
const MaxPageSize = 1000

type scanner interface {
	Scan(dest ...any) error
}

// page normalises limit/offset for FindAll queries.
func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// refOf turns a foreign-key column into a stub. NULL and 0 mean no
// relation and yield nil, never a stub with id 0.
func refOf[T model.Keyed](n sql.NullInt64) *model.Ref[T] {
	if !n.Valid || n.Int64 <= 0 {
		return nil
	}
	return model.Unresolved[T](uint64(n.Int64))
}

// refArg is the column value for a reference: its id, or NULL when
// there is no relation.
func refArg[T model.Keyed](r *model.Ref[T]) any {
	if r.ID() == 0 {
		return nil
	}
	return r.ID()
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// insertedID extracts the generated key of a single-row insert.
func insertedID(res sql.Result, what string) (uint64, error) {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, fmt.Errorf("%w: insert %s: no rows affected", ErrWriteFailed, what)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: insert %s: %w", ErrWriteFailed, what, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: insert %s: no id returned", ErrWriteFailed, what)
	}
	return uint64(id), nil
}

// mustAffect fails with ErrWriteFailed when res touched no rows.
func mustAffect(res sql.Result, op, what string, id uint64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s %d: %w", op, what, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s %d: no rows affected", ErrWriteFailed, op, what, id)
	}
	return nil
}

// notFound maps sql.ErrNoRows to the entity sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// count runs a single-column COUNT query.
func count(ctx context.Context, s *database.Session, what, q string, args ...any) (int, error) {
	var n int
	if err := s.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", what, err)
	}
	return n, nil
}

// collect drains rows with scan and closes them.
func collect[T any](rows *sql.Rows, scan func(scanner) (*T, error)) ([]*T, error) {
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Repos bundles the per-table repositories.
type Repos struct {
	Countries      *CountryRepo
	Cities         *CityRepo
	Addresses      *AddressRepo
	Languages      *LanguageRepo
	Actors         *ActorRepo
	Categories     *CategoryRepo
	Films          *FilmRepo
	FilmActors     *FilmActorRepo
	FilmCategories *FilmCategoryRepo
	Stores         *StoreRepo
	Staff          *StaffRepo
	Customers      *CustomerRepo
	Inventory      *InventoryRepo
	Rentals        *RentalRepo
	Payments       *PaymentRepo
}

// New returns the full set of repositories.
func New() *Repos {
	return &Repos{
		Countries:      &CountryRepo{},
		Cities:         &CityRepo{},
		Addresses:      &AddressRepo{},
		Languages:      &LanguageRepo{},
		Actors:         &ActorRepo{},
		Categories:     &CategoryRepo{},
		Films:          &FilmRepo{},
		FilmActors:     &FilmActorRepo{},
		FilmCategories: &FilmCategoryRepo{},
		Stores:         &StoreRepo{},
		Staff:          &StaffRepo{},
		Customers:      &CustomerRepo{},
		Inventory:      &InventoryRepo{},
		Rentals:        &RentalRepo{},
		Payments:       &PaymentRepo{},
	}
}
