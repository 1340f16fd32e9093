package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// ErrInventoryNotFound is returned when an inventory lookup fails.
var ErrInventoryNotFound = fmt.Errorf("inventory %w", ErrNotFound)

// InventoryRepo reads and writes the inventory table.
type InventoryRepo struct{}

const inventoryCols = `inventory_id, film_id, store_id, last_update`

func scanInventory(s scanner) (*model.Inventory, error) {
	var (
		i           model.Inventory
		film, store sql.NullInt64
	)
	if err := s.Scan(&i.ID, &film, &store, &i.LastUpdate); err != nil {
		return nil, err
	}
	i.Film = refOf[model.Film](film)
	i.Store = refOf[model.Store](store)
	return &i, nil
}

func (r *InventoryRepo) Insert(ctx context.Context, s *database.Session, i *model.Inventory) (uint64, error) {
	res, err := s.ExecContext(ctx, `INSERT INTO inventory (film_id, store_id) VALUES (?, ?)`, refArg(i.Film), refArg(i.Store))
	if err != nil {
		return 0, fmt.Errorf("insert inventory: %w", err)
	}
	id, err := insertedID(res, "inventory")
	if err != nil {
		return 0, err
	}
	i.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM inventory WHERE inventory_id = ?`, id).Scan(&i.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert inventory: %w", err)
	}
	return id, nil
}

func (r *InventoryRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Inventory, error) {
	i, err := scanInventory(s.QueryRowContext(ctx, `SELECT `+inventoryCols+` FROM inventory WHERE inventory_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrInventoryNotFound)
	}
	return i, nil
}

func (r *InventoryRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Inventory, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+inventoryCols+` FROM inventory ORDER BY inventory_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return collect(rows, scanInventory)
}

func (r *InventoryRepo) FindByFilm(ctx context.Context, s *database.Session, filmID uint64) ([]*model.Inventory, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+inventoryCols+` FROM inventory WHERE film_id = ? ORDER BY inventory_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("list inventory by film: %w", err)
	}
	return collect(rows, scanInventory)
}

func (r *InventoryRepo) FindByStore(ctx context.Context, s *database.Session, storeID uint64) ([]*model.Inventory, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+inventoryCols+` FROM inventory WHERE store_id = ? ORDER BY inventory_id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list inventory by store: %w", err)
	}
	return collect(rows, scanInventory)
}

// AvailabilityByFilm counts copies of a film per store. A copy is rented
// while it has a rental without a return date.
func (r *InventoryRepo) AvailabilityByFilm(ctx context.Context, s *database.Session, filmID uint64) ([]model.StoreAvailability, error) {
	const q = `SELECT i.store_id,
	                  COUNT(*),
	                  COALESCE(SUM(CASE WHEN EXISTS (
	                      SELECT 1 FROM rental r WHERE r.inventory_id = i.inventory_id AND r.return_date IS NULL
	                  ) THEN 1 ELSE 0 END), 0)
	           FROM inventory i
	           WHERE i.film_id = ?
	           GROUP BY i.store_id
	           ORDER BY i.store_id`
	rows, err := s.QueryContext(ctx, q, filmID)
	if err != nil {
		return nil, fmt.Errorf("film availability: %w", err)
	}
	defer rows.Close()
	out := []model.StoreAvailability{}
	for rows.Next() {
		var a model.StoreAvailability
		if err := rows.Scan(&a.StoreID, &a.Total, &a.Rented); err != nil {
			return nil, fmt.Errorf("film availability: %w", err)
		}
		a.Available = a.Total - a.Rented
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("film availability: %w", err)
	}
	return out, nil
}

func (r *InventoryRepo) Update(ctx context.Context, s *database.Session, i *model.Inventory) error {
	res, err := s.ExecContext(ctx, `UPDATE inventory SET film_id = ?, store_id = ?, last_update = CURRENT_TIMESTAMP WHERE inventory_id = ?`,
		refArg(i.Film), refArg(i.Store), i.ID)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	return mustAffect(res, "update", "inventory", i.ID)
}

func (r *InventoryRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM inventory WHERE inventory_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory: %w", err)
	}
	return mustAffect(res, "delete", "inventory", id)
}

func (r *InventoryRepo) CountByFilm(ctx context.Context, s *database.Session, filmID uint64) (int, error) {
	return count(ctx, s, "inventory", `SELECT COUNT(*) FROM inventory WHERE film_id = ?`, filmID)
}

func (r *InventoryRepo) CountByStore(ctx context.Context, s *database.Session, storeID uint64) (int, error) {
	return count(ctx, s, "inventory", `SELECT COUNT(*) FROM inventory WHERE store_id = ?`, storeID)
}
