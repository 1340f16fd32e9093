package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

var (
	ErrStoreNotFound = fmt.Errorf("store %w", ErrNotFound)
	ErrStaffNotFound = fmt.Errorf("staff %w", ErrNotFound)

	// ErrUsernameExists is returned when a staff username is already taken.
	ErrUsernameExists = fmt.Errorf("%w: username already exists", ErrConflict)
)

// StoreRepo reads and writes the store table.
type StoreRepo struct{}

const storeCols = `store_id, manager_staff_id, address_id, last_update`

func scanStore(s scanner) (*model.Store, error) {
	var (
		st               model.Store
		manager, address sql.NullInt64
	)
	if err := s.Scan(&st.ID, &manager, &address, &st.LastUpdate); err != nil {
		return nil, err
	}
	st.Manager = refOf[model.Staff](manager)
	st.Address = refOf[model.Address](address)
	return &st, nil
}

func (r *StoreRepo) Insert(ctx context.Context, s *database.Session, st *model.Store) (uint64, error) {
	res, err := s.ExecContext(ctx, `INSERT INTO store (manager_staff_id, address_id) VALUES (?, ?)`,
		refArg(st.Manager), refArg(st.Address))
	if err != nil {
		return 0, fmt.Errorf("insert store: %w", err)
	}
	id, err := insertedID(res, "store")
	if err != nil {
		return 0, err
	}
	st.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM store WHERE store_id = ?`, id).Scan(&st.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert store: %w", err)
	}
	return id, nil
}

func (r *StoreRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Store, error) {
	st, err := scanStore(s.QueryRowContext(ctx, `SELECT `+storeCols+` FROM store WHERE store_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrStoreNotFound)
	}
	return st, nil
}

func (r *StoreRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Store, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+storeCols+` FROM store ORDER BY store_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	return collect(rows, scanStore)
}

// FindByManager returns the stores a staff member manages.
func (r *StoreRepo) FindByManager(ctx context.Context, s *database.Session, staffID uint64) ([]*model.Store, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+storeCols+` FROM store WHERE manager_staff_id = ? ORDER BY store_id`, staffID)
	if err != nil {
		return nil, fmt.Errorf("list stores by manager: %w", err)
	}
	return collect(rows, scanStore)
}

func (r *StoreRepo) Update(ctx context.Context, s *database.Session, st *model.Store) error {
	res, err := s.ExecContext(ctx, `UPDATE store SET manager_staff_id = ?, address_id = ?, last_update = CURRENT_TIMESTAMP WHERE store_id = ?`,
		refArg(st.Manager), refArg(st.Address), st.ID)
	if err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	return mustAffect(res, "update", "store", st.ID)
}

func (r *StoreRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM store WHERE store_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return mustAffect(res, "delete", "store", id)
}

// StaffRepo reads and writes the staff table.
type StaffRepo struct{}

const staffCols = `staff_id, first_name, last_name, address_id, email, store_id, active, username, password, last_update`

func scanStaff(s scanner) (*model.Staff, error) {
	var (
		st              model.Staff
		address, store  sql.NullInt64
		email, password sql.NullString
	)
	if err := s.Scan(&st.ID, &st.FirstName, &st.LastName, &address, &email, &store, &st.Active, &st.Username, &password, &st.LastUpdate); err != nil {
		return nil, err
	}
	st.Address = refOf[model.Address](address)
	st.Store = refOf[model.Store](store)
	st.Email = strPtr(email)
	st.PasswordHash = strPtr(password)
	return &st, nil
}

// isDuplicate reports a unique-key violation from MySQL (1062) or SQLite.
func isDuplicate(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}

func (r *StaffRepo) Insert(ctx context.Context, s *database.Session, st *model.Staff) (uint64, error) {
	const q = `INSERT INTO staff (first_name, last_name, address_id, email, store_id, active, username, password)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.ExecContext(ctx, q, st.FirstName, st.LastName, refArg(st.Address), st.Email, refArg(st.Store),
		st.Active, st.Username, st.PasswordHash)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUsernameExists
		}
		return 0, fmt.Errorf("insert staff: %w", err)
	}
	id, err := insertedID(res, "staff")
	if err != nil {
		return 0, err
	}
	st.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM staff WHERE staff_id = ?`, id).Scan(&st.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert staff: %w", err)
	}
	return id, nil
}

func (r *StaffRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Staff, error) {
	st, err := scanStaff(s.QueryRowContext(ctx, `SELECT `+staffCols+` FROM staff WHERE staff_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrStaffNotFound)
	}
	return st, nil
}

// FindByUsername is used by login.
func (r *StaffRepo) FindByUsername(ctx context.Context, s *database.Session, username string) (*model.Staff, error) {
	st, err := scanStaff(s.QueryRowContext(ctx, `SELECT `+staffCols+` FROM staff WHERE username = ? LIMIT 1`, username))
	if err != nil {
		return nil, notFound(err, ErrStaffNotFound)
	}
	return st, nil
}

func (r *StaffRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Staff, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+staffCols+` FROM staff ORDER BY staff_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return collect(rows, scanStaff)
}

func (r *StaffRepo) FindByStore(ctx context.Context, s *database.Session, storeID uint64) ([]*model.Staff, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+staffCols+` FROM staff WHERE store_id = ? ORDER BY staff_id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("list staff by store: %w", err)
	}
	return collect(rows, scanStaff)
}

// Update writes every column except the password.
func (r *StaffRepo) Update(ctx context.Context, s *database.Session, st *model.Staff) error {
	const q = `UPDATE staff
	           SET first_name = ?, last_name = ?, address_id = ?, email = ?, store_id = ?, active = ?, username = ?,
	               last_update = CURRENT_TIMESTAMP
	           WHERE staff_id = ?`
	res, err := s.ExecContext(ctx, q, st.FirstName, st.LastName, refArg(st.Address), st.Email, refArg(st.Store),
		st.Active, st.Username, st.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrUsernameExists
		}
		return fmt.Errorf("update staff: %w", err)
	}
	return mustAffect(res, "update", "staff", st.ID)
}

// SetPassword stores a new bcrypt hash.
func (r *StaffRepo) SetPassword(ctx context.Context, s *database.Session, id uint64, hash string) error {
	res, err := s.ExecContext(ctx, `UPDATE staff SET password = ?, last_update = CURRENT_TIMESTAMP WHERE staff_id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("set staff password: %w", err)
	}
	return mustAffect(res, "update", "staff", id)
}

// SetStore moves a staff member to another store.
func (r *StaffRepo) SetStore(ctx context.Context, s *database.Session, id, storeID uint64) error {
	res, err := s.ExecContext(ctx, `UPDATE staff SET store_id = ?, last_update = CURRENT_TIMESTAMP WHERE staff_id = ?`, storeID, id)
	if err != nil {
		return fmt.Errorf("move staff: %w", err)
	}
	return mustAffect(res, "update", "staff", id)
}

func (r *StaffRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM staff WHERE staff_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return mustAffect(res, "delete", "staff", id)
}

func (r *StaffRepo) CountByStore(ctx context.Context, s *database.Session, storeID uint64) (int, error) {
	return count(ctx, s, "staff", `SELECT COUNT(*) FROM staff WHERE store_id = ?`, storeID)
}
