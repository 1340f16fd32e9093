// Package testdb opens throwaway SQLite databases with the rental schema
// for package tests. It is imported only from _test.go files.
package testdb

import (
	"database/sql"
	_ "embed"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-store/internal/database"
)

//go:embed schema.sql
var schemaSQL string

// Open creates a temp-file database with the schema applied. The pool is
// closed when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rental.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_loc=UTC")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.SetMaxOpenConns(4)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	return db
}

// UnitOfWork returns a unit of work over db with a short acquire timeout
// and a silent logger.
func UnitOfWork(db *sql.DB) *database.UnitOfWork {
	return database.NewUnitOfWork(db, time.Second, zerolog.Nop())
}

// Exec runs a statement outside any unit of work and returns the
// generated id.
func Exec(t *testing.T, db *sql.DB, query string, args ...any) uint64 {
	t.Helper()
	res, err := db.Exec(query, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

// Count returns SELECT COUNT(*) FROM table.
func Count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// Fixture holds ids of a small connected data set: one country, city and
// language, one store managed by one staff member, one film with three
// copies in the store, one actor, one category and one customer.
type Fixture struct {
	Country, City             uint64
	StoreAddress, StaffAddr   uint64
	CustomerAddr              uint64
	Language                  uint64
	Store, Manager            uint64
	Film                      uint64
	Inventory                 [3]uint64
	Actor, Category, Customer uint64
}

// Seed inserts the fixture rows.
func Seed(t *testing.T, db *sql.DB) Fixture {
	t.Helper()
	var f Fixture
	f.Country = Exec(t, db, `INSERT INTO country (country) VALUES ('Canada')`)
	f.City = Exec(t, db, `INSERT INTO city (city, country_id) VALUES ('Lethbridge', ?)`, f.Country)
	f.StoreAddress = Exec(t, db, `INSERT INTO address (address, district, city_id, phone) VALUES ('47 MySakila Drive', 'Alberta', ?, '555-0100')`, f.City)
	f.StaffAddr = Exec(t, db, `INSERT INTO address (address, district, city_id, phone) VALUES ('23 Workhaven Lane', 'Alberta', ?, '555-0101')`, f.City)
	f.CustomerAddr = Exec(t, db, `INSERT INTO address (address, district, city_id, postal_code, phone) VALUES ('1913 Hanoi Way', 'Alberta', ?, '35200', '555-0102')`, f.City)
	f.Language = Exec(t, db, `INSERT INTO language (name) VALUES ('English')`)

	// staff and store reference each other; the store id is known up front
	// because the table is empty.
	f.Manager = Exec(t, db, `INSERT INTO staff (first_name, last_name, address_id, email, store_id, active, username, password)
		VALUES ('Mike', 'Hillyer', ?, 'mike@sakila.example', 1, 1, 'mike', NULL)`, f.StaffAddr)
	f.Store = Exec(t, db, `INSERT INTO store (manager_staff_id, address_id) VALUES (?, ?)`, f.Manager, f.StoreAddress)

	f.Film = Exec(t, db, `INSERT INTO film (title, description, release_year, language_id, rental_duration, rental_rate, length, replacement_cost, rating)
		VALUES ('ACADEMY DINOSAUR', 'An epic drama', 2006, ?, 6, 0.99, 86, 20.99, 'PG')`, f.Language)
	for i := range f.Inventory {
		f.Inventory[i] = Exec(t, db, `INSERT INTO inventory (film_id, store_id) VALUES (?, ?)`, f.Film, f.Store)
	}
	f.Actor = Exec(t, db, `INSERT INTO actor (first_name, last_name) VALUES ('PENELOPE', 'GUINESS')`)
	Exec(t, db, `INSERT INTO film_actor (actor_id, film_id) VALUES (?, ?)`, f.Actor, f.Film)
	f.Category = Exec(t, db, `INSERT INTO category (name) VALUES ('Documentary')`)
	Exec(t, db, `INSERT INTO film_category (film_id, category_id) VALUES (?, ?)`, f.Film, f.Category)

	f.Customer = Exec(t, db, `INSERT INTO customer (store_id, first_name, last_name, email, address_id, active, create_date)
		VALUES (?, 'MARY', 'SMITH', 'mary.smith@sakila.example', ?, 1, CURRENT_TIMESTAMP)`, f.Store, f.CustomerAddr)
	return f
}

// Rent inserts a rental of inventory by customer. A nil return date
// leaves the rental open.
func Rent(t *testing.T, db *sql.DB, inventory, customer, staff uint64, rentedAt time.Time, returned *time.Time) uint64 {
	t.Helper()
	return Exec(t, db, `INSERT INTO rental (rental_date, inventory_id, customer_id, return_date, staff_id) VALUES (?, ?, ?, ?, ?)`,
		rentedAt.UTC(), inventory, customer, returned, staff)
}

// Pay inserts a payment.
func Pay(t *testing.T, db *sql.DB, customer, staff, rental uint64, amount string) uint64 {
	t.Helper()
	var rentalID any
	if rental != 0 {
		rentalID = rental
	}
	return Exec(t, db, `INSERT INTO payment (customer_id, staff_id, rental_id, amount, payment_date) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		customer, staff, rentalID, amount)
}
