package model

import "time"

// Store is a rental location. It is managed by one staff member and owns
// its customers, inventory and staff, which the store hydrator loads as
// lists.
type Store struct {
	ID         uint64        // store.store_id
	Manager    *Ref[Staff]   // store.manager_staff_id
	Address    *Ref[Address] // store.address_id
	LastUpdate time.Time     // store.last_update

	Customers []*Customer
	Inventory []*Inventory
	Staff     []*Staff
}

func (s Store) Key() uint64 { return s.ID }

// Staff is an employee working at a store. PasswordHash holds a bcrypt
// hash and never leaves the service layer.
type Staff struct {
	ID           uint64        // staff.staff_id
	FirstName    string        // staff.first_name
	LastName     string        // staff.last_name
	Address      *Ref[Address] // staff.address_id
	Email        *string       // staff.email (nullable)
	Store        *Ref[Store]   // staff.store_id
	Active       bool          // staff.active
	Username     string        // staff.username
	PasswordHash *string       // staff.password (nullable)
	LastUpdate   time.Time     // staff.last_update
}

func (s Staff) Key() uint64 { return s.ID }

// Inventory is one physical copy of a film held by a store.
type Inventory struct {
	ID         uint64      // inventory.inventory_id
	Film       *Ref[Film]  // inventory.film_id
	Store      *Ref[Store] // inventory.store_id
	LastUpdate time.Time   // inventory.last_update

	Rentals []*Rental
}

func (i Inventory) Key() uint64 { return i.ID }

// StoreAvailability summarises copies of one film at one store.
type StoreAvailability struct {
	StoreID   uint64
	Total     int
	Rented    int
	Available int
}
