package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a store member who rents films. Rentals and Payments are
// loaded by the customer hydrator; their elements keep the customer as a
// stub so the graph stays acyclic.
type Customer struct {
	ID         uint64        // customer.customer_id
	Store      *Ref[Store]   // customer.store_id
	FirstName  string        // customer.first_name
	LastName   string        // customer.last_name
	Email      *string       // customer.email (nullable)
	Address    *Ref[Address] // customer.address_id
	Active     bool          // customer.active
	CreateDate time.Time     // customer.create_date
	LastUpdate time.Time     // customer.last_update

	Rentals  []*Rental
	Payments []*Payment
}

func (c Customer) Key() uint64 { return c.ID }

// Rental records one inventory copy lent to a customer. ReturnDate is nil
// while the copy is out.
type Rental struct {
	ID         uint64          // rental.rental_id
	RentalDate time.Time       // rental.rental_date
	Inventory  *Ref[Inventory] // rental.inventory_id
	Customer   *Ref[Customer]  // rental.customer_id
	ReturnDate *time.Time      // rental.return_date (nullable)
	Staff      *Ref[Staff]     // rental.staff_id
	LastUpdate time.Time       // rental.last_update

	Payments []*Payment
}

func (r Rental) Key() uint64 { return r.ID }

// Open reports whether the rented copy has not been returned yet.
func (r Rental) Open() bool { return r.ReturnDate == nil }

// Payment is money received from a customer, optionally for a rental.
type Payment struct {
	ID          uint64          // payment.payment_id
	Customer    *Ref[Customer]  // payment.customer_id
	Staff       *Ref[Staff]     // payment.staff_id
	Rental      *Ref[Rental]    // payment.rental_id (nullable)
	Amount      decimal.Decimal // payment.amount
	PaymentDate time.Time       // payment.payment_date
	LastUpdate  time.Time       // payment.last_update
}

func (p Payment) Key() uint64 { return p.ID }
