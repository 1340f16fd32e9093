package model

import "time"

// Country is a row of the `country` table.
type Country struct {
	ID         uint64    // country.country_id
	Country    string    // country.country
	LastUpdate time.Time // country.last_update
}

func (c Country) Key() uint64 { return c.ID }

// City is a row of the `city` table. Country is hydrated only as part of
// the Address -> City -> Country chain.
type City struct {
	ID         uint64        // city.city_id
	City       string        // city.city
	Country    *Ref[Country] // city.country_id
	LastUpdate time.Time     // city.last_update
}

func (c City) Key() uint64 { return c.ID }

// Address describes a postal address shared by customers, staff and
// stores. Every address belongs to exactly one city.
//
// Fields:
//
//	ID         – primary key identifier.
//	Address    – first address line.
//	Address2   – optional second line.
//	District   – region or province.
//	City       – reference to the containing city.
//	PostalCode – optional postal code.
//	Phone      – contact phone number.
//	LastUpdate – timestamp of the last change.
type Address struct {
	ID         uint64     // address.address_id
	Address    string     // address.address
	Address2   *string    // address.address2 (nullable)
	District   string     // address.district
	City       *Ref[City] // address.city_id
	PostalCode *string    // address.postal_code (nullable)
	Phone      string     // address.phone
	LastUpdate time.Time  // address.last_update
}

func (a Address) Key() uint64 { return a.ID }
