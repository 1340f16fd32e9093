package projection

import "time"

// View types are what the HTTP API encodes. Nullable scalars and
// references are omitted when absent. Collection fields are omitted when
// excluded or not loaded and encoded as [] when loaded and empty.

type CountryView struct {
	ID         uint64    `json:"country_id"`
	Country    string    `json:"country"`
	LastUpdate time.Time `json:"last_update"`
}

type CityView struct {
	ID         uint64       `json:"city_id"`
	City       string       `json:"city"`
	CountryID  uint64       `json:"country_id,omitempty"`
	Country    *CountryView `json:"country,omitempty"`
	LastUpdate time.Time    `json:"last_update"`
}

type AddressView struct {
	ID         uint64    `json:"address_id"`
	Address    string    `json:"address"`
	Address2   *string   `json:"address2,omitempty"`
	District   string    `json:"district"`
	CityID     uint64    `json:"city_id,omitempty"`
	City       *CityView `json:"city,omitempty"`
	PostalCode *string   `json:"postal_code,omitempty"`
	Phone      string    `json:"phone"`
	LastUpdate time.Time `json:"last_update"`
}

type LanguageView struct {
	ID         uint64    `json:"language_id"`
	Name       string    `json:"name"`
	LastUpdate time.Time `json:"last_update"`
}

type ActorView struct {
	ID         uint64    `json:"actor_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	LastUpdate time.Time `json:"last_update"`
}

type CategoryView struct {
	ID         uint64    `json:"category_id"`
	Name       string    `json:"name"`
	LastUpdate time.Time `json:"last_update"`
}

type FilmView struct {
	ID                 uint64              `json:"film_id"`
	Title              string              `json:"title"`
	Description        *string             `json:"description,omitempty"`
	ReleaseYear        *int                `json:"release_year,omitempty"`
	LanguageID         uint64              `json:"language_id,omitempty"`
	Language           *LanguageView       `json:"language,omitempty"`
	OriginalLanguageID uint64              `json:"original_language_id,omitempty"`
	OriginalLanguage   *LanguageView       `json:"original_language,omitempty"`
	RentalDuration     int                 `json:"rental_duration"`
	RentalRate         string              `json:"rental_rate"`
	Length             *int                `json:"length,omitempty"`
	ReplacementCost    string              `json:"replacement_cost"`
	Rating             *string             `json:"rating,omitempty"`
	SpecialFeatures    *string             `json:"special_features,omitempty"`
	LastUpdate         time.Time           `json:"last_update"`
	Actors             []*FilmActorView    `json:"actors,omitzero"`
	Categories         []*FilmCategoryView `json:"categories,omitzero"`
	Inventory          []*InventoryView    `json:"inventory,omitzero"`
}

type FilmActorView struct {
	ActorID    uint64     `json:"actor_id,omitempty"`
	Actor      *ActorView `json:"actor,omitempty"`
	FilmID     uint64     `json:"film_id,omitempty"`
	Film       *FilmView  `json:"film,omitempty"`
	LastUpdate time.Time  `json:"last_update"`
}

type FilmCategoryView struct {
	FilmID     uint64        `json:"film_id,omitempty"`
	Film       *FilmView     `json:"film,omitempty"`
	CategoryID uint64        `json:"category_id,omitempty"`
	Category   *CategoryView `json:"category,omitempty"`
	LastUpdate time.Time     `json:"last_update"`
}

type InventoryView struct {
	ID         uint64        `json:"inventory_id"`
	FilmID     uint64        `json:"film_id,omitempty"`
	Film       *FilmView     `json:"film,omitempty"`
	StoreID    uint64        `json:"store_id,omitempty"`
	Store      *StoreView    `json:"store,omitempty"`
	LastUpdate time.Time     `json:"last_update"`
	Rentals    []*RentalView `json:"rentals,omitzero"`
}

type RentalView struct {
	ID          uint64         `json:"rental_id"`
	RentalDate  time.Time      `json:"rental_date"`
	InventoryID uint64         `json:"inventory_id,omitempty"`
	Inventory   *InventoryView `json:"inventory,omitempty"`
	CustomerID  uint64         `json:"customer_id,omitempty"`
	Customer    *CustomerView  `json:"customer,omitempty"`
	ReturnDate  *time.Time     `json:"return_date,omitempty"`
	StaffID     uint64         `json:"staff_id,omitempty"`
	Staff       *StaffView     `json:"staff,omitempty"`
	LastUpdate  time.Time      `json:"last_update"`
	Payments    []*PaymentView `json:"payments,omitzero"`
}

type PaymentView struct {
	ID          uint64        `json:"payment_id"`
	CustomerID  uint64        `json:"customer_id,omitempty"`
	Customer    *CustomerView `json:"customer,omitempty"`
	StaffID     uint64        `json:"staff_id,omitempty"`
	Staff       *StaffView    `json:"staff,omitempty"`
	RentalID    uint64        `json:"rental_id,omitempty"`
	Rental      *RentalView   `json:"rental,omitempty"`
	Amount      string        `json:"amount"`
	PaymentDate time.Time     `json:"payment_date"`
	LastUpdate  time.Time     `json:"last_update"`
}

type CustomerView struct {
	ID         uint64         `json:"customer_id"`
	StoreID    uint64         `json:"store_id,omitempty"`
	Store      *StoreView     `json:"store,omitempty"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Email      *string        `json:"email,omitempty"`
	AddressID  uint64         `json:"address_id,omitempty"`
	Address    *AddressView   `json:"address,omitempty"`
	Active     bool           `json:"active"`
	CreateDate time.Time      `json:"create_date"`
	LastUpdate time.Time      `json:"last_update"`
	Rentals    []*RentalView  `json:"rentals,omitzero"`
	Payments   []*PaymentView `json:"payments,omitzero"`
}

type StoreView struct {
	ID         uint64           `json:"store_id"`
	ManagerID  uint64           `json:"manager_staff_id,omitempty"`
	Manager    *StaffView       `json:"manager,omitempty"`
	AddressID  uint64           `json:"address_id,omitempty"`
	Address    *AddressView     `json:"address,omitempty"`
	LastUpdate time.Time        `json:"last_update"`
	Customers  []*CustomerView  `json:"customers,omitzero"`
	Inventory  []*InventoryView `json:"inventory,omitzero"`
	Staff      []*StaffView     `json:"staff,omitzero"`
}

// StaffView never carries the password hash.
type StaffView struct {
	ID         uint64       `json:"staff_id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	AddressID  uint64       `json:"address_id,omitempty"`
	Address    *AddressView `json:"address,omitempty"`
	Email      *string      `json:"email,omitempty"`
	StoreID    uint64       `json:"store_id,omitempty"`
	Store      *StoreView   `json:"store,omitempty"`
	Active     bool         `json:"active"`
	Username   string       `json:"username"`
	LastUpdate time.Time    `json:"last_update"`
}

type AvailabilityView struct {
	StoreID   uint64 `json:"store_id"`
	Total     int    `json:"total"`
	Rented    int    `json:"rented"`
	Available int    `json:"available"`
}

type BalanceView struct {
	CustomerID  uint64 `json:"customer_id"`
	Paid        string `json:"paid"`
	OpenRentals int    `json:"open_rentals"`
}
