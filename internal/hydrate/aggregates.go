package hydrate

import (
	"context"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// Customer loads a customer with its store, address chain, rentals and
// payments.
func (h *Hydrator) Customer(ctx context.Context, s *database.Session, id uint64) (*model.Customer, error) {
	c, err := h.repos.Customers.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillCustomer(ctx, s, c)
	return c, nil
}

func (h *Hydrator) FillCustomer(ctx context.Context, s *database.Session, c *model.Customer) {
	resolve(ctx, h, s, "customer.store", c.Store, h.repos.Stores.FindByID)
	h.addressRef(ctx, s, c.Address)
	c.Rentals = collect(ctx, h, s, "customer.rentals", c.ID, h.repos.Rentals.FindByCustomer)
	c.Payments = collect(ctx, h, s, "customer.payments", c.ID, h.repos.Payments.FindByCustomer)
}

// Film loads a film with its languages, actors, categories and copies.
func (h *Hydrator) Film(ctx context.Context, s *database.Session, id uint64) (*model.Film, error) {
	f, err := h.repos.Films.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillFilm(ctx, s, f)
	return f, nil
}

func (h *Hydrator) FillFilm(ctx context.Context, s *database.Session, f *model.Film) {
	resolve(ctx, h, s, "film.language", f.Language, h.repos.Languages.FindByID)
	resolve(ctx, h, s, "film.original_language", f.OriginalLanguage, h.repos.Languages.FindByID)

	f.Actors = collect(ctx, h, s, "film.actors", f.ID, h.repos.FilmActors.FindByFilm)
	for _, fa := range f.Actors {
		resolve(ctx, h, s, "film_actor.actor", fa.Actor, h.repos.Actors.FindByID)
	}
	f.Categories = collect(ctx, h, s, "film.categories", f.ID, h.repos.FilmCategories.FindByFilm)
	for _, fc := range f.Categories {
		resolve(ctx, h, s, "film_category.category", fc.Category, h.repos.Categories.FindByID)
	}
	f.Inventory = collect(ctx, h, s, "film.inventory", f.ID, h.repos.Inventory.FindByFilm)
}

// Inventory loads a copy with its film, store and rental history.
func (h *Hydrator) Inventory(ctx context.Context, s *database.Session, id uint64) (*model.Inventory, error) {
	i, err := h.repos.Inventory.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillInventory(ctx, s, i)
	return i, nil
}

func (h *Hydrator) FillInventory(ctx context.Context, s *database.Session, i *model.Inventory) {
	resolve(ctx, h, s, "inventory.film", i.Film, h.repos.Films.FindByID)
	resolve(ctx, h, s, "inventory.store", i.Store, h.repos.Stores.FindByID)
	i.Rentals = collect(ctx, h, s, "inventory.rentals", i.ID, h.repos.Rentals.FindByInventory)
}

// Rental loads a rental with its customer, copy, staff member and
// payments. The payments keep their rental as a stub.
func (h *Hydrator) Rental(ctx context.Context, s *database.Session, id uint64) (*model.Rental, error) {
	r, err := h.repos.Rentals.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillRental(ctx, s, r)
	return r, nil
}

func (h *Hydrator) FillRental(ctx context.Context, s *database.Session, r *model.Rental) {
	resolve(ctx, h, s, "rental.customer", r.Customer, h.repos.Customers.FindByID)
	resolve(ctx, h, s, "rental.inventory", r.Inventory, h.repos.Inventory.FindByID)
	resolve(ctx, h, s, "rental.staff", r.Staff, h.repos.Staff.FindByID)
	r.Payments = collect(ctx, h, s, "rental.payments", r.ID, h.repos.Payments.FindByRental)
}

// Payment loads a payment with its customer, staff member and rental.
func (h *Hydrator) Payment(ctx context.Context, s *database.Session, id uint64) (*model.Payment, error) {
	p, err := h.repos.Payments.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillPayment(ctx, s, p)
	return p, nil
}

func (h *Hydrator) FillPayment(ctx context.Context, s *database.Session, p *model.Payment) {
	resolve(ctx, h, s, "payment.customer", p.Customer, h.repos.Customers.FindByID)
	resolve(ctx, h, s, "payment.staff", p.Staff, h.repos.Staff.FindByID)
	resolve(ctx, h, s, "payment.rental", p.Rental, h.repos.Rentals.FindByID)
}

// Store loads a store with its manager, address chain, customers,
// inventory and staff.
func (h *Hydrator) Store(ctx context.Context, s *database.Session, id uint64) (*model.Store, error) {
	st, err := h.repos.Stores.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillStore(ctx, s, st)
	return st, nil
}

func (h *Hydrator) FillStore(ctx context.Context, s *database.Session, st *model.Store) {
	resolve(ctx, h, s, "store.manager", st.Manager, h.repos.Staff.FindByID)
	h.addressRef(ctx, s, st.Address)
	st.Customers = collect(ctx, h, s, "store.customers", st.ID, h.repos.Customers.FindByStore)
	st.Inventory = collect(ctx, h, s, "store.inventory", st.ID, h.repos.Inventory.FindByStore)
	st.Staff = collect(ctx, h, s, "store.staff", st.ID, h.repos.Staff.FindByStore)
}

// Staff loads a staff member with the address chain and store.
func (h *Hydrator) Staff(ctx context.Context, s *database.Session, id uint64) (*model.Staff, error) {
	st, err := h.repos.Staff.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillStaff(ctx, s, st)
	return st, nil
}

func (h *Hydrator) FillStaff(ctx context.Context, s *database.Session, st *model.Staff) {
	h.addressRef(ctx, s, st.Address)
	resolve(ctx, h, s, "staff.store", st.Store, h.repos.Stores.FindByID)
}

// City loads a city with its country.
func (h *Hydrator) City(ctx context.Context, s *database.Session, id uint64) (*model.City, error) {
	c, err := h.repos.Cities.FindByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	h.FillCity(ctx, s, c)
	return c, nil
}

func (h *Hydrator) FillCity(ctx context.Context, s *database.Session, c *model.City) {
	resolve(ctx, h, s, "city.country", c.Country, h.repos.Countries.FindByID)
}
