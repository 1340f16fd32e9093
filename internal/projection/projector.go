package projection

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/rental-store/internal/model"
)

// Projector builds views under an exclusion table. It only reads the
// model graph.
type Projector struct {
	rules Rules
}

// New returns a projector for rules, or the cycle Check found.
func New(rules Rules) (*Projector, error) {
	if err := rules.Check(); err != nil {
		return nil, err
	}
	return &Projector{rules: slices.Clone(rules)}, nil
}

// Default returns the projector for DefaultRules.
func Default() *Projector {
	p, err := New(DefaultRules)
	if err != nil {
		panic(err)
	}
	return p
}

// Each projects a list with fn. A nil list stays nil.
func Each[M any, V any](in []*M, fn func(*M) *V) []*V {
	if in == nil {
		return nil
	}
	out := make([]*V, len(in))
	for i, m := range in {
		out[i] = fn(m)
	}
	return out
}

func (p *Projector) keep(owner Kind, field string, path []Kind) bool {
	return !p.rules.Excluded(owner, field, path)
}

// with appends k to a copy of path.
func with(path []Kind, k Kind) []Kind {
	return append(slices.Clip(path), k)
}

func nest[T model.Keyed, V any](ref *model.Ref[T], keep bool, path []Kind, fn func(*T, []Kind) *V) *V {
	if !keep {
		return nil
	}
	v, ok := ref.Get()
	if !ok {
		return nil
	}
	return fn(v, path)
}

func nestAll[M any, V any](in []*M, keep bool, path []Kind, fn func(*M, []Kind) *V) []*V {
	if !keep || in == nil {
		return nil
	}
	out := make([]*V, len(in))
	for i, m := range in {
		out[i] = fn(m, path)
	}
	return out
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func (p *Projector) Country(c *model.Country) *CountryView {
	return p.country(c, nil)
}

func (p *Projector) City(c *model.City) *CityView {
	return p.city(c, nil)
}

func (p *Projector) Address(a *model.Address) *AddressView {
	return p.address(a, nil)
}

func (p *Projector) Language(l *model.Language) *LanguageView {
	return p.language(l, nil)
}

func (p *Projector) Actor(a *model.Actor) *ActorView {
	return p.actor(a, nil)
}

func (p *Projector) Category(c *model.Category) *CategoryView {
	return p.category(c, nil)
}

func (p *Projector) Film(f *model.Film) *FilmView {
	return p.film(f, nil)
}

func (p *Projector) Inventory(i *model.Inventory) *InventoryView {
	return p.inventory(i, nil)
}

func (p *Projector) Rental(r *model.Rental) *RentalView {
	return p.rental(r, nil)
}

func (p *Projector) Payment(m *model.Payment) *PaymentView {
	return p.payment(m, nil)
}

func (p *Projector) Customer(c *model.Customer) *CustomerView {
	return p.customer(c, nil)
}

func (p *Projector) Store(s *model.Store) *StoreView {
	return p.store(s, nil)
}

func (p *Projector) Staff(s *model.Staff) *StaffView {
	return p.staff(s, nil)
}

func (p *Projector) Availability(in []model.StoreAvailability) []*AvailabilityView {
	out := make([]*AvailabilityView, len(in))
	for i, a := range in {
		out[i] = &AvailabilityView{StoreID: a.StoreID, Total: a.Total, Rented: a.Rented, Available: a.Available}
	}
	return out
}

func (p *Projector) country(c *model.Country, _ []Kind) *CountryView {
	return &CountryView{ID: c.ID, Country: c.Country, LastUpdate: c.LastUpdate}
}

func (p *Projector) city(c *model.City, path []Kind) *CityView {
	here := with(path, KindCity)
	return &CityView{
		ID:         c.ID,
		City:       c.City,
		CountryID:  c.Country.ID(),
		Country:    nest(c.Country, p.keep(KindCity, "country", path), here, p.country),
		LastUpdate: c.LastUpdate,
	}
}

func (p *Projector) address(a *model.Address, path []Kind) *AddressView {
	here := with(path, KindAddress)
	return &AddressView{
		ID:         a.ID,
		Address:    a.Address,
		Address2:   a.Address2,
		District:   a.District,
		CityID:     a.City.ID(),
		City:       nest(a.City, p.keep(KindAddress, "city", path), here, p.city),
		PostalCode: a.PostalCode,
		Phone:      a.Phone,
		LastUpdate: a.LastUpdate,
	}
}

func (p *Projector) language(l *model.Language, _ []Kind) *LanguageView {
	return &LanguageView{ID: l.ID, Name: l.Name, LastUpdate: l.LastUpdate}
}

func (p *Projector) actor(a *model.Actor, _ []Kind) *ActorView {
	return &ActorView{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, LastUpdate: a.LastUpdate}
}

func (p *Projector) category(c *model.Category, _ []Kind) *CategoryView {
	return &CategoryView{ID: c.ID, Name: c.Name, LastUpdate: c.LastUpdate}
}

func (p *Projector) film(f *model.Film, path []Kind) *FilmView {
	here := with(path, KindFilm)
	return &FilmView{
		ID:                 f.ID,
		Title:              f.Title,
		Description:        f.Description,
		ReleaseYear:        f.ReleaseYear,
		LanguageID:         f.Language.ID(),
		Language:           nest(f.Language, p.keep(KindFilm, "language", path), here, p.language),
		OriginalLanguageID: f.OriginalLanguage.ID(),
		OriginalLanguage:   nest(f.OriginalLanguage, p.keep(KindFilm, "original_language", path), here, p.language),
		RentalDuration:     f.RentalDuration,
		RentalRate:         money(f.RentalRate),
		Length:             f.Length,
		ReplacementCost:    money(f.ReplacementCost),
		Rating:             f.Rating,
		SpecialFeatures:    f.SpecialFeatures,
		LastUpdate:         f.LastUpdate,
		Actors:             nestAll(f.Actors, p.keep(KindFilm, "actors", path), here, p.filmActor),
		Categories:         nestAll(f.Categories, p.keep(KindFilm, "categories", path), here, p.filmCategory),
		Inventory:          nestAll(f.Inventory, p.keep(KindFilm, "inventory", path), here, p.inventory),
	}
}

func (p *Projector) filmActor(fa *model.FilmActor, path []Kind) *FilmActorView {
	here := with(path, KindFilmActor)
	return &FilmActorView{
		ActorID:    fa.Actor.ID(),
		Actor:      nest(fa.Actor, p.keep(KindFilmActor, "actor", path), here, p.actor),
		FilmID:     fa.Film.ID(),
		Film:       nest(fa.Film, p.keep(KindFilmActor, "film", path), here, p.film),
		LastUpdate: fa.LastUpdate,
	}
}

func (p *Projector) filmCategory(fc *model.FilmCategory, path []Kind) *FilmCategoryView {
	here := with(path, KindFilmCategory)
	return &FilmCategoryView{
		FilmID:     fc.Film.ID(),
		Film:       nest(fc.Film, p.keep(KindFilmCategory, "film", path), here, p.film),
		CategoryID: fc.Category.ID(),
		Category:   nest(fc.Category, p.keep(KindFilmCategory, "category", path), here, p.category),
		LastUpdate: fc.LastUpdate,
	}
}

func (p *Projector) inventory(i *model.Inventory, path []Kind) *InventoryView {
	here := with(path, KindInventory)
	return &InventoryView{
		ID:         i.ID,
		FilmID:     i.Film.ID(),
		Film:       nest(i.Film, p.keep(KindInventory, "film", path), here, p.film),
		StoreID:    i.Store.ID(),
		Store:      nest(i.Store, p.keep(KindInventory, "store", path), here, p.store),
		LastUpdate: i.LastUpdate,
		Rentals:    nestAll(i.Rentals, p.keep(KindInventory, "rentals", path), here, p.rental),
	}
}

func (p *Projector) rental(r *model.Rental, path []Kind) *RentalView {
	here := with(path, KindRental)
	return &RentalView{
		ID:          r.ID,
		RentalDate:  r.RentalDate,
		InventoryID: r.Inventory.ID(),
		Inventory:   nest(r.Inventory, p.keep(KindRental, "inventory", path), here, p.inventory),
		CustomerID:  r.Customer.ID(),
		Customer:    nest(r.Customer, p.keep(KindRental, "customer", path), here, p.customer),
		ReturnDate:  r.ReturnDate,
		StaffID:     r.Staff.ID(),
		Staff:       nest(r.Staff, p.keep(KindRental, "staff", path), here, p.staff),
		LastUpdate:  r.LastUpdate,
		Payments:    nestAll(r.Payments, p.keep(KindRental, "payments", path), here, p.payment),
	}
}

func (p *Projector) payment(m *model.Payment, path []Kind) *PaymentView {
	here := with(path, KindPayment)
	return &PaymentView{
		ID:          m.ID,
		CustomerID:  m.Customer.ID(),
		Customer:    nest(m.Customer, p.keep(KindPayment, "customer", path), here, p.customer),
		StaffID:     m.Staff.ID(),
		Staff:       nest(m.Staff, p.keep(KindPayment, "staff", path), here, p.staff),
		RentalID:    m.Rental.ID(),
		Rental:      nest(m.Rental, p.keep(KindPayment, "rental", path), here, p.rental),
		Amount:      money(m.Amount),
		PaymentDate: m.PaymentDate,
		LastUpdate:  m.LastUpdate,
	}
}

func (p *Projector) customer(c *model.Customer, path []Kind) *CustomerView {
	here := with(path, KindCustomer)
	return &CustomerView{
		ID:         c.ID,
		StoreID:    c.Store.ID(),
		Store:      nest(c.Store, p.keep(KindCustomer, "store", path), here, p.store),
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		AddressID:  c.Address.ID(),
		Address:    nest(c.Address, p.keep(KindCustomer, "address", path), here, p.address),
		Active:     c.Active,
		CreateDate: c.CreateDate,
		LastUpdate: c.LastUpdate,
		Rentals:    nestAll(c.Rentals, p.keep(KindCustomer, "rentals", path), here, p.rental),
		Payments:   nestAll(c.Payments, p.keep(KindCustomer, "payments", path), here, p.payment),
	}
}

func (p *Projector) store(s *model.Store, path []Kind) *StoreView {
	here := with(path, KindStore)
	return &StoreView{
		ID:         s.ID,
		ManagerID:  s.Manager.ID(),
		Manager:    nest(s.Manager, p.keep(KindStore, "manager", path), here, p.staff),
		AddressID:  s.Address.ID(),
		Address:    nest(s.Address, p.keep(KindStore, "address", path), here, p.address),
		LastUpdate: s.LastUpdate,
		Customers:  nestAll(s.Customers, p.keep(KindStore, "customers", path), here, p.customer),
		Inventory:  nestAll(s.Inventory, p.keep(KindStore, "inventory", path), here, p.inventory),
		Staff:      nestAll(s.Staff, p.keep(KindStore, "staff", path), here, p.staff),
	}
}

func (p *Projector) staff(s *model.Staff, path []Kind) *StaffView {
	here := with(path, KindStaff)
	return &StaffView{
		ID:         s.ID,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		AddressID:  s.Address.ID(),
		Address:    nest(s.Address, p.keep(KindStaff, "address", path), here, p.address),
		Email:      s.Email,
		StoreID:    s.Store.ID(),
		Store:      nest(s.Store, p.keep(KindStaff, "store", path), here, p.store),
		Active:     s.Active,
		Username:   s.Username,
		LastUpdate: s.LastUpdate,
	}
}
