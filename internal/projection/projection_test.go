package projection_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-store/internal/model"
	"github.com/iliyamo/rental-store/internal/projection"
)

func TestDefaultRulesAreAcyclic(t *testing.T) {
	require.NoError(t, projection.DefaultRules.Check())
	assert.NotPanics(t, func() { projection.Default() })
}

func TestCheckRejectsOpenCycle(t *testing.T) {
	_, err := projection.New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	// dropping a single rule reopens customer -> rentals -> customer
	var rules projection.Rules
	for _, r := range projection.DefaultRules {
		if r.Owner == projection.KindCustomer && r.Field == "rentals" {
			continue
		}
		rules = append(rules, r)
	}
	assert.Error(t, rules.Check())
}

func TestExcluded(t *testing.T) {
	r := projection.DefaultRules
	assert.True(t, r.Excluded(projection.KindPayment, "customer", nil))
	assert.False(t, r.Excluded(projection.KindStore, "customers", nil))
	assert.True(t, r.Excluded(projection.KindStore, "customers", []projection.Kind{projection.KindCustomer}))
	assert.True(t, r.Excluded(projection.KindStaff, "store", []projection.Kind{projection.KindStore}))
	assert.False(t, r.Excluded(projection.KindStaff, "store", []projection.Kind{projection.KindRental}))
}

// graph builds a fully resolved model graph in which every back
// reference points at the same in-memory object.
type graph struct {
	customer *model.Customer
	film     *model.Film
	inv      *model.Inventory
	rental   *model.Rental
	payment  *model.Payment
	store    *model.Store
	staff    *model.Staff
	address  *model.Address
}

func newGraph() graph {
	country := &model.Country{ID: 1, Country: "Canada"}
	city := &model.City{ID: 1, City: "Lethbridge", Country: model.Resolved(country)}
	addr := &model.Address{ID: 1, Address: "47 MySakila Drive", District: "Alberta", City: model.Resolved(city), Phone: "555"}
	lang := &model.Language{ID: 1, Name: "English"}
	actor := &model.Actor{ID: 1, FirstName: "PENELOPE", LastName: "GUINESS"}
	cat := &model.Category{ID: 1, Name: "Documentary"}

	store := &model.Store{ID: 1, Address: model.Resolved(addr)}
	staff := &model.Staff{ID: 1, FirstName: "Mike", Username: "mike", Address: model.Resolved(addr), Store: model.Resolved(store)}
	store.Manager = model.Resolved(staff)

	film := &model.Film{ID: 1, Title: "ACADEMY DINOSAUR", Language: model.Resolved(lang),
		RentalRate: decimal.RequireFromString("0.99"), ReplacementCost: decimal.RequireFromString("20.99")}
	inv := &model.Inventory{ID: 1, Film: model.Resolved(film), Store: model.Resolved(store)}
	film.Inventory = []*model.Inventory{inv}
	film.Actors = []*model.FilmActor{{Actor: model.Resolved(actor), Film: model.Resolved(film)}}
	film.Categories = []*model.FilmCategory{{Film: model.Resolved(film), Category: model.Resolved(cat)}}

	customer := &model.Customer{ID: 1, FirstName: "MARY", LastName: "SMITH", Store: model.Resolved(store), Address: model.Resolved(addr)}
	rental := &model.Rental{ID: 1, Inventory: model.Resolved(inv), Customer: model.Resolved(customer), Staff: model.Resolved(staff)}
	payment := &model.Payment{ID: 1, Customer: model.Resolved(customer), Staff: model.Resolved(staff), Rental: model.Resolved(rental),
		Amount: decimal.NewFromInt(1)}
	rental.Payments = []*model.Payment{payment}
	customer.Rentals = []*model.Rental{rental}
	customer.Payments = []*model.Payment{payment}
	inv.Rentals = []*model.Rental{rental}
	store.Customers = []*model.Customer{customer}
	store.Inventory = []*model.Inventory{inv}
	store.Staff = []*model.Staff{staff}

	return graph{customer: customer, film: film, inv: inv, rental: rental, payment: payment, store: store, staff: staff, address: addr}
}

// keyKind maps the JSON keys that hold nested entities to their kind.
var keyKind = map[string]projection.Kind{
	"country": projection.KindCountry, "city": projection.KindCity, "address": projection.KindAddress,
	"language": projection.KindLanguage, "original_language": projection.KindLanguage,
	"actor": projection.KindActor, "category": projection.KindCategory,
	"film": projection.KindFilm, "actors": projection.KindFilmActor, "categories": projection.KindFilmCategory,
	"inventory": projection.KindInventory, "rental": projection.KindRental, "rentals": projection.KindRental,
	"payments": projection.KindPayment, "customer": projection.KindCustomer, "customers": projection.KindCustomer,
	"store": projection.KindStore, "manager": projection.KindStaff, "staff": projection.KindStaff,
}

func assertNoRevisit(t *testing.T, v any, path []projection.Kind) {
	t.Helper()
	switch node := v.(type) {
	case []any:
		for _, el := range node {
			assertNoRevisit(t, el, path)
		}
	case map[string]any:
		for key, child := range node {
			kind, ok := keyKind[key]
			if !ok {
				continue
			}
			if _, isObj := child.(map[string]any); !isObj {
				if _, isList := child.([]any); !isList {
					continue
				}
			}
			assert.NotContains(t, path, kind, "path %v revisits %s", path, kind)
			assertNoRevisit(t, child, append(append([]projection.Kind{}, path...), kind))
		}
	}
}

func TestEveryRootExportsAcyclic(t *testing.T) {
	p := projection.Default()
	g := newGraph()

	roots := map[projection.Kind]any{
		projection.KindCustomer:  p.Customer(g.customer),
		projection.KindFilm:      p.Film(g.film),
		projection.KindInventory: p.Inventory(g.inv),
		projection.KindRental:    p.Rental(g.rental),
		projection.KindPayment:   p.Payment(g.payment),
		projection.KindStore:     p.Store(g.store),
		projection.KindStaff:     p.Staff(g.staff),
		projection.KindAddress:   p.Address(g.address),
	}
	for kind, view := range roots {
		t.Run(string(kind), func(t *testing.T) {
			raw, err := json.Marshal(view)
			require.NoError(t, err)
			var decoded any
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assertNoRevisit(t, decoded, []projection.Kind{kind})
		})
	}
}

func TestViewsOmitAbsentFields(t *testing.T) {
	p := projection.Default()
	c := &model.Customer{
		ID:        7,
		Store:     model.Unresolved[model.Store](2),
		FirstName: "MARY",
		LastName:  "SMITH",
	}

	raw, err := json.Marshal(p.Customer(c))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.EqualValues(t, 2, got["store_id"])
	assert.NotContains(t, got, "store")
	assert.NotContains(t, got, "email")
	assert.NotContains(t, got, "address_id")
	assert.NotContains(t, got, "rentals")
}

func TestEmptyLoadedListIsKept(t *testing.T) {
	p := projection.Default()
	f := &model.Film{ID: 1, Title: "X", Actors: []*model.FilmActor{}}

	raw, err := json.Marshal(p.Film(f))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"actors":[]`)
	assert.NotContains(t, string(raw), `"categories"`)
	assert.NotContains(t, string(raw), `"original_language_id"`)
}

func TestStoreListsOnlyAtRoot(t *testing.T) {
	p := projection.Default()
	g := newGraph()

	root := p.Store(g.store)
	assert.Len(t, root.Customers, 1)
	assert.Len(t, root.Staff, 1)
	require.NotNil(t, root.Customers[0])
	assert.Nil(t, root.Customers[0].Store, "store is an ancestor")

	nested := p.Customer(g.customer).Store
	require.NotNil(t, nested)
	assert.Nil(t, nested.Customers)
	assert.Nil(t, nested.Inventory)
	assert.Nil(t, nested.Staff)
	assert.NotNil(t, nested.Manager)
}

func TestProjectionLeavesGraphUntouched(t *testing.T) {
	p := projection.Default()
	g := newGraph()

	v := p.Customer(g.customer)
	assert.Nil(t, v.Rentals)
	assert.Len(t, g.customer.Rentals, 1)
	assert.True(t, g.customer.Store.IsResolved())
}

func TestMoneyRendersTwoDecimals(t *testing.T) {
	p := projection.Default()
	g := newGraph()

	assert.Equal(t, "0.99", p.Film(g.film).RentalRate)
	assert.Equal(t, "1.00", p.Payment(g.payment).Amount)
	assert.Equal(t, uint64(1), p.Payment(g.payment).RentalID)
	assert.Nil(t, p.Payment(g.payment).Rental)
}

func TestEach(t *testing.T) {
	p := projection.Default()
	assert.Nil(t, projection.Each(nil, p.Actor))
	out := projection.Each([]*model.Actor{{ID: 1}, {ID: 2}}, p.Actor)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(2), out[1].ID)
}
