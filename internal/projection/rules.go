// Package projection converts hydrated aggregates into the JSON views
// that leave the service.
//
// The model graph has cycles (customer, rental, payment, customer and
// so on). The views never do: an exclusion table names the edges that are
// dropped on export, and New refuses a table that leaves any path from
// any root able to reach a kind twice.
package projection

import (
	"fmt"
	"slices"
	"strings"
)

// Kind names an exported entity type.
type Kind string

const (
	KindCountry      Kind = "country"
	KindCity         Kind = "city"
	KindAddress      Kind = "address"
	KindLanguage     Kind = "language"
	KindActor        Kind = "actor"
	KindCategory     Kind = "category"
	KindFilm         Kind = "film"
	KindFilmActor    Kind = "film_actor"
	KindFilmCategory Kind = "film_category"
	KindInventory    Kind = "inventory"
	KindRental       Kind = "rental"
	KindPayment      Kind = "payment"
	KindCustomer     Kind = "customer"
	KindStore        Kind = "store"
	KindStaff        Kind = "staff"
)

// Edge is a relationship field of a kind and the kind it leads to.
type Edge struct {
	Field  string
	Target Kind
}

// Edges lists every relationship field a view can nest, per owner kind.
var Edges = map[Kind][]Edge{
	KindCity:         {{"country", KindCountry}},
	KindAddress:      {{"city", KindCity}},
	KindFilm:         {{"language", KindLanguage}, {"original_language", KindLanguage}, {"actors", KindFilmActor}, {"categories", KindFilmCategory}, {"inventory", KindInventory}},
	KindFilmActor:    {{"actor", KindActor}, {"film", KindFilm}},
	KindFilmCategory: {{"film", KindFilm}, {"category", KindCategory}},
	KindInventory:    {{"film", KindFilm}, {"store", KindStore}, {"rentals", KindRental}},
	KindRental:       {{"customer", KindCustomer}, {"inventory", KindInventory}, {"staff", KindStaff}, {"payments", KindPayment}},
	KindPayment:      {{"customer", KindCustomer}, {"staff", KindStaff}, {"rental", KindRental}},
	KindCustomer:     {{"store", KindStore}, {"address", KindAddress}, {"rentals", KindRental}, {"payments", KindPayment}},
	KindStore:        {{"manager", KindStaff}, {"address", KindAddress}, {"customers", KindCustomer}, {"inventory", KindInventory}, {"staff", KindStaff}},
	KindStaff:        {{"address", KindAddress}, {"store", KindStore}},
}

const (
	// Always drops the edge wherever the owner appears.
	Always Kind = "*"
	// Nested drops the edge unless the owner is the export root.
	Nested Kind = "nested"
)

// Rule drops Owner.Field from the export. Under is Always, Nested, or an
// ancestor kind: the edge is dropped when that kind sits above the owner
// on the path from the root.
type Rule struct {
	Owner Kind
	Field string
	Under Kind
}

// Rules is an exclusion table.
type Rules []Rule

// Excluded reports whether owner.field is dropped when owner is reached
// through path, the kinds from the root down to owner's parent.
func (r Rules) Excluded(owner Kind, field string, path []Kind) bool {
	for _, rule := range r {
		if rule.Owner != owner || rule.Field != field {
			continue
		}
		switch rule.Under {
		case Always:
			return true
		case Nested:
			if len(path) > 0 {
				return true
			}
		default:
			if slices.Contains(path, rule.Under) {
				return true
			}
		}
	}
	return false
}

// Check walks Edges from every kind and fails on the first path the
// rules leave open that reaches a kind already on it.
func (r Rules) Check() error {
	for _, root := range kinds() {
		if err := r.walk([]Kind{root}); err != nil {
			return err
		}
	}
	return nil
}

func (r Rules) walk(path []Kind) error {
	owner := path[len(path)-1]
	ancestors := path[:len(path)-1]
	for _, e := range Edges[owner] {
		if r.Excluded(owner, e.Field, ancestors) {
			continue
		}
		next := append(slices.Clone(path), e.Target)
		if slices.Contains(path, e.Target) {
			return fmt.Errorf("projection: cycle %s", render(next, e.Field))
		}
		if err := r.walk(next); err != nil {
			return err
		}
	}
	return nil
}

func render(path []Kind, last string) string {
	parts := make([]string, len(path))
	for i, k := range path {
		parts[i] = string(k)
	}
	return strings.Join(parts, " -> ") + " (via " + last + ")"
}

func kinds() []Kind {
	seen := map[Kind]bool{}
	for owner, edges := range Edges {
		seen[owner] = true
		for _, e := range edges {
			seen[e.Target] = true
		}
	}
	out := make([]Kind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// DefaultRules is the exclusion table used by the HTTP API.
var DefaultRules = Rules{
	// a customer's history is fetched through its own endpoints
	{KindCustomer, "rentals", Always},
	{KindCustomer, "payments", Always},
	// payments are leaves
	{KindPayment, "customer", Always},
	{KindPayment, "staff", Always},
	{KindPayment, "rental", Always},

	{KindStore, "customers", Nested},
	{KindStore, "inventory", Nested},
	{KindStore, "staff", Nested},

	{KindStaff, "store", KindStore},
	{KindCustomer, "store", KindStore},
	{KindInventory, "store", KindStore},
	{KindStore, "manager", KindStaff},

	{KindFilmActor, "film", KindFilm},
	{KindFilmCategory, "film", KindFilm},
	{KindInventory, "film", KindFilm},
	{KindFilm, "actors", KindFilmActor},
	{KindFilm, "categories", KindFilmCategory},

	{KindFilm, "inventory", KindInventory},
	{KindRental, "inventory", KindInventory},
	{KindInventory, "rentals", KindRental},
}
