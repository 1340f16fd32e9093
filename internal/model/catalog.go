package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Language is a row of the `language` table.
type Language struct {
	ID         uint64    // language.language_id
	Name       string    // language.name
	LastUpdate time.Time // language.last_update
}

func (l Language) Key() uint64 { return l.ID }

// Actor is a row of the `actor` table.
type Actor struct {
	ID         uint64    // actor.actor_id
	FirstName  string    // actor.first_name
	LastName   string    // actor.last_name
	LastUpdate time.Time // actor.last_update
}

func (a Actor) Key() uint64 { return a.ID }

// Category is a row of the `category` table.
type Category struct {
	ID         uint64    // category.category_id
	Name       string    // category.name
	LastUpdate time.Time // category.last_update
}

func (c Category) Key() uint64 { return c.ID }

// Film is the catalog entry that inventory copies are made of. Rates and
// costs are exact decimals as stored in the DECIMAL columns.
//
// Fields:
//
//	ID                 – primary key identifier.
//	Title              – film title.
//	Description        – optional synopsis.
//	ReleaseYear        – optional release year.
//	Language           – spoken language.
//	OriginalLanguage   – optional original language.
//	RentalDuration     – rental period in days.
//	RentalRate         – price of one rental period.
//	Length             – optional running time in minutes.
//	ReplacementCost    – charge for a lost copy.
//	Rating             – optional MPAA rating (G, PG, PG-13, R, NC-17).
//	SpecialFeatures    – optional comma separated feature list.
//	Actors, Categories – join rows, loaded by the film hydrator.
//	Inventory          – copies of the film across stores.
type Film struct {
	ID               uint64          // film.film_id
	Title            string          // film.title
	Description      *string         // film.description (nullable)
	ReleaseYear      *int            // film.release_year (nullable)
	Language         *Ref[Language]  // film.language_id
	OriginalLanguage *Ref[Language]  // film.original_language_id (nullable)
	RentalDuration   int             // film.rental_duration
	RentalRate       decimal.Decimal // film.rental_rate
	Length           *int            // film.length (nullable)
	ReplacementCost  decimal.Decimal // film.replacement_cost
	Rating           *string         // film.rating (nullable)
	SpecialFeatures  *string         // film.special_features (nullable)
	LastUpdate       time.Time       // film.last_update

	Actors     []*FilmActor
	Categories []*FilmCategory
	Inventory  []*Inventory
}

func (f Film) Key() uint64 { return f.ID }

// FilmActor links an actor to a film.
type FilmActor struct {
	Actor      *Ref[Actor] // film_actor.actor_id
	Film       *Ref[Film]  // film_actor.film_id
	LastUpdate time.Time   // film_actor.last_update
}

// FilmCategory links a category to a film.
type FilmCategory struct {
	Film       *Ref[Film]     // film_category.film_id
	Category   *Ref[Category] // film_category.category_id
	LastUpdate time.Time      // film_category.last_update
}
