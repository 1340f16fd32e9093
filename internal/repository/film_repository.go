package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

// ErrFilmNotFound is returned when a film lookup fails.
var ErrFilmNotFound = fmt.Errorf("film %w", ErrNotFound)

// FilmRepo reads and writes the film table. Rental rate and replacement
// cost are scanned straight into decimal.Decimal so no float rounding is
// introduced.
type FilmRepo struct{}

const filmCols = `film_id, title, description, release_year, language_id, original_language_id,
	rental_duration, rental_rate, length, replacement_cost, rating, special_features, last_update`

func scanFilm(s scanner) (*model.Film, error) {
	var (
		f                          model.Film
		description, rating, feats sql.NullString
		releaseYear, length        sql.NullInt64
		language, originalLanguage sql.NullInt64
	)
	err := s.Scan(&f.ID, &f.Title, &description, &releaseYear, &language, &originalLanguage,
		&f.RentalDuration, &f.RentalRate, &length, &f.ReplacementCost, &rating, &feats, &f.LastUpdate)
	if err != nil {
		return nil, err
	}
	f.Description = strPtr(description)
	f.ReleaseYear = intPtr(releaseYear)
	f.Length = intPtr(length)
	f.Rating = strPtr(rating)
	f.SpecialFeatures = strPtr(feats)
	f.Language = refOf[model.Language](language)
	f.OriginalLanguage = refOf[model.Language](originalLanguage)
	return &f, nil
}

// Insert adds f and sets its generated id.
func (r *FilmRepo) Insert(ctx context.Context, s *database.Session, f *model.Film) (uint64, error) {
	const q = `INSERT INTO film (title, description, release_year, language_id, original_language_id,
	                rental_duration, rental_rate, length, replacement_cost, rating, special_features)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.ExecContext(ctx, q, f.Title, f.Description, f.ReleaseYear, refArg(f.Language), refArg(f.OriginalLanguage),
		f.RentalDuration, f.RentalRate, f.Length, f.ReplacementCost, f.Rating, f.SpecialFeatures)
	if err != nil {
		return 0, fmt.Errorf("insert film: %w", err)
	}
	id, err := insertedID(res, "film")
	if err != nil {
		return 0, err
	}
	f.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM film WHERE film_id = ?`, id).Scan(&f.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert film: %w", err)
	}
	return id, nil
}

func (r *FilmRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Film, error) {
	f, err := scanFilm(s.QueryRowContext(ctx, `SELECT `+filmCols+` FROM film WHERE film_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrFilmNotFound)
	}
	return f, nil
}

func (r *FilmRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Film, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+filmCols+` FROM film ORDER BY film_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return collect(rows, scanFilm)
}

// FindByLanguage lists films spoken in the language.
func (r *FilmRepo) FindByLanguage(ctx context.Context, s *database.Session, languageID uint64) ([]*model.Film, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+filmCols+` FROM film WHERE language_id = ? ORDER BY film_id`, languageID)
	if err != nil {
		return nil, fmt.Errorf("list films by language: %w", err)
	}
	return collect(rows, scanFilm)
}

func (r *FilmRepo) Update(ctx context.Context, s *database.Session, f *model.Film) error {
	const q = `UPDATE film
	           SET title = ?, description = ?, release_year = ?, language_id = ?, original_language_id = ?,
	               rental_duration = ?, rental_rate = ?, length = ?, replacement_cost = ?, rating = ?,
	               special_features = ?, last_update = CURRENT_TIMESTAMP
	           WHERE film_id = ?`
	res, err := s.ExecContext(ctx, q, f.Title, f.Description, f.ReleaseYear, refArg(f.Language), refArg(f.OriginalLanguage),
		f.RentalDuration, f.RentalRate, f.Length, f.ReplacementCost, f.Rating, f.SpecialFeatures, f.ID)
	if err != nil {
		return fmt.Errorf("update film: %w", err)
	}
	return mustAffect(res, "update", "film", f.ID)
}

func (r *FilmRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM film WHERE film_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete film: %w", err)
	}
	return mustAffect(res, "delete", "film", id)
}

// FilmActorRepo reads and writes the film_actor join table.
type FilmActorRepo struct{}

func scanFilmActor(s scanner) (*model.FilmActor, error) {
	var (
		fa          model.FilmActor
		actor, film sql.NullInt64
	)
	if err := s.Scan(&actor, &film, &fa.LastUpdate); err != nil {
		return nil, err
	}
	fa.Actor = refOf[model.Actor](actor)
	fa.Film = refOf[model.Film](film)
	return &fa, nil
}

func (r *FilmActorRepo) Insert(ctx context.Context, s *database.Session, actorID, filmID uint64) error {
	res, err := s.ExecContext(ctx, `INSERT INTO film_actor (actor_id, film_id) VALUES (?, ?)`, actorID, filmID)
	if err != nil {
		return fmt.Errorf("insert film_actor: %w", err)
	}
	return mustAffect(res, "insert", "film_actor for film", filmID)
}

func (r *FilmActorRepo) FindByFilm(ctx context.Context, s *database.Session, filmID uint64) ([]*model.FilmActor, error) {
	rows, err := s.QueryContext(ctx, `SELECT actor_id, film_id, last_update FROM film_actor WHERE film_id = ? ORDER BY actor_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("list film actors: %w", err)
	}
	return collect(rows, scanFilmActor)
}

func (r *FilmActorRepo) FindByActor(ctx context.Context, s *database.Session, actorID uint64) ([]*model.FilmActor, error) {
	rows, err := s.QueryContext(ctx, `SELECT actor_id, film_id, last_update FROM film_actor WHERE actor_id = ? ORDER BY film_id`, actorID)
	if err != nil {
		return nil, fmt.Errorf("list actor films: %w", err)
	}
	return collect(rows, scanFilmActor)
}

// DeleteByFilm removes every actor link of a film. Zero rows is not an
// error here: a film may have no cast.
func (r *FilmActorRepo) DeleteByFilm(ctx context.Context, s *database.Session, filmID uint64) error {
	if _, err := s.ExecContext(ctx, `DELETE FROM film_actor WHERE film_id = ?`, filmID); err != nil {
		return fmt.Errorf("delete film actors: %w", err)
	}
	return nil
}

func (r *FilmActorRepo) DeleteByActor(ctx context.Context, s *database.Session, actorID uint64) error {
	if _, err := s.ExecContext(ctx, `DELETE FROM film_actor WHERE actor_id = ?`, actorID); err != nil {
		return fmt.Errorf("delete actor films: %w", err)
	}
	return nil
}

// FilmCategoryRepo reads and writes the film_category join table.
type FilmCategoryRepo struct{}

func scanFilmCategory(s scanner) (*model.FilmCategory, error) {
	var (
		fc             model.FilmCategory
		film, category sql.NullInt64
	)
	if err := s.Scan(&film, &category, &fc.LastUpdate); err != nil {
		return nil, err
	}
	fc.Film = refOf[model.Film](film)
	fc.Category = refOf[model.Category](category)
	return &fc, nil
}

func (r *FilmCategoryRepo) Insert(ctx context.Context, s *database.Session, filmID, categoryID uint64) error {
	res, err := s.ExecContext(ctx, `INSERT INTO film_category (film_id, category_id) VALUES (?, ?)`, filmID, categoryID)
	if err != nil {
		return fmt.Errorf("insert film_category: %w", err)
	}
	return mustAffect(res, "insert", "film_category for film", filmID)
}

func (r *FilmCategoryRepo) FindByFilm(ctx context.Context, s *database.Session, filmID uint64) ([]*model.FilmCategory, error) {
	rows, err := s.QueryContext(ctx, `SELECT film_id, category_id, last_update FROM film_category WHERE film_id = ? ORDER BY category_id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("list film categories: %w", err)
	}
	return collect(rows, scanFilmCategory)
}

func (r *FilmCategoryRepo) FindByCategory(ctx context.Context, s *database.Session, categoryID uint64) ([]*model.FilmCategory, error) {
	rows, err := s.QueryContext(ctx, `SELECT film_id, category_id, last_update FROM film_category WHERE category_id = ? ORDER BY film_id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category films: %w", err)
	}
	return collect(rows, scanFilmCategory)
}

func (r *FilmCategoryRepo) DeleteByFilm(ctx context.Context, s *database.Session, filmID uint64) error {
	if _, err := s.ExecContext(ctx, `DELETE FROM film_category WHERE film_id = ?`, filmID); err != nil {
		return fmt.Errorf("delete film categories: %w", err)
	}
	return nil
}

func (r *FilmCategoryRepo) DeleteByCategory(ctx context.Context, s *database.Session, categoryID uint64) error {
	if _, err := s.ExecContext(ctx, `DELETE FROM film_category WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("delete category films: %w", err)
	}
	return nil
}
