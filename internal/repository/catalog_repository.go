package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

var (
	ErrLanguageNotFound = fmt.Errorf("language %w", ErrNotFound)
	ErrActorNotFound    = fmt.Errorf("actor %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
)

// LanguageRepo reads and writes the language table.
type LanguageRepo struct{}

const languageCols = `language_id, name, last_update`

func scanLanguage(s scanner) (*model.Language, error) {
	var l model.Language
	if err := s.Scan(&l.ID, &l.Name, &l.LastUpdate); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LanguageRepo) Insert(ctx context.Context, s *database.Session, l *model.Language) (uint64, error) {
	res, err := s.ExecContext(ctx, `INSERT INTO language (name) VALUES (?)`, l.Name)
	if err != nil {
		return 0, fmt.Errorf("insert language: %w", err)
	}
	id, err := insertedID(res, "language")
	if err != nil {
		return 0, err
	}
	l.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM language WHERE language_id = ?`, id).Scan(&l.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert language: %w", err)
	}
	return id, nil
}

func (r *LanguageRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Language, error) {
	l, err := scanLanguage(s.QueryRowContext(ctx, `SELECT `+languageCols+` FROM language WHERE language_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrLanguageNotFound)
	}
	return l, nil
}

func (r *LanguageRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Language, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+languageCols+` FROM language ORDER BY language_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return collect(rows, scanLanguage)
}

func (r *LanguageRepo) Update(ctx context.Context, s *database.Session, l *model.Language) error {
	res, err := s.ExecContext(ctx, `UPDATE language SET name = ?, last_update = CURRENT_TIMESTAMP WHERE language_id = ?`, l.Name, l.ID)
	if err != nil {
		return fmt.Errorf("update language: %w", err)
	}
	return mustAffect(res, "update", "language", l.ID)
}

func (r *LanguageRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM language WHERE language_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete language: %w", err)
	}
	return mustAffect(res, "delete", "language", id)
}

// ActorRepo reads and writes the actor table.
type ActorRepo struct{}

const actorCols = `actor_id, first_name, last_name, last_update`

func scanActor(s scanner) (*model.Actor, error) {
	var a model.Actor
	if err := s.Scan(&a.ID, &a.FirstName, &a.LastName, &a.LastUpdate); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActorRepo) Insert(ctx context.Context, s *database.Session, a *model.Actor) (uint64, error) {
	res, err := s.ExecContext(ctx, `INSERT INTO actor (first_name, last_name) VALUES (?, ?)`, a.FirstName, a.LastName)
	if err != nil {
		return 0, fmt.Errorf("insert actor: %w", err)
	}
	id, err := insertedID(res, "actor")
	if err != nil {
		return 0, err
	}
	a.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM actor WHERE actor_id = ?`, id).Scan(&a.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert actor: %w", err)
	}
	return id, nil
}

func (r *ActorRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Actor, error) {
	a, err := scanActor(s.QueryRowContext(ctx, `SELECT `+actorCols+` FROM actor WHERE actor_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrActorNotFound)
	}
	return a, nil
}

func (r *ActorRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Actor, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+actorCols+` FROM actor ORDER BY actor_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	return collect(rows, scanActor)
}

func (r *ActorRepo) Update(ctx context.Context, s *database.Session, a *model.Actor) error {
	res, err := s.ExecContext(ctx, `UPDATE actor SET first_name = ?, last_name = ?, last_update = CURRENT_TIMESTAMP WHERE actor_id = ?`,
		a.FirstName, a.LastName, a.ID)
	if err != nil {
		return fmt.Errorf("update actor: %w", err)
	}
	return mustAffect(res, "update", "actor", a.ID)
}

func (r *ActorRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM actor WHERE actor_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete actor: %w", err)
	}
	return mustAffect(res, "delete", "actor", id)
}

// CategoryRepo reads and writes the category table.
type CategoryRepo struct{}

const categoryCols = `category_id, name, last_update`

func scanCategory(s scanner) (*model.Category, error) {
	var c model.Category
	if err := s.Scan(&c.ID, &c.Name, &c.LastUpdate); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Insert(ctx context.Context, s *database.Session, c *model.Category) (uint64, error) {
	res, err := s.ExecContext(ctx, `INSERT INTO category (name) VALUES (?)`, c.Name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := insertedID(res, "category")
	if err != nil {
		return 0, err
	}
	c.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM category WHERE category_id = ?`, id).Scan(&c.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return id, nil
}

func (r *CategoryRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Category, error) {
	c, err := scanCategory(s.QueryRowContext(ctx, `SELECT `+categoryCols+` FROM category WHERE category_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	return c, nil
}

func (r *CategoryRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Category, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+categoryCols+` FROM category ORDER BY category_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collect(rows, scanCategory)
}

func (r *CategoryRepo) Update(ctx context.Context, s *database.Session, c *model.Category) error {
	res, err := s.ExecContext(ctx, `UPDATE category SET name = ?, last_update = CURRENT_TIMESTAMP WHERE category_id = ?`, c.Name, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return mustAffect(res, "update", "category", c.ID)
}

func (r *CategoryRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM category WHERE category_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return mustAffect(res, "delete", "category", id)
}
