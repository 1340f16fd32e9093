package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
)

var (
	ErrCountryNotFound = fmt.Errorf("country %w", ErrNotFound)
	ErrCityNotFound    = fmt.Errorf("city %w", ErrNotFound)
	ErrAddressNotFound = fmt.Errorf("address %w", ErrNotFound)
)

// CountryRepo reads and writes the country table.
type CountryRepo struct{}

const countryCols = `country_id, country, last_update`

func scanCountry(s scanner) (*model.Country, error) {
	var c model.Country
	if err := s.Scan(&c.ID, &c.Country, &c.LastUpdate); err != nil {
		return nil, err
	}
	return &c, nil
}

// Insert adds c and sets its generated id.
func (r *CountryRepo) Insert(ctx context.Context, s *database.Session, c *model.Country) (uint64, error) {
	res, err := s.ExecContext(ctx, `INSERT INTO country (country) VALUES (?)`, c.Country)
	if err != nil {
		return 0, fmt.Errorf("insert country: %w", err)
	}
	id, err := insertedID(res, "country")
	if err != nil {
		return 0, err
	}
	c.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM country WHERE country_id = ?`, id).Scan(&c.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert country: %w", err)
	}
	return id, nil
}

// FindByID returns ErrCountryNotFound when no row matches.
func (r *CountryRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Country, error) {
	c, err := scanCountry(s.QueryRowContext(ctx, `SELECT `+countryCols+` FROM country WHERE country_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrCountryNotFound)
	}
	return c, nil
}

// FindByName looks a country up by its exact name.
func (r *CountryRepo) FindByName(ctx context.Context, s *database.Session, name string) (*model.Country, error) {
	c, err := scanCountry(s.QueryRowContext(ctx, `SELECT `+countryCols+` FROM country WHERE country = ? ORDER BY country_id LIMIT 1`, name))
	if err != nil {
		return nil, notFound(err, ErrCountryNotFound)
	}
	return c, nil
}

func (r *CountryRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Country, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+countryCols+` FROM country ORDER BY country_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	return collect(rows, scanCountry)
}

func (r *CountryRepo) Update(ctx context.Context, s *database.Session, c *model.Country) error {
	res, err := s.ExecContext(ctx, `UPDATE country SET country = ?, last_update = CURRENT_TIMESTAMP WHERE country_id = ?`, c.Country, c.ID)
	if err != nil {
		return fmt.Errorf("update country: %w", err)
	}
	return mustAffect(res, "update", "country", c.ID)
}

func (r *CountryRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM country WHERE country_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete country: %w", err)
	}
	return mustAffect(res, "delete", "country", id)
}

// CityRepo reads and writes the city table.
type CityRepo struct{}

const cityCols = `city_id, city, country_id, last_update`

func scanCity(s scanner) (*model.City, error) {
	var (
		c       model.City
		country sql.NullInt64
	)
	if err := s.Scan(&c.ID, &c.City, &country, &c.LastUpdate); err != nil {
		return nil, err
	}
	c.Country = refOf[model.Country](country)
	return &c, nil
}

func (r *CityRepo) Insert(ctx context.Context, s *database.Session, c *model.City) (uint64, error) {
	res, err := s.ExecContext(ctx, `INSERT INTO city (city, country_id) VALUES (?, ?)`, c.City, refArg(c.Country))
	if err != nil {
		return 0, fmt.Errorf("insert city: %w", err)
	}
	id, err := insertedID(res, "city")
	if err != nil {
		return 0, err
	}
	c.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM city WHERE city_id = ?`, id).Scan(&c.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert city: %w", err)
	}
	return id, nil
}

func (r *CityRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.City, error) {
	c, err := scanCity(s.QueryRowContext(ctx, `SELECT `+cityCols+` FROM city WHERE city_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrCityNotFound)
	}
	return c, nil
}

// FindByNameAndCountry finds a city by name inside one country.
func (r *CityRepo) FindByNameAndCountry(ctx context.Context, s *database.Session, name string, countryID uint64) (*model.City, error) {
	c, err := scanCity(s.QueryRowContext(ctx,
		`SELECT `+cityCols+` FROM city WHERE city = ? AND country_id = ? ORDER BY city_id LIMIT 1`, name, countryID))
	if err != nil {
		return nil, notFound(err, ErrCityNotFound)
	}
	return c, nil
}

func (r *CityRepo) FindByCountry(ctx context.Context, s *database.Session, countryID uint64) ([]*model.City, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+cityCols+` FROM city WHERE country_id = ? ORDER BY city_id`, countryID)
	if err != nil {
		return nil, fmt.Errorf("list cities by country: %w", err)
	}
	return collect(rows, scanCity)
}

func (r *CityRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.City, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+cityCols+` FROM city ORDER BY city_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return collect(rows, scanCity)
}

func (r *CityRepo) Update(ctx context.Context, s *database.Session, c *model.City) error {
	res, err := s.ExecContext(ctx, `UPDATE city SET city = ?, country_id = ?, last_update = CURRENT_TIMESTAMP WHERE city_id = ?`,
		c.City, refArg(c.Country), c.ID)
	if err != nil {
		return fmt.Errorf("update city: %w", err)
	}
	return mustAffect(res, "update", "city", c.ID)
}

func (r *CityRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM city WHERE city_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete city: %w", err)
	}
	return mustAffect(res, "delete", "city", id)
}

// AddressRepo reads and writes the address table.
type AddressRepo struct{}

const addressCols = `address_id, address, address2, district, city_id, postal_code, phone, last_update`

func scanAddress(s scanner) (*model.Address, error) {
	var (
		a                    model.Address
		address2, postalCode sql.NullString
		city                 sql.NullInt64
	)
	if err := s.Scan(&a.ID, &a.Address, &address2, &a.District, &city, &postalCode, &a.Phone, &a.LastUpdate); err != nil {
		return nil, err
	}
	a.Address2 = strPtr(address2)
	a.PostalCode = strPtr(postalCode)
	a.City = refOf[model.City](city)
	return &a, nil
}

func (r *AddressRepo) Insert(ctx context.Context, s *database.Session, a *model.Address) (uint64, error) {
	const q = `INSERT INTO address (address, address2, district, city_id, postal_code, phone) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.ExecContext(ctx, q, a.Address, a.Address2, a.District, refArg(a.City), a.PostalCode, a.Phone)
	if err != nil {
		return 0, fmt.Errorf("insert address: %w", err)
	}
	id, err := insertedID(res, "address")
	if err != nil {
		return 0, err
	}
	a.ID = id
	if err := s.QueryRowContext(ctx, `SELECT last_update FROM address WHERE address_id = ?`, id).Scan(&a.LastUpdate); err != nil {
		return 0, fmt.Errorf("insert address: %w", err)
	}
	return id, nil
}

func (r *AddressRepo) FindByID(ctx context.Context, s *database.Session, id uint64) (*model.Address, error) {
	a, err := scanAddress(s.QueryRowContext(ctx, `SELECT `+addressCols+` FROM address WHERE address_id = ?`, id))
	if err != nil {
		return nil, notFound(err, ErrAddressNotFound)
	}
	return a, nil
}

func (r *AddressRepo) FindByCity(ctx context.Context, s *database.Session, cityID uint64) ([]*model.Address, error) {
	rows, err := s.QueryContext(ctx, `SELECT `+addressCols+` FROM address WHERE city_id = ? ORDER BY address_id`, cityID)
	if err != nil {
		return nil, fmt.Errorf("list addresses by city: %w", err)
	}
	return collect(rows, scanAddress)
}

func (r *AddressRepo) FindAll(ctx context.Context, s *database.Session, limit, offset int) ([]*model.Address, error) {
	limit, offset = page(limit, offset)
	rows, err := s.QueryContext(ctx, `SELECT `+addressCols+` FROM address ORDER BY address_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return collect(rows, scanAddress)
}

func (r *AddressRepo) Update(ctx context.Context, s *database.Session, a *model.Address) error {
	const q = `UPDATE address
	           SET address = ?, address2 = ?, district = ?, city_id = ?, postal_code = ?, phone = ?, last_update = CURRENT_TIMESTAMP
	           WHERE address_id = ?`
	res, err := s.ExecContext(ctx, q, a.Address, a.Address2, a.District, refArg(a.City), a.PostalCode, a.Phone, a.ID)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}
	return mustAffect(res, "update", "address", a.ID)
}

func (r *AddressRepo) DeleteByID(ctx context.Context, s *database.Session, id uint64) error {
	res, err := s.ExecContext(ctx, `DELETE FROM address WHERE address_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return mustAffect(res, "delete", "address", id)
}
