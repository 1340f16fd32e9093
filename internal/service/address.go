package service

import (
	"context"
	"errors"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
	"github.com/iliyamo/rental-store/internal/repository"
)

// AddressInput is a postal address with its city and country given by
// name. Unknown cities and countries are created.
type AddressInput struct {
	Address    string  `json:"address"`
	Address2   *string `json:"address2"`
	District   string  `json:"district"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	PostalCode *string `json:"postal_code"`
	Phone      string  `json:"phone"`
}

func (in AddressInput) normalize() (AddressInput, error) {
	var err error
	if in.Address, err = required("address", in.Address, 50); err != nil {
		return in, err
	}
	if in.Address2, err = optional("address2", in.Address2, 50); err != nil {
		return in, err
	}
	if in.District, err = required("district", in.District, 20); err != nil {
		return in, err
	}
	if in.City, err = required("city", in.City, 50); err != nil {
		return in, err
	}
	if in.Country, err = required("country", in.Country, 50); err != nil {
		return in, err
	}
	if in.PostalCode, err = optional("postal_code", in.PostalCode, 10); err != nil {
		return in, err
	}
	if in.Phone, err = required("phone", in.Phone, 20); err != nil {
		return in, err
	}
	return in, nil
}

// cityFor finds the named city in the named country, creating either
// when missing.
func (b *base) cityFor(ctx context.Context, s *database.Session, city, country string) (uint64, error) {
	co, err := b.repos.Countries.FindByName(ctx, s, country)
	if errors.Is(err, repository.ErrCountryNotFound) {
		co = &model.Country{Country: country}
		_, err = b.repos.Countries.Insert(ctx, s, co)
	}
	if err != nil {
		return 0, err
	}

	ci, err := b.repos.Cities.FindByNameAndCountry(ctx, s, city, co.ID)
	if errors.Is(err, repository.ErrCityNotFound) {
		ci = &model.City{City: city, Country: model.Unresolved[model.Country](co.ID)}
		_, err = b.repos.Cities.Insert(ctx, s, ci)
	}
	if err != nil {
		return 0, err
	}
	return ci.ID, nil
}

// createAddress writes the country, city and address rows for in and
// returns the new address id.
func (b *base) createAddress(ctx context.Context, s *database.Session, in AddressInput) (uint64, error) {
	in, err := in.normalize()
	if err != nil {
		return 0, err
	}
	cityID, err := b.cityFor(ctx, s, in.City, in.Country)
	if err != nil {
		return 0, err
	}
	a := &model.Address{
		Address:    in.Address,
		Address2:   in.Address2,
		District:   in.District,
		City:       model.Unresolved[model.City](cityID),
		PostalCode: in.PostalCode,
		Phone:      in.Phone,
	}
	return b.repos.Addresses.Insert(ctx, s, a)
}

// replaceAddress rewrites address id in place with in.
func (b *base) replaceAddress(ctx context.Context, s *database.Session, id uint64, in AddressInput) error {
	in, err := in.normalize()
	if err != nil {
		return err
	}
	if _, err := b.repos.Addresses.FindByID(ctx, s, id); err != nil {
		return err
	}
	cityID, err := b.cityFor(ctx, s, in.City, in.Country)
	if err != nil {
		return err
	}
	return b.repos.Addresses.Update(ctx, s, &model.Address{
		ID:         id,
		Address:    in.Address,
		Address2:   in.Address2,
		District:   in.District,
		City:       model.Unresolved[model.City](cityID),
		PostalCode: in.PostalCode,
		Phone:      in.Phone,
	})
}
