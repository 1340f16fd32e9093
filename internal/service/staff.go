package service

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/model"
	"github.com/iliyamo/rental-store/internal/repository"
	"github.com/iliyamo/rental-store/internal/utils"
)

// Roles carried in access tokens. A staff member who manages a store
// logs in as RoleManager.
const (
	RoleStaff   = "STAFF"
	RoleManager = "MANAGER"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,16}$`)

// Staff manages employees and their credentials.
type Staff struct {
	*base
	// BcryptCost is used for new password hashes. Zero means bcrypt.DefaultCost.
	BcryptCost int
}

type CreateStaffInput struct {
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Email     *string      `json:"email"`
	StoreID   uint64       `json:"store_id"`
	Active    *bool        `json:"active"`
	Username  string       `json:"username"`
	Password  string       `json:"password"`
	Address   AddressInput `json:"address"`
}

type UpdateStaffInput struct {
	FirstName *string       `json:"first_name"`
	LastName  *string       `json:"last_name"`
	Email     *string       `json:"email"`
	StoreID   *uint64       `json:"store_id"`
	Active    *bool         `json:"active"`
	Username  *string       `json:"username"`
	Password  *string       `json:"password"`
	Address   *AddressInput `json:"address"`
}

func (svc *Staff) hash(plain string) (string, error) {
	cost := svc.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := utils.HashPassword(plain, cost)
	if errors.Is(err, utils.ErrWeakPassword) {
		return "", badInput("%s", err.Error())
	}
	return h, err
}

func username(v string) (string, error) {
	if !usernamePattern.MatchString(v) {
		return "", badInput("username must be 3 to 16 letters, digits or _.-")
	}
	return v, nil
}

func (svc *Staff) Create(ctx context.Context, in CreateStaffInput) (*model.Staff, error) {
	first, err := required("first_name", in.FirstName, 45)
	if err != nil {
		return nil, err
	}
	last, err := required("last_name", in.LastName, 45)
	if err != nil {
		return nil, err
	}
	email, err := optional("email", in.Email, 50)
	if err != nil {
		return nil, err
	}
	user, err := username(in.Username)
	if err != nil {
		return nil, err
	}
	if in.StoreID == 0 {
		return nil, badInput("store_id is required")
	}
	hash, err := svc.hash(in.Password)
	if err != nil {
		return nil, err
	}

	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Staff, error) {
		if _, err := svc.repos.Stores.FindByID(ctx, s, in.StoreID); err != nil {
			return nil, err
		}
		addressID, err := svc.createAddress(ctx, s, in.Address)
		if err != nil {
			return nil, err
		}
		st := &model.Staff{
			FirstName:    first,
			LastName:     last,
			Address:      model.Unresolved[model.Address](addressID),
			Email:        email,
			Store:        model.Unresolved[model.Store](in.StoreID),
			Active:       boolOr(in.Active, true),
			Username:     user,
			PasswordHash: &hash,
		}
		if _, err := svc.repos.Staff.Insert(ctx, s, st); err != nil {
			return nil, err
		}
		return svc.h.Staff(ctx, s, st.ID)
	})
}

func (svc *Staff) Get(ctx context.Context, id uint64) (*model.Staff, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Staff, error) {
		return svc.h.Staff(ctx, s, id)
	})
}

func (svc *Staff) List(ctx context.Context, limit, offset int) ([]*model.Staff, error) {
	return database.Within(ctx, svc.uow, func(s *database.Session) ([]*model.Staff, error) {
		list, err := svc.repos.Staff.FindAll(ctx, s, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, st := range list {
			svc.h.FillStaff(ctx, s, st)
		}
		return list, nil
	})
}

func (svc *Staff) Update(ctx context.Context, id uint64, in UpdateStaffInput) (*model.Staff, error) {
	var hash string
	if in.Password != nil {
		var err error
		if hash, err = svc.hash(*in.Password); err != nil {
			return nil, err
		}
	}
	return database.Within(ctx, svc.uow, func(s *database.Session) (*model.Staff, error) {
		st, err := svc.repos.Staff.FindByID(ctx, s, id)
		if err != nil {
			return nil, err
		}
		if in.FirstName != nil {
			if st.FirstName, err = required("first_name", *in.FirstName, 45); err != nil {
				return nil, err
			}
		}
		if in.LastName != nil {
			if st.LastName, err = required("last_name", *in.LastName, 45); err != nil {
				return nil, err
			}
		}
		if in.Email != nil {
			if st.Email, err = optional("email", in.Email, 50); err != nil {
				return nil, err
			}
		}
		if in.Username != nil {
			if st.Username, err = username(*in.Username); err != nil {
				return nil, err
			}
		}
		if in.Active != nil {
			st.Active = *in.Active
		}
		if in.StoreID != nil {
			if _, err := svc.repos.Stores.FindByID(ctx, s, *in.StoreID); err != nil {
				return nil, err
			}
			st.Store = model.Unresolved[model.Store](*in.StoreID)
		}
		if in.Address != nil {
			if err := svc.replaceAddress(ctx, s, st.Address.ID(), *in.Address); err != nil {
				return nil, err
			}
		}
		if err := svc.repos.Staff.Update(ctx, s, st); err != nil {
			return nil, err
		}
		if in.Password != nil {
			if err := svc.repos.Staff.SetPassword(ctx, s, id, hash); err != nil {
				return nil, err
			}
		}
		return svc.h.Staff(ctx, s, id)
	})
}

// Delete removes a staff member who manages no store and has handled no
// rentals.
func (svc *Staff) Delete(ctx context.Context, id uint64) error {
	return svc.uow.Do(ctx, func(s *database.Session) error {
		if _, err := svc.repos.Staff.FindByID(ctx, s, id); err != nil {
			return err
		}
		managed, err := svc.repos.Stores.FindByManager(ctx, s, id)
		if err != nil {
			return err
		}
		if len(managed) > 0 {
			return conflict("staff %d manages store %d", id, managed[0].ID)
		}
		n, err := svc.repos.Rentals.CountByStaff(ctx, s, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflict("staff %d handled %d rental(s)", id, n)
		}
		return svc.repos.Staff.DeleteByID(ctx, s, id)
	})
}

// Authenticate checks a username and password and returns the staff
// member with their role. Unknown users and wrong passwords are not told
// apart; inactive accounts are forbidden.
func (svc *Staff) Authenticate(ctx context.Context, user, password string) (*model.Staff, string, error) {
	type result struct {
		staff *model.Staff
		role  string
	}
	res, err := database.Within(ctx, svc.uow, func(s *database.Session) (result, error) {
		st, err := svc.repos.Staff.FindByUsername(ctx, s, user)
		if errors.Is(err, repository.ErrStaffNotFound) {
			return result{}, ErrInvalidCredentials
		}
		if err != nil {
			return result{}, err
		}
		if !utils.VerifyPassword(st.PasswordHash, password) {
			return result{}, ErrInvalidCredentials
		}
		if !st.Active {
			return result{}, repository.ErrForbidden
		}
		managed, err := svc.repos.Stores.FindByManager(ctx, s, st.ID)
		if err != nil {
			return result{}, err
		}
		role := RoleStaff
		if len(managed) > 0 {
			role = RoleManager
		}
		svc.h.FillStaff(ctx, s, st)
		return result{staff: st, role: role}, nil
	})
	if err != nil {
		return nil, "", err
	}
	return res.staff, res.role, nil
}
