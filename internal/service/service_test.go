package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/queue"
	"github.com/iliyamo/rental-store/internal/repository"
	"github.com/iliyamo/rental-store/internal/service"
	"github.com/iliyamo/rental-store/internal/testdb"
)

type recorder struct {
	mu     sync.Mutex
	events []queue.RentalEvent
	err    error
}

func (r *recorder) Publish(_ context.Context, ev queue.RentalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type env struct {
	db     *sql.DB
	svc    *service.Services
	f      testdb.Fixture
	events *recorder
}

func setup(t *testing.T) env {
	t.Helper()
	db := testdb.Open(t)
	events := &recorder{}
	svc := service.New(service.Deps{
		UoW:        testdb.UnitOfWork(db),
		Events:     events,
		Log:        zerolog.Nop(),
		BcryptCost: bcrypt.MinCost,
	})
	t.Cleanup(func() {
		assert.Zero(t, db.Stats().InUse, "connections still checked out")
	})
	return env{db: db, svc: svc, f: testdb.Seed(t, db), events: events}
}

func ptr[T any](v T) *T { return &v }

func tokyo() service.AddressInput {
	return service.AddressInput{
		Address:  "1-1 Chiyoda",
		District: "Tokyo-to",
		City:     "Tokyo",
		Country:  "Japan",
		Phone:    "555-0199",
	}
}

func TestCreateCustomerBuildsAddressChain(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	c, err := e.svc.Customers.Create(ctx, service.CreateCustomerInput{
		StoreID:   e.f.Store,
		FirstName: " PATRICIA ",
		LastName:  "JOHNSON",
		Address:   tokyo(),
	})
	require.NoError(t, err)

	assert.Equal(t, "PATRICIA", c.FirstName)
	assert.True(t, c.Active)
	addr, ok := c.Address.Get()
	require.True(t, ok)
	city, ok := addr.City.Get()
	require.True(t, ok)
	assert.Equal(t, "Tokyo", city.City)
	country, ok := city.Country.Get()
	require.True(t, ok)
	assert.Equal(t, "Japan", country.Country)
	assert.NotNil(t, c.Rentals)
	assert.Empty(t, c.Rentals)

	// a second customer in the same city reuses the rows
	_, err = e.svc.Customers.Create(ctx, service.CreateCustomerInput{
		StoreID: e.f.Store, FirstName: "LINDA", LastName: "WILLIAMS", Address: tokyo(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, testdb.Count(t, e.db, "country"))
	assert.Equal(t, 2, testdb.Count(t, e.db, "city"))
	assert.Equal(t, 5, testdb.Count(t, e.db, "address"))
}

func TestCreateCustomerRollsBackOnAddressFailure(t *testing.T) {
	e := setup(t)
	_, err := e.db.Exec(`CREATE TRIGGER fail_address BEFORE INSERT ON address
		BEGIN SELECT RAISE(ABORT, 'address insert failed'); END`)
	require.NoError(t, err)

	_, err = e.svc.Customers.Create(context.Background(), service.CreateCustomerInput{
		StoreID: e.f.Store, FirstName: "PATRICIA", LastName: "JOHNSON", Address: tokyo(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address insert failed")

	assert.Equal(t, 1, testdb.Count(t, e.db, "country"))
	assert.Equal(t, 1, testdb.Count(t, e.db, "city"))
	assert.Equal(t, 3, testdb.Count(t, e.db, "address"))
	assert.Equal(t, 1, testdb.Count(t, e.db, "customer"))
}

func TestCreateCustomerValidates(t *testing.T) {
	e := setup(t)

	_, err := e.svc.Customers.Create(context.Background(), service.CreateCustomerInput{StoreID: e.f.Store, LastName: "X", Address: tokyo()})
	assert.Equal(t, service.KindBadInput, service.KindOf(err))

	_, err = e.svc.Customers.Create(context.Background(), service.CreateCustomerInput{
		StoreID: 99, FirstName: "A", LastName: "B", Address: tokyo(),
	})
	assert.ErrorIs(t, err, repository.ErrStoreNotFound)
	assert.Equal(t, 1, testdb.Count(t, e.db, "country"))
}

func TestDeleteCustomerWithOpenRentalIsConflict(t *testing.T) {
	e := setup(t)
	rental := testdb.Rent(t, e.db, e.f.Inventory[0], e.f.Customer, e.f.Manager, time.Now().Add(-time.Hour), nil)
	testdb.Pay(t, e.db, e.f.Customer, e.f.Manager, rental, "0.99")

	err := e.svc.Customers.Delete(context.Background(), e.f.Customer)
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	assert.Equal(t, 1, testdb.Count(t, e.db, "customer"))
	assert.Equal(t, 1, testdb.Count(t, e.db, "rental"))
	assert.Equal(t, 1, testdb.Count(t, e.db, "payment"))
}

func TestDeleteCustomerRemovesHistory(t *testing.T) {
	e := setup(t)
	back := time.Now().UTC()
	rental := testdb.Rent(t, e.db, e.f.Inventory[0], e.f.Customer, e.f.Manager, back.Add(-time.Hour), &back)
	testdb.Pay(t, e.db, e.f.Customer, e.f.Manager, rental, "0.99")

	require.NoError(t, e.svc.Customers.Delete(context.Background(), e.f.Customer))
	assert.Zero(t, testdb.Count(t, e.db, "customer"))
	assert.Zero(t, testdb.Count(t, e.db, "rental"))
	assert.Zero(t, testdb.Count(t, e.db, "payment"))

	_, err := e.svc.Customers.Get(context.Background(), e.f.Customer)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestFilmAvailability(t *testing.T) {
	e := setup(t)
	testdb.Rent(t, e.db, e.f.Inventory[0], e.f.Customer, e.f.Manager, time.Now().Add(-time.Hour), nil)

	av, err := e.svc.Films.Availability(context.Background(), e.f.Film)
	require.NoError(t, err)
	require.Len(t, av, 1)
	assert.Equal(t, e.f.Store, av[0].StoreID)
	assert.Equal(t, 3, av[0].Total)
	assert.Equal(t, 1, av[0].Rented)
	assert.Equal(t, 2, av[0].Available)

	_, err = e.svc.Films.Availability(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrFilmNotFound)
}

func TestCreateRentalChargesRate(t *testing.T) {
	e := setup(t)

	r, err := e.svc.Rentals.Create(context.Background(), service.CreateRentalInput{
		InventoryID: e.f.Inventory[0], CustomerID: e.f.Customer, StaffID: e.f.Manager,
	})
	require.NoError(t, err)
	assert.True(t, r.Open())
	assert.True(t, r.Customer.IsResolved())
	require.Len(t, r.Payments, 1)
	assert.Equal(t, "0.99", r.Payments[0].Amount.StringFixed(2))
	assert.False(t, r.Payments[0].Rental.IsResolved())
	assert.Equal(t, []string{queue.RentalCreated, queue.PaymentRecorded}, e.events.types())
}

func TestCreateRentalChecksAvailability(t *testing.T) {
	e := setup(t)
	testdb.Rent(t, e.db, e.f.Inventory[0], e.f.Customer, e.f.Manager, time.Now().Add(-time.Hour), nil)

	_, err := e.svc.Rentals.Create(context.Background(), service.CreateRentalInput{
		InventoryID: e.f.Inventory[0], CustomerID: e.f.Customer, StaffID: e.f.Manager,
	})
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	// a return date does not bypass the check
	_, err = e.svc.Rentals.Create(context.Background(), service.CreateRentalInput{
		InventoryID: e.f.Inventory[0], CustomerID: e.f.Customer, StaffID: e.f.Manager,
		ReturnDate: ptr(time.Now().Add(time.Hour)),
	})
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	assert.Equal(t, 1, testdb.Count(t, e.db, "rental"))
	assert.Empty(t, e.events.types())
}

func TestCreateRentalRejectsReturnBeforeRental(t *testing.T) {
	e := setup(t)
	at := time.Now().UTC()

	_, err := e.svc.Rentals.Create(context.Background(), service.CreateRentalInput{
		InventoryID: e.f.Inventory[1], CustomerID: e.f.Customer, StaffID: e.f.Manager,
		RentalDate: &at, ReturnDate: ptr(at.Add(-time.Minute)),
	})
	assert.Equal(t, service.KindBadInput, service.KindOf(err))
}

func TestReturnChargesLateFee(t *testing.T) {
	e := setup(t)
	rented := time.Now().UTC().Add(-10 * 24 * time.Hour).Truncate(time.Second)

	r, err := e.svc.Rentals.Create(context.Background(), service.CreateRentalInput{
		InventoryID: e.f.Inventory[0], CustomerID: e.f.Customer, StaffID: e.f.Manager, RentalDate: &rented,
	})
	require.NoError(t, err)

	// nine started days against a six day rental
	back := rented.Add(8*24*time.Hour + time.Hour)
	r, err = e.svc.Rentals.Return(context.Background(), r.ID, &back)
	require.NoError(t, err)
	require.NotNil(t, r.ReturnDate)
	assert.True(t, r.ReturnDate.Equal(back))
	require.Len(t, r.Payments, 2)
	assert.Equal(t, "3.00", r.Payments[1].Amount.StringFixed(2))

	_, err = e.svc.Rentals.Return(context.Background(), r.ID, nil)
	assert.ErrorIs(t, err, repository.ErrAlreadyReturned)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	assert.Equal(t, []string{queue.RentalCreated, queue.PaymentRecorded, queue.RentalReturned, queue.PaymentRecorded}, e.events.types())
}

func TestLateFee(t *testing.T) {
	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, service.LateFee(t0, t0.Add(6*24*time.Hour), 6).IsZero())
	assert.Equal(t, "1.00", service.LateFee(t0, t0.Add(6*24*time.Hour+time.Minute), 6).StringFixed(2))
	assert.True(t, service.LateFee(t0, t0.Add(-time.Hour), 6).IsZero())
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	e := setup(t)
	e.events.err = errors.New("broker down")

	_, err := e.svc.Rentals.Create(context.Background(), service.CreateRentalInput{
		InventoryID: e.f.Inventory[2], CustomerID: e.f.Customer, StaffID: e.f.Manager,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, testdb.Count(t, e.db, "rental"))
}

func TestDeleteFilmWithInventoryIsConflict(t *testing.T) {
	e := setup(t)

	err := e.svc.Films.Delete(context.Background(), e.f.Film)
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	f, err := e.svc.Films.Create(context.Background(), service.FilmInput{
		Title:       ptr("ACE GOLDFINGER"),
		LanguageID:  ptr(e.f.Language),
		RentalRate:  ptr(decimal.RequireFromString("4.99")),
		Rating:      ptr("G"),
		ActorIDs:    []uint64{e.f.Actor, e.f.Actor},
		CategoryIDs: []uint64{e.f.Category},
	})
	require.NoError(t, err)
	require.Len(t, f.Actors, 1)
	assert.Equal(t, 3, f.RentalDuration)
	require.NoError(t, e.svc.Films.Delete(context.Background(), f.ID))
	assert.Equal(t, 1, testdb.Count(t, e.db, "film_actor"))
}

func TestCreateFilmRejectsBadRating(t *testing.T) {
	e := setup(t)
	_, err := e.svc.Films.Create(context.Background(), service.FilmInput{
		Title: ptr("X"), LanguageID: ptr(e.f.Language), Rating: ptr("XXX"),
	})
	assert.Equal(t, service.KindBadInput, service.KindOf(err))
}

func TestCreateFilmRejectsSubCentAmounts(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	for name, in := range map[string]service.FilmInput{
		"rental_rate":      {Title: ptr("X"), LanguageID: ptr(e.f.Language), RentalRate: ptr(decimal.RequireFromString("4.999"))},
		"replacement_cost": {Title: ptr("X"), LanguageID: ptr(e.f.Language), ReplacementCost: ptr(decimal.RequireFromString("19.995"))},
	} {
		_, err := e.svc.Films.Create(ctx, in)
		assert.Equal(t, service.KindBadInput, service.KindOf(err), name)
		assert.ErrorContains(t, err, name)
	}
	assert.Equal(t, 1, testdb.Count(t, e.db, "film"))

	f, err := e.svc.Films.Create(ctx, service.FilmInput{
		Title: ptr("Y"), LanguageID: ptr(e.f.Language), RentalRate: ptr(decimal.RequireFromString("2.50")),
	})
	require.NoError(t, err)
	assert.Equal(t, "2.50", f.RentalRate.StringFixed(2))
}

func TestStaffLoginRoles(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.Staff.Update(ctx, e.f.Manager, service.UpdateStaffInput{Password: ptr("manager-pass")})
	require.NoError(t, err)
	jon, err := e.svc.Staff.Create(ctx, service.CreateStaffInput{
		FirstName: "Jon", LastName: "Stephens", StoreID: e.f.Store,
		Username: "jon", Password: "clerk-pass", Address: tokyo(),
	})
	require.NoError(t, err)
	assert.True(t, jon.Store.IsResolved())

	st, role, err := e.svc.Staff.Authenticate(ctx, "mike", "manager-pass")
	require.NoError(t, err)
	assert.Equal(t, e.f.Manager, st.ID)
	assert.Equal(t, service.RoleManager, role)

	_, role, err = e.svc.Staff.Authenticate(ctx, "jon", "clerk-pass")
	require.NoError(t, err)
	assert.Equal(t, service.RoleStaff, role)

	_, _, err = e.svc.Staff.Authenticate(ctx, "jon", "nope-nope")
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))
	_, _, err = e.svc.Staff.Authenticate(ctx, "nobody", "whatever1")
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	_, err = e.svc.Staff.Create(ctx, service.CreateStaffInput{
		FirstName: "Dup", LastName: "Licate", StoreID: e.f.Store,
		Username: "jon", Password: "clerk-pass", Address: tokyo(),
	})
	assert.Equal(t, service.KindConflict, service.KindOf(err))
}

func TestCreateStoreMovesManager(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	jon, err := e.svc.Staff.Create(ctx, service.CreateStaffInput{
		FirstName: "Jon", LastName: "Stephens", StoreID: e.f.Store,
		Username: "jon", Password: "clerk-pass", Address: tokyo(),
	})
	require.NoError(t, err)

	st, err := e.svc.Stores.Create(ctx, service.CreateStoreInput{ManagerID: jon.ID, Address: tokyo()})
	require.NoError(t, err)
	assert.Equal(t, jon.ID, st.Manager.ID())
	require.Len(t, st.Staff, 1)
	assert.Equal(t, jon.ID, st.Staff[0].ID)
	assert.Empty(t, st.Customers)

	_, err = e.svc.Stores.Create(ctx, service.CreateStoreInput{ManagerID: jon.ID, Address: tokyo()})
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	err = e.svc.Staff.Delete(ctx, jon.ID)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	err = e.svc.Stores.Delete(ctx, st.ID)
	assert.Equal(t, service.KindConflict, service.KindOf(err), "manager still works there")
}

func TestPaymentMustMatchRentalCustomer(t *testing.T) {
	e := setup(t)
	other := testdb.Exec(t, e.db, `INSERT INTO customer (store_id, first_name, last_name, address_id, active, create_date)
		VALUES (?, 'LINDA', 'WILLIAMS', ?, 1, CURRENT_TIMESTAMP)`, e.f.Store, e.f.CustomerAddr)
	rental := testdb.Rent(t, e.db, e.f.Inventory[0], e.f.Customer, e.f.Manager, time.Now().Add(-time.Hour), nil)

	_, err := e.svc.Payments.Create(context.Background(), service.CreatePaymentInput{
		CustomerID: other, StaffID: e.f.Manager, RentalID: &rental, Amount: decimal.RequireFromString("1.50"),
	})
	assert.Equal(t, service.KindConflict, service.KindOf(err))

	p, err := e.svc.Payments.Create(context.Background(), service.CreatePaymentInput{
		CustomerID: e.f.Customer, StaffID: e.f.Manager, RentalID: &rental, Amount: decimal.RequireFromString("1.50"),
	})
	require.NoError(t, err)
	assert.True(t, p.Customer.IsResolved())
	assert.True(t, p.Rental.IsResolved())

	_, err = e.svc.Payments.Create(context.Background(), service.CreatePaymentInput{
		CustomerID: e.f.Customer, StaffID: e.f.Manager, Amount: decimal.RequireFromString("1.505"),
	})
	assert.Equal(t, service.KindBadInput, service.KindOf(err))

	bal, err := e.svc.Customers.Balance(context.Background(), e.f.Customer)
	require.NoError(t, err)
	assert.Equal(t, "1.50", bal.Paid.StringFixed(2))
	assert.Equal(t, 1, bal.OpenRentals)
}

func TestListDegradesWhenCollectionFails(t *testing.T) {
	e := setup(t)
	_, err := e.db.Exec(`DROP TABLE payment`)
	require.NoError(t, err)

	list, err := e.svc.Customers.List(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Payments)
	assert.Empty(t, list[0].Payments)
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want service.Kind
	}{
		{repository.ErrCustomerNotFound, service.KindNotFound},
		{fmt.Errorf("wrapped: %w", repository.ErrAlreadyReturned), service.KindConflict},
		{service.ErrBadInput, service.KindBadInput},
		{service.ErrInvalidCredentials, service.KindUnauthorized},
		{repository.ErrForbidden, service.KindForbidden},
		{fmt.Errorf("acquire: %w", database.ErrResourceUnavailable), service.KindUnavailable},
		{errors.Join(repository.ErrCustomerNotFound, database.ErrResourceUnavailable), service.KindNotFound},
		{errors.New("boom"), service.KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, service.KindOf(tc.err), tc.err.Error())
	}
}
