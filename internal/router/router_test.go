package router_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/rental-store/internal/config"
	"github.com/iliyamo/rental-store/internal/database"
	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/router"
	"github.com/iliyamo/rental-store/internal/service"
	"github.com/iliyamo/rental-store/internal/testdb"
	"github.com/iliyamo/rental-store/internal/utils"
)

const secret = "router-secret"

type api struct {
	e  *echo.Echo
	f  testdb.Fixture
	db *sql.DB
	t  *testing.T
}

func newAPI(t *testing.T) *api {
	return newAPIWithTimeout(t, time.Second)
}

func newAPIWithTimeout(t *testing.T, acquire time.Duration) *api {
	t.Helper()
	db := testdb.Open(t)
	f := testdb.Seed(t, db)
	uow := database.NewUnitOfWork(db, acquire, zerolog.Nop())
	svc := service.New(service.Deps{UoW: uow, Log: zerolog.Nop(), BcryptCost: bcrypt.MinCost})

	_, err := svc.Staff.Update(context.Background(), f.Manager, service.UpdateStaffInput{Password: ptr("manager-pass")})
	require.NoError(t, err)

	e := router.New(router.Deps{
		Services:  svc,
		Projector: projection.Default(),
		DB:        db,
		RateLimit: config.RateLimitConfig{Enabled: true},
		JWTSecret: secret,
		AccessTTL: time.Minute,
		Log:       zerolog.Nop(),
	})
	return &api{e: e, f: f, db: db, t: t}
}

func ptr[T any](v T) *T { return &v }

func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (a *api) raw(method, path, token string) (int, []byte) {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func (a *api) login() string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "mike", "password": "manager-pass"})
	require.Equal(a.t, http.StatusOK, code, body)
	assert.Equal(a.t, "MANAGER", body["role"])
	access := body["access"].(map[string]any)
	return access["token"].(string)
}

func staffToken(t *testing.T, id uint64) string {
	tok, err := utils.NewAccessToken(secret, id, service.RoleStaff, time.Minute)
	require.NoError(t, err)
	return tok.Token
}

func TestProbes(t *testing.T) {
	a := newAPI(t)
	code, body := a.raw(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", string(body))

	code, _ = a.raw(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestLogin(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "mike", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", body["error"])

	code, _ = a.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "mike"})
	assert.Equal(t, http.StatusBadRequest, code)

	token := a.login()
	code, body = a.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	staff := body["staff"].(map[string]any)
	assert.Equal(t, "mike", staff["username"])
	assert.NotContains(t, staff, "password")
}

func TestRoutesNeedToken(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/v1/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "missing bearer token", body["error"])
}

func TestStoreMutationsNeedManager(t *testing.T) {
	a := newAPI(t)
	clerk := staffToken(t, a.f.Manager)

	code, _ := a.do(http.MethodGet, "/v1/stores", clerk, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodDelete, fmt.Sprintf("/v1/stores/%d", a.f.Store), clerk, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestCustomerLifecycle(t *testing.T) {
	a := newAPI(t)
	token := a.login()

	code, body := a.do(http.MethodPost, "/v1/customers", token, map[string]any{
		"store_id":   a.f.Store,
		"first_name": "PATRICIA",
		"last_name":  "JOHNSON",
		"address": map[string]any{
			"address": "1-1 Chiyoda", "district": "Tokyo-to", "city": "Tokyo", "country": "Japan", "phone": "555-0199",
		},
	})
	require.Equal(t, http.StatusCreated, code, body)
	id := uint64(body["customer_id"].(float64))
	addr := body["address"].(map[string]any)
	city := addr["city"].(map[string]any)
	assert.Equal(t, "Tokyo", city["city"])
	assert.Equal(t, "Japan", city["country"].(map[string]any)["country"])
	assert.NotContains(t, body, "rentals", "history has its own endpoint")

	code, rental := a.do(http.MethodPost, "/v1/rentals", token, map[string]any{
		"inventory_id": a.f.Inventory[0], "customer_id": id,
	})
	require.Equal(t, http.StatusCreated, code, rental)
	assert.EqualValues(t, a.f.Manager, rental["staff_id"])
	payments := rental["payments"].([]any)
	require.Len(t, payments, 1)
	assert.Equal(t, "0.99", payments[0].(map[string]any)["amount"])

	code, body = a.do(http.MethodDelete, fmt.Sprintf("/v1/customers/%d", id), token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, body["error"], "conflict")

	code, body = a.do(http.MethodGet, fmt.Sprintf("/v1/customers/%d/balance", id), token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "0.99", body["paid"])
	assert.EqualValues(t, 1, body["open_rentals"])

	rentalID := uint64(rental["rental_id"].(float64))
	code, _ = a.do(http.MethodPost, fmt.Sprintf("/v1/rentals/%d/return", rentalID), token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodPost, fmt.Sprintf("/v1/rentals/%d/return", rentalID), token, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodDelete, fmt.Sprintf("/v1/customers/%d", id), token, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = a.do(http.MethodGet, fmt.Sprintf("/v1/customers/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFilmAvailabilityRoute(t *testing.T) {
	a := newAPI(t)
	token := a.login()

	code, body := a.do(http.MethodGet, fmt.Sprintf("/v1/films/%d/availability", a.f.Film), token, nil)
	require.Equal(t, http.StatusOK, code)
	stores := body["stores"].([]any)
	require.Len(t, stores, 1)
	assert.EqualValues(t, 3, stores[0].(map[string]any)["available"])
}

func TestBadParams(t *testing.T) {
	a := newAPI(t)
	token := a.login()

	code, body := a.do(http.MethodGet, "/v1/films/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid id", body["error"])

	code, body = a.do(http.MethodGet, "/v1/films?limit=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid limit", body["error"])
}

func TestListRendersArray(t *testing.T) {
	a := newAPI(t)
	token := a.login()

	code, body := a.raw(http.MethodGet, "/v1/payments", token)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))
}

func TestPoolExhaustionIsUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the request deadline")
	}
	// production settings: the request deadline fires before the acquire timeout
	a := newAPIWithTimeout(t, database.DefaultAcquireTimeout)
	a.db.SetMaxOpenConns(1)
	held, err := a.db.Conn(context.Background())
	require.NoError(t, err)
	defer held.Close()

	code, body := a.do(http.MethodGet, fmt.Sprintf("/v1/customers/%d", a.f.Customer), staffToken(t, a.f.Manager), nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "request timed out", body["error"])

	require.NoError(t, held.Close())
	code, _ = a.do(http.MethodGet, fmt.Sprintf("/v1/customers/%d", a.f.Customer), staffToken(t, a.f.Manager), nil)
	assert.Equal(t, http.StatusOK, code)
}
