package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/rental-store/internal/config"
	"github.com/iliyamo/rental-store/internal/utils"
)

const secret = "test-secret"

func protected(t *testing.T, roles ...string) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.GET("/v1/me", func(c echo.Context) error {
		id, ok := StaffID(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"staff_id": id, "role": Role(c)})
	}, JWTAuth(secret), RequireRole(roles...))
	return e
}

func bearer(t *testing.T, id uint64, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, role, ttl)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func get(e *echo.Echo, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := protected(t, "STAFF", "MANAGER")

	rec := get(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	rec = get(e, "Bearer nonsense")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(e, bearer(t, 7, "STAFF", -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get(e, bearer(t, 7, "STAFF", time.Minute))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"staff_id":7,"role":"STAFF"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := protected(t, "MANAGER")

	assert.Equal(t, http.StatusForbidden, get(e, bearer(t, 7, "STAFF", time.Minute)).Code)
	assert.Equal(t, http.StatusOK, get(e, bearer(t, 1, "MANAGER", time.Minute)).Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(zerolog.New(&buf)))
	e.GET("/v1/films/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "film not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/films/9", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "/v1/films/:id", line["route"])
	assert.EqualValues(t, 404, line["status"])
	assert.Equal(t, "http", line["component"])
}

func TestRequestLoggerGeneratesID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zerolog.Nop()))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestTokenBucketWithoutRedisPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, zerolog.Nop()))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	for range 3 {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/rentals", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/rentals")

	assert.Equal(t, "rl:ip:10.0.0.1:user:anon:route:POST /v1/rentals",
		buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))

	c.Set(staffIDKey, uint64(3))
	assert.Equal(t, "rl:user:3", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}
