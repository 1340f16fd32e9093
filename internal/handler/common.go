package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
)

// requestTimeout bounds every service call made by a handler.
const requestTimeout = 5 * time.Second

// base carries what every resource handler needs.
type base struct {
	svc  *service.Services
	proj *projection.Projector
	log  zerolog.Logger
}

func newBase(svc *service.Services, proj *projection.Projector, log zerolog.Logger) base {
	if svc == nil || proj == nil {
		panic("handler: nil services or projector")
	}
	return base{svc: svc, proj: proj, log: log.With().Str("component", "handler").Logger()}
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

var statusOf = map[service.Kind]int{
	service.KindBadInput:     http.StatusBadRequest,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindUnavailable:  http.StatusServiceUnavailable,
}

// fail writes err as {"error": msg} with the status for its kind.
// Internal failures are logged and their detail is not sent.
func (h base) fail(c echo.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		h.log.Warn().Err(err).Str("route", c.Path()).Msg("request timed out")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	}
	kind := service.KindOf(err)
	status, ok := statusOf[kind]
	if !ok {
		h.log.Error().Err(err).Str("route", c.Path()).Msg("request failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	msg := err.Error()
	if kind == service.KindUnavailable {
		h.log.Warn().Err(err).Str("route", c.Path()).Msg("database unavailable")
		msg = "service unavailable"
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// idParam parses the :name path parameter as a positive id. Its error is
// meant for badRequest.
func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// pageParams reads ?limit= and ?offset=. Missing values are 0, which the
// row store turns into its default page.
func pageParams(c echo.Context) (limit, offset int, err error) {
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &limit}, {"offset", &offset}} {
		v := c.QueryParam(p.name)
		if v == "" {
			continue
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid %s", p.name)
		}
		*p.dst = n
	}
	return limit, offset, nil
}

// list projects a slice and always renders a JSON array.
func list[M any, V any](in []*M, fn func(*M) *V) []*V {
	out := projection.Each(in, fn)
	if out == nil {
		out = []*V{}
	}
	return out
}

// showOne serves GET /<resource>/:id.
func showOne[M any, V any](h base, c echo.Context, load func(context.Context, uint64) (*M, error), view func(*M) *V) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	m, err := load(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, view(m))
}

// showPage serves GET /<resource>?limit=&offset=.
func showPage[M any, V any](h base, c echo.Context, load func(context.Context, int, int) ([]*M, error), view func(*M) *V) error {
	limit, offset, err := pageParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	all, err := load(ctx, limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list(all, view))
}

// deleteOne serves DELETE /<resource>/:id with 204 on success.
func deleteOne(h base, c echo.Context, del func(context.Context, uint64) error) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := del(ctx, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
