package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
)

// FilmHandler serves /v1/films and the copies under them.
type FilmHandler struct{ base }

func NewFilmHandler(svc *service.Services, proj *projection.Projector, log zerolog.Logger) *FilmHandler {
	return &FilmHandler{newBase(svc, proj, log)}
}

func (h *FilmHandler) Create(c echo.Context) error {
	var in service.FilmInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	f, err := h.svc.Films.Create(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Film(f))
}

func (h *FilmHandler) Get(c echo.Context) error {
	return showOne(h.base, c, h.svc.Films.Get, h.proj.Film)
}

func (h *FilmHandler) List(c echo.Context) error {
	return showPage(h.base, c, h.svc.Films.List, h.proj.Film)
}

// Update changes the fields present in the body. actor_ids and
// category_ids, when present, replace the film's links.
func (h *FilmHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var in service.FilmInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	f, err := h.svc.Films.Update(ctx, id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.proj.Film(f))
}

func (h *FilmHandler) Delete(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Films.Delete)
}

// Availability reports per-store copy counts for the film.
func (h *FilmHandler) Availability(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	av, err := h.svc.Films.Availability(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"film_id": id, "stores": h.proj.Availability(av)})
}

// InventoryHandler serves /v1/inventory.
type InventoryHandler struct{ base }

func NewInventoryHandler(svc *service.Services, proj *projection.Projector, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{newBase(svc, proj, log)}
}

type createInventoryReq struct {
	FilmID  uint64 `json:"film_id"`
	StoreID uint64 `json:"store_id"`
}

func (h *InventoryHandler) Create(c echo.Context) error {
	var req createInventoryReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	inv, err := h.svc.Inventory.Create(ctx, req.FilmID, req.StoreID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Inventory(inv))
}

func (h *InventoryHandler) Get(c echo.Context) error {
	return showOne(h.base, c, h.svc.Inventory.Get, h.proj.Inventory)
}

func (h *InventoryHandler) List(c echo.Context) error {
	return showPage(h.base, c, h.svc.Inventory.List, h.proj.Inventory)
}

func (h *InventoryHandler) Delete(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Inventory.Delete)
}
