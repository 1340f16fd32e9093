package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
)

// StoreHandler serves /v1/stores and /v1/staff. Mutations are routed
// behind the MANAGER role.
type StoreHandler struct{ base }

func NewStoreHandler(svc *service.Services, proj *projection.Projector, log zerolog.Logger) *StoreHandler {
	return &StoreHandler{newBase(svc, proj, log)}
}

func (h *StoreHandler) Create(c echo.Context) error {
	var in service.CreateStoreInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.svc.Stores.Create(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Store(st))
}

func (h *StoreHandler) Get(c echo.Context) error {
	return showOne(h.base, c, h.svc.Stores.Get, h.proj.Store)
}

func (h *StoreHandler) List(c echo.Context) error {
	return showPage(h.base, c, h.svc.Stores.List, h.proj.Store)
}

func (h *StoreHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var in service.UpdateStoreInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.svc.Stores.Update(ctx, id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.proj.Store(st))
}

func (h *StoreHandler) Delete(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Stores.Delete)
}

func (h *StoreHandler) CreateStaff(c echo.Context) error {
	var in service.CreateStaffInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.svc.Staff.Create(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Staff(st))
}

func (h *StoreHandler) GetStaff(c echo.Context) error {
	return showOne(h.base, c, h.svc.Staff.Get, h.proj.Staff)
}

func (h *StoreHandler) ListStaff(c echo.Context) error {
	return showPage(h.base, c, h.svc.Staff.List, h.proj.Staff)
}

func (h *StoreHandler) UpdateStaff(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var in service.UpdateStaffInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.svc.Staff.Update(ctx, id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.proj.Staff(st))
}

func (h *StoreHandler) DeleteStaff(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Staff.Delete)
}
