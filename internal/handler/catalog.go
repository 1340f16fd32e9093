package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
)

// CatalogHandler serves the reference tables: actors, categories,
// languages, countries and cities.
type CatalogHandler struct{ base }

func NewCatalogHandler(svc *service.Services, proj *projection.Projector, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{newBase(svc, proj, log)}
}

func (h *CatalogHandler) CreateActor(c echo.Context) error {
	var in service.ActorInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.svc.Catalog.CreateActor(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Actor(a))
}

func (h *CatalogHandler) GetActor(c echo.Context) error {
	return showOne(h.base, c, h.svc.Catalog.Actor, h.proj.Actor)
}

func (h *CatalogHandler) ListActors(c echo.Context) error {
	return showPage(h.base, c, h.svc.Catalog.Actors, h.proj.Actor)
}

func (h *CatalogHandler) UpdateActor(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var in service.ActorInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.svc.Catalog.UpdateActor(ctx, id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.proj.Actor(a))
}

func (h *CatalogHandler) DeleteActor(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Catalog.DeleteActor)
}

type categoryReq struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cat, err := h.svc.Catalog.CreateCategory(ctx, req.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Category(cat))
}

func (h *CatalogHandler) GetCategory(c echo.Context) error {
	return showOne(h.base, c, h.svc.Catalog.Category, h.proj.Category)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	return showPage(h.base, c, h.svc.Catalog.Categories, h.proj.Category)
}

func (h *CatalogHandler) GetLanguage(c echo.Context) error {
	return showOne(h.base, c, h.svc.Catalog.Language, h.proj.Language)
}

func (h *CatalogHandler) ListLanguages(c echo.Context) error {
	return showPage(h.base, c, h.svc.Catalog.Languages, h.proj.Language)
}

func (h *CatalogHandler) ListCountries(c echo.Context) error {
	return showPage(h.base, c, h.svc.Catalog.Countries, h.proj.Country)
}

func (h *CatalogHandler) ListCities(c echo.Context) error {
	return showPage(h.base, c, h.svc.Catalog.Cities, h.proj.City)
}
