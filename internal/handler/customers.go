package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
)

// CustomerHandler serves /v1/customers.
type CustomerHandler struct{ base }

func NewCustomerHandler(svc *service.Services, proj *projection.Projector, log zerolog.Logger) *CustomerHandler {
	return &CustomerHandler{newBase(svc, proj, log)}
}

func (h *CustomerHandler) Create(c echo.Context) error {
	var in service.CreateCustomerInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cust, err := h.svc.Customers.Create(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Customer(cust))
}

func (h *CustomerHandler) Get(c echo.Context) error {
	return showOne(h.base, c, h.svc.Customers.Get, h.proj.Customer)
}

func (h *CustomerHandler) List(c echo.Context) error {
	return showPage(h.base, c, h.svc.Customers.List, h.proj.Customer)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var in service.UpdateCustomerInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	cust, err := h.svc.Customers.Update(ctx, id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.proj.Customer(cust))
}

// Delete removes a customer with no open rental, along with their
// payment and rental history.
func (h *CustomerHandler) Delete(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Customers.Delete)
}

// Rentals lists the customer's rentals.
func (h *CustomerHandler) Rentals(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	all, err := h.svc.Customers.Rentals(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list(all, h.proj.Rental))
}

func (h *CustomerHandler) Payments(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	all, err := h.svc.Customers.Payments(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list(all, h.proj.Payment))
}

func (h *CustomerHandler) Balance(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	bal, err := h.svc.Customers.Balance(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, projection.BalanceView{
		CustomerID:  bal.CustomerID,
		Paid:        bal.Paid.StringFixed(2),
		OpenRentals: bal.OpenRentals,
	})
}
