package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/middleware"
	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
)

// RentalHandler serves /v1/rentals and /v1/payments.
type RentalHandler struct{ base }

func NewRentalHandler(svc *service.Services, proj *projection.Projector, log zerolog.Logger) *RentalHandler {
	return &RentalHandler{newBase(svc, proj, log)}
}

// Create checks a copy out. staff_id defaults to the caller.
func (h *RentalHandler) Create(c echo.Context) error {
	var in service.CreateRentalInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.StaffID == 0 {
		in.StaffID, _ = middleware.StaffID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.svc.Rentals.Create(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Rental(r))
}

func (h *RentalHandler) Get(c echo.Context) error {
	return showOne(h.base, c, h.svc.Rentals.Get, h.proj.Rental)
}

func (h *RentalHandler) List(c echo.Context) error {
	return showPage(h.base, c, h.svc.Rentals.List, h.proj.Rental)
}

type returnReq struct {
	ReturnDate *time.Time `json:"return_date"`
}

// Return closes an open rental. Without a return_date the copy is
// returned now.
func (h *RentalHandler) Return(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req returnReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.svc.Rentals.Return(ctx, id, req.ReturnDate)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.proj.Rental(r))
}

func (h *RentalHandler) Delete(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Rentals.Delete)
}

// CreatePayment records a payment. staff_id defaults to the caller.
func (h *RentalHandler) CreatePayment(c echo.Context) error {
	var in service.CreatePaymentInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if in.StaffID == 0 {
		in.StaffID, _ = middleware.StaffID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.svc.Payments.Create(ctx, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, h.proj.Payment(p))
}

func (h *RentalHandler) GetPayment(c echo.Context) error {
	return showOne(h.base, c, h.svc.Payments.Get, h.proj.Payment)
}

func (h *RentalHandler) ListPayments(c echo.Context) error {
	return showPage(h.base, c, h.svc.Payments.List, h.proj.Payment)
}

func (h *RentalHandler) DeletePayment(c echo.Context) error {
	return deleteOne(h.base, c, h.svc.Payments.Delete)
}
