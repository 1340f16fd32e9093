package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/rental-store/internal/middleware"
	"github.com/iliyamo/rental-store/internal/projection"
	"github.com/iliyamo/rental-store/internal/service"
	"github.com/iliyamo/rental-store/internal/utils"
)

// AuthHandler issues access tokens to staff.
type AuthHandler struct {
	base
	Secret    string
	AccessTTL time.Duration
}

func NewAuthHandler(svc *service.Services, proj *projection.Projector, log zerolog.Logger, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{base: newBase(svc, proj, log), Secret: secret, AccessTTL: ttl}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	Staff  *projection.StaffView `json:"staff"`
	Role   string                `json:"role"`
	Access tokenPart             `json:"access"`
}

// Login: verify username and password and return an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "username/password required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, role, err := h.svc.Staff.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	access, err := utils.NewAccessToken(h.Secret, st.ID, role, h.AccessTTL)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, authResp{
		Staff:  h.proj.Staff(st),
		Role:   role,
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me returns the staff member the token was issued to.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.StaffID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.svc.Staff.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"staff": h.proj.Staff(st), "role": middleware.Role(c)})
}
