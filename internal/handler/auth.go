package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/auth"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Users      UserStore
	Tokens     *auth.TokenIssuer
	BcryptCost int
	Log        *slog.Logger
}

func NewAuthHandler(u UserStore, tokens *auth.TokenIssuer, bcryptCost int, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Users: u, Tokens: tokens, BcryptCost: bcryptCost, Log: orDiscard(log)}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	User   userPart         `json:"user"`
	Access auth.AccessToken `json:"access"`
}

// Register creates a CUSTOMER account and returns an access token
// immediately.  Admins are promoted out of band.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	email := repository.NormalizeEmail(req.Email)

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"password": "Ensure this field has at least 8 characters."}})
		}
		return storeError(c, h.Log, err)
	}

	ctx, cancel := dbContext(c)
	defer cancel()
	uid, err := h.Users.Create(ctx, email, hash, model.RoleCustomer)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return storeError(c, h.Log, err)
	}
	access, err := h.Tokens.Issue(uid, model.RoleCustomer)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, authResp{
		User:   userPart{ID: uid, Email: email, Role: model.RoleCustomer},
		Access: access,
	})
}

// Login verifies credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return storeError(c, h.Log, err)
	}
	if !u.IsActive || !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	access, err := h.Tokens.Issue(u.ID, u.Role)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, authResp{
		User:   userPart{ID: u.ID, Email: u.Email, Role: u.Role},
		Access: access,
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return storeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
}
