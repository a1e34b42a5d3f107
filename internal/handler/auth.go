package handler

import (
	"context"
	"database/sql"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/employee-task-hub/internal/config"
	"github.com/iliyamo/employee-task-hub/internal/model"
	"github.com/iliyamo/employee-task-hub/internal/notify"
	"github.com/iliyamo/employee-task-hub/internal/otp"
	"github.com/iliyamo/employee-task-hub/internal/repository"
	"github.com/iliyamo/employee-task-hub/internal/utils"
)

// AuthHandler bundles dependencies for the passwordless login endpoints.
// Owners authenticate with a code sent to their phone, employees with a
// code sent to their email; both paths converge on the same validation
// state machine and session issuance.
type AuthHandler struct {
	Cfg        config.Config
	Identities *repository.IdentityRepo
	Tokens     *repository.TokenRepo
	Codes      *otp.Authenticator
	Notifier   notify.Dispatcher
}

func NewAuthHandler(cfg config.Config, ids *repository.IdentityRepo, tokens *repository.TokenRepo, codes *otp.Authenticator, notifier notify.Dispatcher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Identities: ids, Tokens: tokens, Codes: codes, Notifier: notifier}
}

// ----- DTOs -----

type phoneReq struct {
	PhoneNumber string `json:"phoneNumber"`
}
type ownerValidateReq struct {
	PhoneNumber string `json:"phoneNumber"`
	AccessCode  string `json:"accessCode"`
}
type emailReq struct {
	Email string `json:"email"`
}
type employeeValidateReq struct {
	Email      string `json:"email"`
	AccessCode string `json:"accessCode"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type userPart struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}
type sessionPart struct {
	Token        string    `json:"token"`
	TokenExpires time.Time `json:"tokenExpires"`
	RefreshToken string    `json:"refreshToken"`
	User         userPart  `json:"user"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[1-9]\d{3,14}$`)
)

func validEmail(s string) bool { return emailRe.MatchString(s) }
func validPhone(s string) bool { return phoneRe.MatchString(strings.ReplaceAll(s, " ", "")) }

func toUserPart(id model.Identity) userPart {
	return userPart{ID: id.ID, Name: id.Name, Email: id.Email, Phone: id.Phone, Role: id.Role, Department: id.Department}
}

// OwnerCreateAccessCode: generate and dispatch a login code via SMS.
func (h *AuthHandler) OwnerCreateAccessCode(c echo.Context) error {
	var req phoneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "phone number is required"})
	}
	if !validPhone(phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone number format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	code, err := h.Codes.RequestCode(ctx, phone)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create access code"})
	}
	// The code stays valid even when dispatch fails; the user can ask for
	// a resend without invalidating a code that may already have reached
	// them through another channel.
	if err := h.Notifier.Send(ctx, notify.ChannelSMS, phone, code, "login"); err != nil {
		c.Logger().Warnf("owner access code dispatch failed for %s: %v", phone, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "access code sent to your phone number"})
}

// OwnerValidateAccessCode: run the validation state machine, get-or-create
// the owner identity and issue a session.
func (h *AuthHandler) OwnerValidateAccessCode(c echo.Context) error {
	var req ownerValidateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	phone := strings.TrimSpace(req.PhoneNumber)
	codeStr := strings.TrimSpace(req.AccessCode)
	if phone == "" || codeStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access code and phone number are required"})
	}
	if !otp.ValidCode(codeStr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid access code format (must be 6 digits)"})
	}
	if !validPhone(phone) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid phone number format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Codes.Validate(ctx, phone, codeStr); err != nil {
		return codeFailure(c, err)
	}

	owner, err := h.Identities.GetOrCreateOwner(ctx, phone)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not resolve owner"})
	}
	return h.issueSession(c, ctx, owner)
}

// EmployeeLoginEmail: generate and dispatch a login code via email. The
// employee must exist and be confirmed before any code is generated.
func (h *AuthHandler) EmployeeLoginEmail(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}
	if !validEmail(email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	emp, err := h.Identities.GetEmployeeByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found with this email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !emp.Confirmed {
		// Rejected before any code is generated.
		return c.JSON(http.StatusForbidden, echo.Map{"error": "confirm your account first"})
	}

	code, err := h.Codes.RequestCode(ctx, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create access code"})
	}
	if err := h.Notifier.Send(ctx, notify.ChannelEmail, email, code, "login"); err != nil {
		c.Logger().Warnf("employee access code dispatch failed for %s: %v", email, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "access code sent to your email address"})
}

// EmployeeValidateAccessCode: validate the code and issue a session for a
// pre-provisioned employee.
func (h *AuthHandler) EmployeeValidateAccessCode(c echo.Context) error {
	var req employeeValidateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	codeStr := strings.TrimSpace(req.AccessCode)
	if email == "" || codeStr == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access code and email are required"})
	}
	if !otp.ValidCode(codeStr) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid access code format (must be 6 digits)"})
	}
	if !validEmail(email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Codes.Validate(ctx, email, codeStr); err != nil {
		return codeFailure(c, err)
	}

	// Employees are never auto-created on validation.
	emp, err := h.Identities.GetEmployeeByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found with this email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return h.issueSession(c, ctx, emp)
}

// Refresh: exchange a refresh token for a new session pair. The old
// refresh token is revoked (rotation).
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	identityID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	id, err := h.Identities.GetByID(ctx, identityID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load identity failed"})
	}
	return h.issueSession(c, ctx, id)
}

// issueSession signs an access token, stores a rotating refresh token and
// writes the standard success envelope.
func (h *AuthHandler) issueSession(c echo.Context, ctx context.Context, id model.Identity) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id.ID, id.Role, id.Name, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, id.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": sessionPart{
			Token:        access.Token,
			TokenExpires: access.Exp,
			RefreshToken: refresh.Raw, // raw back to client
			User:         toUserPart(id),
		},
	})
}

// codeFailure maps validation outcomes onto the error taxonomy.
func codeFailure(c echo.Context, err error) error {
	switch err {
	case otp.ErrNoCode:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no access code found"})
	case otp.ErrExpiredCode:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "access code expired"})
	case otp.ErrInvalidCode:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid access code"})
	case otp.ErrTooManyAttempts:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many attempts"})
	case sql.ErrNoRows:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no access code found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation failed"})
}
