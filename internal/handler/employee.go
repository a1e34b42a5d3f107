package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/employee-task-hub/internal/notify"
	"github.com/iliyamo/employee-task-hub/internal/repository"
)

// EmployeeHandler bundles dependencies for employee provisioning. All of
// these endpoints except Confirm and Profile sit behind the owner role
// gate; they are validated pass-throughs to storage.
type EmployeeHandler struct {
	Identities *repository.IdentityRepo
	Tokens     *repository.TokenRepo
	Notifier   notify.Dispatcher
}

func NewEmployeeHandler(ids *repository.IdentityRepo, tokens *repository.TokenRepo, notifier notify.Dispatcher) *EmployeeHandler {
	return &EmployeeHandler{Identities: ids, Tokens: tokens, Notifier: notifier}
}

type createEmployeeReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}
type employeeIDReq struct {
	EmployeeID string `json:"employeeId"`
}

// Create provisions a new unconfirmed employee and dispatches the account
// confirmation notification.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req createEmployeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	department := strings.TrimSpace(req.Department)
	if name == "" || email == "" || department == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email, and department are required"})
	}
	if !validEmail(email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email format"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Identities.CreateEmployee(ctx, name, email, department)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "employee with this email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create employee failed"})
	}

	// Confirmation is a soft requirement for login, so a failed dispatch
	// does not undo the creation; the owner can trigger a resend.
	if err := h.Notifier.Send(ctx, notify.ChannelEmail, email, "", "confirmation"); err != nil {
		c.Logger().Warnf("confirmation dispatch failed for %s: %v", email, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"employeeId": id,
		"message":    "employee created successfully",
	})
}

// Get returns one employee by ID.
func (h *EmployeeHandler) Get(c echo.Context) error {
	var req employeeIDReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.EmployeeID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee ID is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	emp, err := h.Identities.GetByID(ctx, strings.TrimSpace(req.EmployeeID))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toUserPart(emp))
}

// Delete removes an employee and revokes any refresh tokens it held so
// stale sessions cannot be renewed.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	var req employeeIDReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.EmployeeID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee ID is required"})
	}
	employeeID := strings.TrimSpace(req.EmployeeID)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Identities.GetByID(ctx, employeeID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Identities.Delete(ctx, employeeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete employee"})
	}
	_ = h.Tokens.RevokeAllForIdentity(ctx, employeeID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "employee deleted successfully"})
}

// List returns all employees.
func (h *EmployeeHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	emps, err := h.Identities.ListEmployees(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userPart, 0, len(emps))
	for _, e := range emps {
		out = append(out, toUserPart(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"employees": out})
}

// Confirm flips the employee's confirmed flag. The endpoint is public:
// the employee follows the link from the confirmation notification before
// they can log in at all.
func (h *EmployeeHandler) Confirm(c echo.Context) error {
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

	if err := h.Identities.Confirm(ctx, email); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "account confirmed"})
}

// Profile returns an employee's own record looked up by email.
func (h *EmployeeHandler) Profile(c echo.Context) error {
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
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"employeeId": emp.ID,
		"name":       emp.Name,
		"email":      emp.Email,
		"department": emp.Department,
		"confirmed":  emp.Confirmed,
		"createdAt":  emp.CreatedAt,
	})
}
