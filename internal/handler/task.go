package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/employee-task-hub/internal/model"
	"github.com/iliyamo/employee-task-hub/internal/realtime"
	"github.com/iliyamo/employee-task-hub/internal/repository"
)

// TaskHandler bundles dependencies for task endpoints. Task mutations are
// pushed to the assignee's live connection as a courtesy; the stored task
// is the system of record.
type TaskHandler struct {
	Tasks      *repository.TaskRepo
	Identities *repository.IdentityRepo
	Registry   *realtime.Registry
}

func NewTaskHandler(tasks *repository.TaskRepo, ids *repository.IdentityRepo, reg *realtime.Registry) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Identities: ids, Registry: reg}
}

type createTaskReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

type taskPart struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assignedTo"`
	CreatedBy   string     `json:"createdBy"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toTaskPart(t model.Task) taskPart {
	return taskPart{
		ID: t.ID, Title: t.Title, Description: t.Description,
		AssignedTo: t.AssignedTo, CreatedBy: t.CreatedBy,
		Priority: t.Priority, Status: t.Status, DueDate: t.DueDate,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

// Create assigns a new task to an employee (owner only).
func (h *TaskHandler) Create(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTaskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	title := strings.TrimSpace(req.Title)
	assignedTo := strings.TrimSpace(req.AssignedTo)
	if title == "" || assignedTo == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and assignedTo are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Identities.GetByID(ctx, assignedTo); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var due *time.Time
	if s := strings.TrimSpace(req.DueDate); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dueDate, want RFC3339"})
		}
		due = &parsed
	}

	task, err := h.Tasks.Create(ctx, model.Task{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		AssignedTo:  assignedTo,
		CreatedBy:   callerID,
		Priority:    strings.TrimSpace(req.Priority),
		DueDate:     due,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}

	h.Registry.Push(task.AssignedTo, "task_notification", toTaskPart(task))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"task":    toTaskPart(task),
		"message": "task created successfully",
	})
}

// All lists every task (owner only).
func (h *TaskHandler) All(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.Tasks.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": toTaskParts(tasks)})
}

// Mine lists the tasks visible to the caller: owners see everything,
// employees only what is assigned to them.
func (h *TaskHandler) Mine(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var tasks []model.Task
	if getRole(c) == model.RoleOwner {
		tasks, err = h.Tasks.ListAll(ctx)
	} else {
		tasks, err = h.Tasks.ListByAssignee(ctx, callerID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": toTaskParts(tasks)})
}

// Get returns one task. Employees may only fetch their own tasks.
func (h *TaskHandler) Get(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if getRole(c) != model.RoleOwner && task.AssignedTo != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"task": toTaskPart(task)})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus moves a task through the status enumeration. Owners may
// update any task, employees only their own.
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}
	status := strings.TrimSpace(req.Status)
	if !model.ValidTaskStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status. must be one of: pending, in-progress, completed, cancelled"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if getRole(c) != model.RoleOwner && task.AssignedTo != callerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you can only update your own tasks"})
	}

	if err := h.Tasks.UpdateStatus(ctx, task.ID, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	task.Status = status

	h.Registry.Push(task.AssignedTo, "task_notification", toTaskPart(task))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "task status updated successfully"})
}

func toTaskParts(tasks []model.Task) []taskPart {
	out := make([]taskPart, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskPart(t))
	}
	return out
}
