package model

import "time"

// Task statuses.  A task moves through a plain enumeration; there is no
// workflow engine behind it.
const (
    TaskPending    = "pending"
    TaskInProgress = "in-progress"
    TaskCompleted  = "completed"
    TaskCancelled  = "cancelled"
)

// ValidTaskStatus reports whether s is one of the accepted statuses.
func ValidTaskStatus(s string) bool {
    switch s {
    case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
        return true
    }
    return false
}

// Task is a unit of work an owner assigns to an employee, as stored in
// the `tasks` table.
//
// Fields:
//  ID          – UUID assigned at creation.
//  Title       – short summary, required.
//  Description – longer body, may be empty.
//  AssignedTo  – identity ID of the employee responsible.
//  CreatedBy   – identity ID of the owner who created the task.
//  Priority    – free-form priority label, defaults to "medium".
//  Status      – one of the Task* constants above.
//  DueDate     – optional deadline (null when unset).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Task struct {
    ID          string     // tasks.id
    Title       string     // tasks.title
    Description string     // tasks.description
    AssignedTo  string     // tasks.assigned_to
    CreatedBy   string     // tasks.created_by
    Priority    string     // tasks.priority
    Status      string     // tasks.status
    DueDate     *time.Time // tasks.due_date (nullable)
    CreatedAt   time.Time  // tasks.created_at
    UpdatedAt   time.Time  // tasks.updated_at
}
