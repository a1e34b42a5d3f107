// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound maps to a 404 response while ErrEmailExists
// signals that an employee with the same login email was already
// provisioned.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating an employee whose login
// email is already taken. Handlers translate this into 400/409.
var ErrEmailExists = errors.New("email already exists")
