package model

import "time"

// Role names stored in identities.role.  The two roles partition the API:
// owners manage employees and tasks, employees act on what is assigned to
// them.  Both exchange direct messages.
const (
    RoleOwner    = "owner"
    RoleEmployee = "employee"
)

// Identity represents a person known to the system, owner or employee,
// as stored in the `identities` table.  The login identifier depends on
// the role: owners sign in with a phone number, employees with an email
// address.  The json tags are omitted here because these structs are
// primarily used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID         – immutable UUID assigned at creation.
//  Name       – display name shown in the UI and in message contact lists.
//  Email      – login identifier for employees (nullable for owners).
//  Phone      – login identifier for owners (nullable for employees).
//  Role       – "owner" or "employee".
//  Department – free-form department label (employees only, may be empty).
//  Confirmed  – employees must confirm their account before they can
//               request a login code; owners are always confirmed.
//  CreatedAt  – timestamp of creation.
type Identity struct {
    ID         string    // identities.id
    Name       string    // identities.name
    Email      string    // identities.email (empty when unused)
    Phone      string    // identities.phone (empty when unused)
    Role       string    // identities.role
    Department string    // identities.department
    Confirmed  bool      // identities.confirmed
    CreatedAt  time.Time // identities.created_at
}
