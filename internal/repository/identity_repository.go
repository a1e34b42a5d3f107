package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/employee-task-hub/internal/model"
)

// IdentityRepo persists owners and employees in the shared 'identities' table.
type IdentityRepo struct{ DB *sql.DB }

func NewIdentityRepo(db *sql.DB) *IdentityRepo { return &IdentityRepo{DB: db} }

const identityCols = "id,name,email,phone,role,department,confirmed,created_at"

func scanIdentity(row *sql.Row) (model.Identity, error) {
	var (
		id    model.Identity
		email sql.NullString
		phone sql.NullString
		dept  sql.NullString
	)
	err := row.Scan(&id.ID, &id.Name, &email, &phone, &id.Role, &dept, &id.Confirmed, &id.CreatedAt)
	if err == sql.ErrNoRows {
		return id, ErrNotFound
	}
	if err != nil {
		return id, err
	}
	id.Email = email.String
	id.Phone = phone.String
	id.Department = dept.String
	return id, nil
}

// CreateEmployee inserts a new unconfirmed employee and returns its ID.
func (r *IdentityRepo) CreateEmployee(ctx context.Context, name, email, department string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO identities (id, name, email, role, department, confirmed) VALUES (?,?,?,?,?,0)",
		id, name, email, model.RoleEmployee, department)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetOrCreateOwner returns the owner identity for the given phone number,
// creating one on first validation. The display name of a fresh owner is
// derived from the phone number itself; the UI lets the owner rename
// themselves later.
func (r *IdentityRepo) GetOrCreateOwner(ctx context.Context, phone string) (model.Identity, error) {
	phone = strings.TrimSpace(phone)
	owner, err := r.GetOwnerByPhone(ctx, phone)
	if err == nil {
		return owner, nil
	}
	if err != ErrNotFound {
		return model.Identity{}, err
	}

	id := uuid.NewString()
	// INSERT IGNORE keeps a concurrent first validation from failing on the
	// unique phone index; the follow-up read returns whichever row won.
	if _, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO identities (id, name, phone, role, confirmed) VALUES (?,?,?,?,1)",
		id, "Owner "+phone, phone, model.RoleOwner); err != nil {
		return model.Identity{}, err
	}
	return r.GetOwnerByPhone(ctx, phone)
}

// GetOwnerByPhone fetches an owner by its login phone number.
func (r *IdentityRepo) GetOwnerByPhone(ctx context.Context, phone string) (model.Identity, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+identityCols+" FROM identities WHERE phone=? AND role=? LIMIT 1",
		strings.TrimSpace(phone), model.RoleOwner)
	return scanIdentity(row)
}

// GetEmployeeByEmail fetches an employee by its normalized login email.
func (r *IdentityRepo) GetEmployeeByEmail(ctx context.Context, email string) (model.Identity, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+identityCols+" FROM identities WHERE email=? AND role=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email)), model.RoleEmployee)
	return scanIdentity(row)
}

// GetByID fetches any identity by its UUID.
func (r *IdentityRepo) GetByID(ctx context.Context, id string) (model.Identity, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+identityCols+" FROM identities WHERE id=? LIMIT 1", id)
	return scanIdentity(row)
}

// Confirm marks the employee with the given email as confirmed. It returns
// ErrNotFound when no unconfirmed employee matches.
func (r *IdentityRepo) Confirm(ctx context.Context, email string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE identities SET confirmed=1 WHERE email=? AND role=?",
		strings.ToLower(strings.TrimSpace(email)), model.RoleEmployee)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an identity by ID. It returns ErrNotFound when the row
// does not exist.
func (r *IdentityRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM identities WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEmployees returns all employees, newest first.
func (r *IdentityRepo) ListEmployees(ctx context.Context) ([]model.Identity, error) {
	return r.list(ctx,
		"SELECT "+identityCols+" FROM identities WHERE role=? ORDER BY created_at DESC",
		model.RoleEmployee)
}

// ListContacts returns every identity except the caller, for the messaging
// contact picker.
func (r *IdentityRepo) ListContacts(ctx context.Context, selfID string) ([]model.Identity, error) {
	return r.list(ctx,
		"SELECT "+identityCols+" FROM identities WHERE id<>? ORDER BY name ASC",
		selfID)
}

func (r *IdentityRepo) list(ctx context.Context, query string, args ...any) ([]model.Identity, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Identity
	for rows.Next() {
		var (
			id    model.Identity
			email sql.NullString
			phone sql.NullString
			dept  sql.NullString
		)
		if err := rows.Scan(&id.ID, &id.Name, &email, &phone, &id.Role, &dept, &id.Confirmed, &id.CreatedAt); err != nil {
			return nil, err
		}
		id.Email = email.String
		id.Phone = phone.String
		id.Department = dept.String
		out = append(out, id)
	}
	return out, rows.Err()
}
