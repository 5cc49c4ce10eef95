package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

// UserRepo provides database operations for user accounts.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

const userColumns = `id, email, first_name, last_name, password_hash, provider, subject, role, created_at`

const (
	userInsertQuery = `
		INSERT INTO users (id, email, first_name, last_name, password_hash, provider, subject, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	userGetByIDQuery    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	userGetByEmailQuery = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	userUpsertQuery     = `
		INSERT INTO users (id, email, first_name, last_name, password_hash, provider, subject, role)
		VALUES ($1, $2, $3, $4, '', $5, $6, $7)
		ON CONFLICT (provider, subject) WHERE subject <> '' DO UPDATE
		SET email = EXCLUDED.email,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    role = EXCLUDED.role,
		    updated_at = now()
		RETURNING ` + userColumns
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domainauth.User, error) {
	var u domainauth.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.Provider, &u.Subject, &u.Role, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new account. Duplicate emails surface as a Conflict AppError.
func (r *UserRepo) Create(ctx context.Context, in ports.CreateUserInput) (*domainauth.User, error) {
	role := in.Role
	if role == "" {
		role = domainauth.RoleUser
	}
	provider := in.Provider
	if provider == "" {
		provider = domainauth.ProviderLocal
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, userInsertQuery,
		uuid.NewString(), normalizeEmail(in.Email), in.FirstName, in.LastName,
		in.PasswordHash, provider, in.Subject, role,
	))
	if err != nil {
		return nil, wrapDBErr("create user", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domainauth.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, userGetByIDQuery, id))
	if err != nil {
		return nil, wrapDBErr("get user by id", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domainauth.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, userGetByEmailQuery, normalizeEmail(email)))
	if err != nil {
		return nil, wrapDBErr("get user by email", err)
	}
	return u, nil
}

// UpsertExternal creates the account linked to (provider, subject) or refreshes its profile and role.
func (r *UserRepo) UpsertExternal(ctx context.Context, in ports.CreateUserInput) (*domainauth.User, error) {
	if in.Subject == "" {
		return nil, ErrIDRequired
	}
	u, err := scanUser(r.DB.QueryRowContext(ctx, userUpsertQuery,
		uuid.NewString(), normalizeEmail(in.Email), in.FirstName, in.LastName,
		in.Provider, in.Subject, in.Role,
	))
	if err != nil {
		return nil, wrapDBErr("upsert external user", err)
	}
	return u, nil
}
