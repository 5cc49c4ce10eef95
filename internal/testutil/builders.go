// Package testutil provides database, redis and fixture helpers for wardrobe tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserFixture describes a row inserted by InsertUser.
type UserFixture struct {
	ID        string
	Email     string
	FirstName string
	Role      string
}

// NewUserFixture returns a fixture with a unique id and email.
func NewUserFixture() *UserFixture {
	id := uuid.NewString()
	return &UserFixture{
		ID:        id,
		Email:     fmt.Sprintf("user-%s@example.com", id[:8]),
		FirstName: "Test",
		Role:      "user",
	}
}

// WithEmail sets the email.
func (f *UserFixture) WithEmail(email string) *UserFixture {
	f.Email = email
	return f
}

// WithRole sets the role.
func (f *UserFixture) WithRole(role string) *UserFixture {
	f.Role = role
	return f
}

// InsertUser writes the fixture directly, bypassing repositories.
func InsertUser(t TestingTB, db *sql.DB, f *UserFixture) *UserFixture {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash, provider, subject, role)
		 VALUES ($1, $2, $3, '', '', 'local', '', $4)`,
		f.ID, f.Email, f.FirstName, f.Role,
	)
	if err != nil {
		t.Fatalf("insert user fixture: %v", err)
	}
	return f
}
