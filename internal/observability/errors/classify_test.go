package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/wardrobe/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"canceled", fmt.Errorf("purge: %w", context.Canceled), "canceled"},
		{"timeout", fmt.Errorf("purge: %w", context.DeadlineExceeded), "timeout"},
		{"app error", fmt.Errorf("get: %w", apperrors.NotFound("product not found")), "not_found"},
		{"pg class", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "57P01"}), "pg_57"},
		{"type name", fmt.Errorf("wrap: %w", &fs.PathError{Op: "open", Path: "/uploads"}), "fs_patherror"},
		{"plain", errors.New("x"), "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
