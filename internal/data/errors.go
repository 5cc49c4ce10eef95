package data

import (
	"errors"
	"fmt"

	apperrors "github.com/target/wardrobe/internal/errors"
)

// Shared sentinel errors for data-layer repositories.
var (
	ErrRequestRequired = errors.New("request is required")
	ErrIDRequired      = errors.New("id is required")
	ErrOwnerRequired   = errors.New("owner id is required")
)

// wrapDBErr classifies a driver error and annotates it with the failing operation.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, apperrors.MapDBError(err))
}
