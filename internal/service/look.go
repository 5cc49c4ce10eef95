package service

import (
	"context"
	"html/template"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/ports"
)

// LookView pairs a look with its rendered notes for display.
type LookView struct {
	*model.Look
	NotesHTML template.HTML
}

// LookService manages looks (named sets of products).
type LookService struct {
	repo ports.LookRepository
}

// NewLookService constructs a new LookService.
func NewLookService(repo ports.LookRepository) *LookService {
	return &LookService{repo: repo}
}

// Create stores a new look. Product ids must belong to the owner.
func (s *LookService) Create(ctx context.Context, ownerID string, req *model.CreateLookRequest) (*model.Look, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthorized("owner is required")
	}
	return s.repo.Create(ctx, ownerID, req)
}

// List returns the owner's looks, newest first, with rendered notes.
func (s *LookService) List(ctx context.Context, ownerID string) ([]LookView, error) {
	looks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]LookView, 0, len(looks))
	for _, l := range looks {
		out = append(out, LookView{Look: l, NotesHTML: RenderNotes(l.Notes)})
	}
	return out, nil
}

// Delete removes a look owned by ownerID.
func (s *LookService) Delete(ctx context.Context, id, ownerID string) error {
	ok, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("look not found")
	}
	return nil
}
