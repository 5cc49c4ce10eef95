package ports

import (
	"context"

	"github.com/target/wardrobe/internal/domain/model"
)

// ProductRepository persists catalog products. Mutations are scoped to the owner.
type ProductRepository interface {
	Create(ctx context.Context, ownerID string, req *model.CreateProductRequest) (*model.Product, error)
	GetByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, opts model.ProductListOptions) ([]*model.Product, error)
	Update(ctx context.Context, id, ownerID string, req *model.UpdateProductRequest) (*model.Product, error)
	SetImage(ctx context.Context, id, ownerID, imagePath string) error
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// LookRepository persists looks and their product membership.
type LookRepository interface {
	Create(ctx context.Context, ownerID string, req *model.CreateLookRequest) (*model.Look, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Look, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// EventRepository persists calendar events.
type EventRepository interface {
	Create(ctx context.Context, ownerID string, req *model.CreateEventRequest) (*model.CalendarEvent, error)
	ListRange(ctx context.Context, r model.EventRange) ([]*model.CalendarEvent, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
}

// FileStore stores uploaded files by relative name.
type FileStore interface {
	Put(name string, data []byte) error
	Remove(name string) error
}
