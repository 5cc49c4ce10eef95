package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/imaging"
	"github.com/target/wardrobe/internal/ports"
)

// DefaultMaxImageBytes caps product image uploads.
const DefaultMaxImageBytes int64 = 5 << 20

// ErrImageTooLarge is returned when an upload exceeds the configured size limit.
var ErrImageTooLarge = apperrors.ValidationField("image", "image is too large")

// ProductServiceOptions groups dependencies for ProductService.
type ProductServiceOptions struct {
	Repo          ports.ProductRepository // Required
	Files         ports.FileStore         // Required for image uploads
	MaxImageBytes int64
	Logger        *slog.Logger
}

// ProductService orchestrates catalog product operations for a single owner.
type ProductService struct {
	repo     ports.ProductRepository
	files    ports.FileStore
	maxBytes int64
	logger   *slog.Logger
}

// NewProductService constructs a new ProductService.
func NewProductService(opts ProductServiceOptions) *ProductService {
	maxBytes := opts.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductService{
		repo:     opts.Repo,
		files:    opts.Files,
		maxBytes: maxBytes,
		logger:   logger.With("component", "product_service"),
	}
}

// Create adds a product to the owner's catalog.
func (s *ProductService) Create(ctx context.Context, ownerID string, req *model.CreateProductRequest) (*model.Product, error) {
	return s.repo.Create(ctx, ownerID, req)
}

// Get returns a product owned by ownerID. Products of other owners are reported as not found.
func (s *ProductService) Get(ctx context.Context, id, ownerID string) (*model.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, apperrors.NotFound("product not found")
	}
	return p, nil
}

// List returns a page of the owner's products.
func (s *ProductService) List(ctx context.Context, opts model.ProductListOptions) ([]*model.Product, error) {
	if opts.OwnerID == "" {
		return nil, apperrors.Unauthorized("owner is required")
	}
	return s.repo.List(ctx, opts)
}

// Update applies a partial update.
func (s *ProductService) Update(ctx context.Context, id, ownerID string, req *model.UpdateProductRequest) (*model.Product, error) {
	return s.repo.Update(ctx, id, ownerID, req)
}

// Delete removes a product and its image file.
func (s *ProductService) Delete(ctx context.Context, id, ownerID string) error {
	p, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("product not found")
	}
	if p.ImagePath != "" && s.files != nil {
		if rmErr := s.files.Remove(p.ImagePath); rmErr != nil {
			s.logger.WarnContext(ctx, "failed to remove product image", "product_id", id, "error", rmErr)
		}
	}
	return nil
}

// SaveImage validates and stores an uploaded image for a product and records its path.
// The previous image file, if any, is removed once the new one is recorded.
func (s *ProductService) SaveImage(ctx context.Context, id, ownerID string, r io.Reader) (*model.Product, error) {
	if s.files == nil {
		return nil, errors.New("image storage is not configured")
	}
	p, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, apperrors.ValidationField("image", "image is required")
	}

	img, err := imaging.Process(data)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupportedType) {
			return nil, apperrors.ValidationField("image", imaging.ErrUnsupportedType.Error())
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "image could not be decoded")
	}

	name := path.Join(id, uuid.NewString()+img.Ext)
	if err := s.files.Put(name, img.Data); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	if err := s.repo.SetImage(ctx, id, ownerID, name); err != nil {
		return nil, errors.Join(err, s.files.Remove(name))
	}
	if p.ImagePath != "" && p.ImagePath != name {
		if rmErr := s.files.Remove(p.ImagePath); rmErr != nil {
			s.logger.WarnContext(ctx, "failed to remove previous product image", "product_id", id, "error", rmErr)
		}
	}

	s.logger.InfoContext(ctx, "stored product image",
		"product_id", id, "content_type", img.ContentType, "width", img.Width, "height", img.Height)
	p.ImagePath = name
	return p, nil
}
