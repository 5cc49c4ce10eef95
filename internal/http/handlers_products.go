package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
)

// ProductService is the catalog behaviour the product handlers depend on.
type ProductService interface {
	Create(ctx context.Context, ownerID string, req *model.CreateProductRequest) (*model.Product, error)
	Get(ctx context.Context, id, ownerID string) (*model.Product, error)
	List(ctx context.Context, opts model.ProductListOptions) ([]*model.Product, error)
	Update(ctx context.Context, id, ownerID string, req *model.UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id, ownerID string) error
	SaveImage(ctx context.Context, id, ownerID string, r io.Reader) (*model.Product, error)
}

// ProductHandlers serves the /api/products JSON API. Every route requires an identity.
type ProductHandlers struct {
	Svc            ProductService
	MaxUploadBytes int64
}

// productView adds the derived image URL to the stored product.
type productView struct {
	*model.Product
	ImageURL string `json:"image_url,omitempty"`
}

func newProductView(p *model.Product) productView {
	return productView{Product: p, ImageURL: p.ImageURL()}
}

func ownerID(r *http.Request) string {
	if p, ok := PrincipalFromContext(r.Context()); ok {
		return p.UserID
	}
	return ""
}

// List returns a page of the caller's products.
// GET /api/products?q=&category=&limit=&offset=.
func (h *ProductHandlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := model.ProductListOptions{
		OwnerID:  ownerID(r),
		Q:        q.Get("q"),
		Category: q.Get("category"),
		Limit:    parseIntDefault(q.Get("limit"), 50),
		Offset:   parseIntDefault(q.Get("offset"), 0),
	}
	items, err := h.Svc.List(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	out := make([]productView, 0, len(items))
	for _, p := range items {
		out = append(out, newProductView(p))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

// Get returns one product.
// GET /api/products/{id}.
func (h *ProductHandlers) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Get(r.Context(), r.PathValue("id"), ownerID(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newProductView(p))
}

// Create adds a product from JSON or a form post.
// POST /api/products.
func (h *ProductHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if isJSONRequest(r) {
		if !DecodeJSON(w, r, &req) {
			return
		}
	} else if err := DecodeForm(r, &req); err != nil {
		WriteServiceError(w, err)
		return
	}
	p, err := h.Svc.Create(r.Context(), ownerID(r), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, newProductView(p))
}

// Update applies a partial update.
// PUT /api/products/{id}.
func (h *ProductHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateProductRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	p, err := h.Svc.Update(r.Context(), r.PathValue("id"), ownerID(r), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newProductView(p))
}

// Delete removes a product and its image.
// DELETE /api/products/{id}.
func (h *ProductHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("id"), ownerID(r)); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores the multipart "image" part as the product image.
// POST /api/products/{id}/image.
func (h *ProductHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || r.ContentLength > limit {
			WriteServiceError(w, apperrors.ValidationField("image", "image is too large"))
			return
		}
		WriteServiceError(w, apperrors.ValidationField("image", "must be a multipart upload"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("image")
	if err != nil {
		WriteServiceError(w, apperrors.ValidationField("image", "is required"))
		return
	}
	defer file.Close()

	p, err := h.Svc.SaveImage(r.Context(), r.PathValue("id"), ownerID(r), file)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newProductView(p))
}

// parseIntDefault parses a string to int, returning def on error or empty string.
func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
