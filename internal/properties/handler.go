package properties

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/irpartners/brokerage-api/pkg/logging"
)

// maxUploadBytes caps property photo uploads at 10MB.
const maxUploadBytes = 10 << 20

// Uploader stores a property photo and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// Handler handles HTTP requests for property listings.
type Handler struct {
	repo     Repository
	uploader Uploader
	logger   *logging.Logger
}

// NewHandler creates a new properties handler. uploader may be nil when no
// object storage is configured; uploads then return 503.
func NewHandler(repo Repository, uploader Uploader, logger *logging.Logger) *Handler {
	return &Handler{
		repo:     repo,
		uploader: uploader,
		logger:   logger,
	}
}

// List handles GET /properties requests from the public site.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

// AdminList handles GET /admin/properties, which also sees archived listings.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, includeArchived bool) {
	q := r.URL.Query()
	filter := ListFilter{
		City:            q.Get("city"),
		Status:          Status(q.Get("status")),
		LeaseOrSale:     LeaseOrSale(q.Get("leaseOrSale")),
		Search:          q.Get("search"),
		FeaturedOnly:    q.Get("featured") == "true",
		IncludeArchived: includeArchived,
	}
	filter.MinSquareFeet, filter.MaxSquareFeet = ParseSquareFeetRange(q.Get("squareFeet"))

	props, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list properties", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load properties")
		return
	}
	if props == nil {
		props = []*Property{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"properties": props, "count": len(props)})
}

// GetBySlug handles GET /properties/{slug}.
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	prop, err := h.repo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		h.logger.Error("failed to load property", "error", err, "slug", slug)
		writeError(w, http.StatusInternalServerError, "Failed to load property")
		return
	}
	if prop.Archived {
		writeError(w, http.StatusNotFound, "Property not found")
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

// AdminGet handles GET /admin/properties/{id}.
func (h *Handler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	prop, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		h.logger.Error("failed to load property", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load property")
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

// Create handles POST /admin/properties.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in PropertyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := in.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	prop, err := h.repo.Create(r.Context(), &in)
	if err != nil {
		h.logger.Error("failed to create property", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create property")
		return
	}

	h.logger.Info("property created", "id", prop.ID, "slug", prop.Slug)
	writeJSON(w, http.StatusCreated, prop)
}

// Update handles PUT /admin/properties/{id} with a full payload.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in PropertyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := in.Validate(); errs != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	prop, err := h.repo.Update(r.Context(), id, &in)
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		h.logger.Error("failed to update property", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update property")
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

type flagPatchRequest struct {
	Status   *Status `json:"status"`
	Featured *bool   `json:"featured"`
	Archived *bool   `json:"archived"`
}

// PatchFlags handles PATCH /admin/properties/{id}, toggling status, featured
// and archived without requiring the full payload.
func (h *Handler) PatchFlags(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req flagPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	prop, err := h.repo.SetFlags(r.Context(), id, FlagPatch{
		Status:   req.Status,
		Featured: req.Featured,
		Archived: req.Archived,
	})
	if err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		h.logger.Error("failed to patch property", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to update property")
		return
	}
	writeJSON(w, http.StatusOK, prop)
}

// Delete handles DELETE /admin/properties/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
		h.logger.Error("failed to delete property", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete property")
		return
	}
	h.logger.Info("property deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Upload handles POST /admin/upload: a multipart "file" part holding an
// image, stored under a fresh key. With a "propertyId" part the image is
// appended to that listing's gallery; without one a temp record comes back
// for linking on property create.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "File storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	propertyID := r.FormValue("propertyId")
	if propertyID != "" {
		ok, err := h.repo.Exists(r.Context(), propertyID)
		if err != nil {
			h.logger.Error("property lookup failed", "error", err, "property_id", propertyID)
			writeError(w, http.StatusInternalServerError, "Upload failed")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "Property not found")
			return
		}
	}

	if header.Size > maxUploadBytes {
		writeError(w, http.StatusBadRequest, "File too large (max 10MB)")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	key := "properties/" + uuid.NewString() + ext

	url, err := h.uploader.Upload(r.Context(), key, contentType, file, header.Size)
	if err != nil {
		h.logger.Error("failed to upload image", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	if propertyID != "" {
		img, err := h.repo.AddImage(r.Context(), propertyID, url, "")
		if err != nil {
			h.logger.Error("failed to save image record", "error", err, "property_id", propertyID)
			writeError(w, http.StatusInternalServerError, "Upload failed")
			return
		}
		h.logger.Info("image uploaded", "key", key, "property_id", propertyID)
		writeJSON(w, http.StatusCreated, img)
		return
	}

	h.logger.Info("image uploaded", "key", key)
	writeJSON(w, http.StatusOK, map[string]any{"url": url, "id": "temp-" + uuid.NewString()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
