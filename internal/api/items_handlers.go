package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/joaosp7/teste-principia-backend/internal/items"
	"github.com/joaosp7/teste-principia-backend/internal/models"
	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

type createItemRequest struct {
	Name        string  `json:"name"`
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

// updateItemRequest deliberately omits name: it is not updatable, and the
// strict decoder rejects it as an unknown field.
type updateItemRequest struct {
	Status      *string `json:"status"`
	Description *string `json:"description"`
}

type seedRequest struct {
	Seeds *int `json:"seeds"`
}

type seedResult struct {
	Seeded int `json:"seeded"`
}

// Items serves the collection endpoints: POST creates an item, GET lists
// the filtered, sorted page described by the query parameters.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createItem(w, r)
	case http.MethodGet:
		h.listItems(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := buildCreateParams(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.Service.Create(r.Context(), params)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, []models.Item{item}, nil)
}

func buildCreateParams(req createItemRequest) (storage.CreateItemParams, error) {
	var violations []items.FieldViolation
	name := strings.TrimSpace(req.Name)
	if name == "" {
		violations = append(violations, items.FieldViolation{Field: "name", Message: "name is required"})
	}

	status := models.StatusTodo
	if req.Status != nil {
		parsed, err := models.ParseStatus(*req.Status)
		if err != nil {
			violations = append(violations, items.FieldViolation{Field: "status", Message: err.Error()})
		} else {
			status = parsed
		}
	}

	if len(violations) > 0 {
		return storage.CreateItemParams{}, &items.InvalidBodyError{Violations: violations}
	}
	return storage.CreateItemParams{Name: name, Status: status, Description: req.Description}, nil
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	query, err := items.ParseListQuery(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	rows, metadata, err := h.Service.List(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, rows, metadata)
}

// ItemByID serves GET, PATCH, and DELETE on a single item addressed by its
// UUID path segment.
func (h *Handler) ItemByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/items/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "id must be a valid UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := h.Service.Get(r.Context(), id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, []models.Item{item}, nil)
	case http.MethodPatch:
		h.updateItem(w, r, id)
	case http.MethodDelete:
		if err := h.Service.Delete(r.Context(), id); err != nil {
			h.writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, PATCH, DELETE")
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	}
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request, id string) {
	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := storage.ItemPatch{Description: req.Description}
	if req.Status != nil {
		parsed, err := models.ParseStatus(*req.Status)
		if err != nil {
			body := &items.InvalidBodyError{Violations: []items.FieldViolation{{Field: "status", Message: err.Error()}}}
			writeError(w, http.StatusBadRequest, body.Error())
			return
		}
		patch.Status = &parsed
	}

	item, err := h.Service.Update(r.Context(), id, patch)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, []models.Item{item}, nil)
}

// SeedItems inserts a bounded number of synthetic records through the
// regular create path.
func (h *Handler) SeedItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
		return
	}

	var req seedRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	count := items.DefaultSeedCount
	if req.Seeds != nil {
		count = *req.Seeds
	}
	if count < items.MinSeedCount || count > items.MaxSeedCount {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("seeds must be between %d and %d", items.MinSeedCount, items.MaxSeedCount))
		return
	}

	seeded, err := h.Service.Seed(r.Context(), count)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, []seedResult{{Seeded: seeded}}, nil)
}

// writeServiceError maps error kinds from the service and store onto HTTP
// statuses. Backend detail is logged, never echoed to the client.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var (
		invalidQuery *items.InvalidQueryError
		invalidBody  *items.InvalidBodyError
		notFound     *items.NotFoundError
	)
	switch {
	case errors.As(err, &invalidQuery), errors.As(err, &invalidBody):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, storage.ErrConflict.Error())
	default:
		h.Logger.Error("store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
