package handler

import (
	"encoding/json"
	"net/http"

	"github.com/xela07ax/shopcore/internal/service"
)

type CategoryHandler struct {
	catalog *service.CatalogService
}

func NewCategoryHandler(catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), categoryID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		forbidden(w)
		return
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Description == "" {
		writeError(w, http.StatusBadRequest, "Description is a required property")
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req.Description)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		forbidden(w)
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), categoryID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category and associated links deleted successfully"})
}
