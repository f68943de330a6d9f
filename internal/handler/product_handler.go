package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/shopcore/internal/domain"
	"github.com/xela07ax/shopcore/internal/infra/auth"
	"github.com/xela07ax/shopcore/internal/service"
)

type ProductHandler struct {
	catalog *service.CatalogService
}

func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type createProductRequest struct {
	// Исторически поле называется category, хотя это список
	Category []string `json:"category"`
	Price    float64  `json:"price"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Size:     q.Get("size"),
	}
	filter.PriceMin, _ = strconv.ParseFloat(q.Get("priceMin"), 64)
	filter.PriceMax, _ = strconv.ParseFloat(q.Get("priceMax"), 64)

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		forbidden(w)
		return
	}

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if len(req.Category) == 0 || req.Price <= 0 {
		writeError(w, http.StatusBadRequest, "Category and price are required properties")
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), req.Price, req.Category)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		forbidden(w)
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var upd domain.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	if err := h.catalog.UpdateProduct(r.Context(), productID, upd); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product updated successfully"})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		forbidden(w)
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), productID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product and associated entries deleted successfully"})
}

// CreateOptions принимает карту цвет -> размер -> количество (приход на склад).
func (h *ProductHandler) CreateOptions(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		forbidden(w)
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var opts domain.OptionSet
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if len(opts) == 0 || !positiveAmounts(opts) {
		writeError(w, http.StatusBadRequest, "options must carry positive amounts")
		return
	}

	product, err := h.catalog.AddOptions(r.Context(), productID, opts)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteOption удаляет размер (?size=) либо весь цвет целиком.
func (h *ProductHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	if !isAdmin(r) {
		forbidden(w)
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	color := chi.URLParam(r, "color")
	size := r.URL.Query().Get("size")

	if err := h.catalog.DeleteOption(r.Context(), productID, color, size); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isAdmin(r *http.Request) bool {
	claims, _ := auth.ClaimsFromContext(r.Context())
	return claims.IsAdmin()
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be numeric")
		return 0, false
	}
	return id, true
}

func positiveAmounts(opts domain.OptionSet) bool {
	for _, sizes := range opts {
		if len(sizes) == 0 {
			return false
		}
		for _, n := range sizes {
			if n <= 0 {
				return false
			}
		}
	}
	return true
}
