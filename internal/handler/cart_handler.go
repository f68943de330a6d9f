package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/shopcore/internal/domain"
	"github.com/xela07ax/shopcore/internal/infra/auth"
	"github.com/xela07ax/shopcore/internal/service"
)

type CartHandler struct {
	carts *service.CartService
	users *service.UserService
}

func NewCartHandler(carts *service.CartService, users *service.UserService) *CartHandler {
	return &CartHandler{carts: carts, users: users}
}

type cartUpdateRequest struct {
	ProductID int64            `json:"productId"`
	Options   domain.OptionSet `json:"options"`
}

// Create создает корзину для пользователя; сегмент пути здесь — ID пользователя.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	claims, _ := auth.ClaimsFromContext(r.Context())
	if !claims.IsAdmin() && claims.UserID != userID {
		forbidden(w)
		return
	}

	if _, err := h.users.Get(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}

	cart, err := h.carts.Create(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.ownCart(w, r)
	if !ok {
		return
	}

	view, err := h.carts.View(r.Context(), cartID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.ownCart(w, r)
	if !ok {
		return
	}

	var req cartUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.ProductID <= 0 || len(req.Options) == 0 || !positiveAmounts(req.Options) {
		writeError(w, http.StatusBadRequest, "productId and options with positive amounts are required")
		return
	}

	if err := h.carts.AddItems(r.Context(), cartID, req.ProductID, req.Options); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.carts.View(r.Context(), cartID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Buy проводит расчёт корзины: списание остатков и удаление корзины
// выполняются в одной транзакции.
func (h *CartHandler) Buy(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.ownCart(w, r)
	if !ok {
		return
	}

	if err := h.carts.Settle(r.Context(), cartID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.ownCart(w, r)
	if !ok {
		return
	}

	if err := h.carts.Delete(r.Context(), cartID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownCart проверяет, что корзина существует и принадлежит вызывающему.
// Для чужой корзины возвращается 404, а не 403: факт её существования
// не раскрывается.
func (h *CartHandler) ownCart(w http.ResponseWriter, r *http.Request) (string, bool) {
	cartID := chi.URLParam(r, "id")
	claims, _ := auth.ClaimsFromContext(r.Context())

	cart, err := h.carts.Find(r.Context(), cartID)
	if err != nil {
		respondError(w, err)
		return "", false
	}
	if !claims.IsAdmin() && cart.UserID != claims.UserID {
		respondError(w, domain.ErrCartNotFound)
		return "", false
	}
	return cartID, true
}
