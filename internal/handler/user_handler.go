package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/shopcore/internal/domain"
	"github.com/xela07ax/shopcore/internal/infra/auth"
	"github.com/xela07ax/shopcore/internal/service"
)

type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, authSvc *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: authSvc}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "All required fields must be provided")
		return
	}
	if req.Role != domain.RoleAdmin && req.Role != domain.RoleCustomer {
		writeError(w, http.StatusBadRequest, "role must be admin or customer")
		return
	}

	user, err := h.users.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	// iss и sub обязательны: они уходят в claims выпускаемого токена
	if req.Issuer == "" || req.Subject == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest,
			"Request must include email and password along with payload requirements: sub and iss")
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())
	if !claims.IsAdmin() {
		forbidden(w)
		return
	}

	users, err := h.users.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	claims, _ := auth.ClaimsFromContext(r.Context())
	if !claims.IsAdmin() && claims.UserID != userID {
		forbidden(w)
		return
	}

	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	claims, _ := auth.ClaimsFromContext(r.Context())
	if !claims.IsAdmin() && claims.UserID != userID {
		forbidden(w)
		return
	}

	var upd domain.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}
	if upd.Empty() {
		writeError(w, http.StatusBadRequest, "No valid updates provided")
		return
	}

	if err := h.users.Update(r.Context(), userID, upd); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	claims, _ := auth.ClaimsFromContext(r.Context())
	if !claims.IsAdmin() && claims.UserID != userID {
		forbidden(w)
		return
	}

	if err := h.users.Delete(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
