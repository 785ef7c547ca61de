package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/l1emant/insidex-web/auth"
	"github.com/l1emant/insidex-web/config"
	"github.com/l1emant/insidex-web/internal/app"
	"github.com/l1emant/insidex-web/observability"
	"github.com/l1emant/insidex-web/repository"
	"github.com/l1emant/insidex-web/services"

	"github.com/go-chi/chi/v5"
)

// signInPath is where unauthenticated clients are pointed
const signInPath = "/sign-in"

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// RequireAuth resolves the session for protected routes and stores the user
// in the request context. A missing session answers 401 with a sign-in
// redirect hint rather than being conflated with a data-fetch failure.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.app.Auth().SessionFromRequest(r)
		if err != nil {
			if errors.Is(err, auth.ErrNotAuthenticated) {
				h.jsonRedirect(w, signInPath)
				return
			}
			observability.Error("failed to resolve session", "error", err)
			h.jsonError(w, "failed to resolve session", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if h.app.Repo() != nil {
		if err := h.app.Repo().Health(r.Context()); err == nil {
			status["services"].(map[string]string)["database"] = "connected"
		} else {
			status["services"].(map[string]string)["database"] = "disconnected"
			status["status"] = "degraded"
		}
	} else {
		status["services"].(map[string]string)["database"] = "not_configured"
	}

	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// signUpRequest is the sign-up payload
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// HandleSignUp registers a new user and sets the session cookie
func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.app.Auth().SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		observability.Error("sign up failed", "error", err)
		h.jsonResponse(w, map[string]interface{}{"success": false, "error": "Sign up failed"})
		return
	}

	h.setSessionCookie(w, token)
	h.jsonResponse(w, map[string]interface{}{"success": true, "data": user})
}

// signInRequest is the sign-in payload
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignIn verifies credentials and sets the session cookie
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.app.Auth().SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.Error("sign in failed", "error", err)
		h.jsonResponseStatus(w, map[string]interface{}{"success": false, "error": "Sign in failed"}, http.StatusUnauthorized)
		return
	}

	h.setSessionCookie(w, token)
	h.jsonResponse(w, map[string]interface{}{"success": true, "data": user})
}

// HandleSignOut invalidates the current session and clears the cookie
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.app.Auth().CookieName()); err == nil {
		if err := h.app.Auth().SignOut(r.Context(), cookie.Value); err != nil {
			observability.Error("sign out failed", "error", err)
			h.jsonResponse(w, map[string]interface{}{"success": false, "error": "Sign out failed"})
			return
		}
	}

	h.clearSessionCookie(w)
	h.jsonResponse(w, map[string]interface{}{"success": true})
}

// HandleSearch returns stocks matching the q parameter, annotated with the
// caller's watchlist membership. Degrades to an empty list on upstream
// failure.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	results := h.app.Stocks().SearchStocks(r.Context(), r.URL.Query().Get("q"), user.Email)
	h.jsonResponse(w, results)
}

// HandleNews returns up to six articles for the symbols parameter
// (comma-separated, optional)
func (h *Handler) HandleNews(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if raw := r.URL.Query().Get("symbols"); raw != "" {
		symbols = strings.Split(raw, ",")
	}

	articles, err := h.app.Stocks().GetNews(r.Context(), symbols)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, articles)
}

// HandleStockDetails returns the resolved detail view for one symbol
func (h *Handler) HandleStockDetails(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	details, err := h.app.Stocks().GetStockDetails(r.Context(), symbol)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, details)
}

// HandleGetWatchlist returns the user's watchlist joined with market data
func (h *Handler) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	stocks, err := h.app.Stocks().GetWatchlistWithData(r.Context(), user.ID)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, stocks)
}

// HandleGetWatchlistItems returns the raw persisted watchlist entries
func (h *Handler) HandleGetWatchlistItems(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	items, err := h.app.Stocks().GetUserWatchlist(r.Context(), user.ID)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, items)
}

// addWatchlistRequest is the add-to-watchlist payload
type addWatchlistRequest struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
}

// HandleAddToWatchlist stores a new watchlist entry for the user
func (h *Handler) HandleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req addWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Symbol) == "" {
		h.jsonError(w, "symbol is required", http.StatusBadRequest)
		return
	}

	err := h.app.AddToWatchlist(r.Context(), user.ID, req.Symbol, req.Company)
	if errors.Is(err, repository.ErrAlreadyInWatchlist) {
		h.jsonResponse(w, map[string]interface{}{"success": false, "error": "Stock already in watchlist"})
		return
	}
	if err != nil {
		observability.WithUser(user.ID).Error("failed to add to watchlist", "error", err)
		h.jsonError(w, "failed to add stock to watchlist", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]interface{}{"success": true, "message": "Stock added to watchlist"})
}

// HandleRemoveFromWatchlist deletes a watchlist entry for the user
func (h *Handler) HandleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	symbol := chi.URLParam(r, "symbol")

	if err := h.app.RemoveFromWatchlist(r.Context(), user.ID, symbol); err != nil {
		observability.WithUser(user.ID).Error("failed to remove from watchlist", "error", err)
		h.jsonError(w, "failed to remove stock from watchlist", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, map[string]interface{}{"success": true, "message": "Stock removed from watchlist"})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.app.Auth().CookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cfg.Auth.SessionTTL.Seconds()),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.app.Auth().CookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonResponseStatus(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (h *Handler) jsonRedirect(w http.ResponseWriter, location string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":    "not authenticated",
		"redirect": location,
	})
}
