package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"foodgram/internal/handlers/respond"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, principal models.Principal) error
}

type Handler struct {
	log     *slog.Logger
	service AuthService
}

func New(log *slog.Logger, service AuthService) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AuthToken string `json:"auth_token"`
}

// POST /api/auth/token/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Login"
	log := h.log.With("op", op)

	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, log, err)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, tokenResponse{AuthToken: token})
}

// POST /api/auth/token/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Logout"
	log := h.log.With("op", op)

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respond.Error(w, log, fmt.Errorf("%s: %w", op, serviceerrors.ErrUnauthorized))
		return
	}

	if err := h.service.Logout(r.Context(), principal); err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.NoContent(w)
}
