package users

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"foodgram/internal/handlers/respond"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	serviceerrors "foodgram/internal/service"
	"foodgram/pkg/lib/pagination"
	"foodgram/pkg/lib/urlparser"
)

type UserService interface {
	Register(ctx context.Context, user models.User, password string) (models.User, error)
	Get(ctx context.Context, viewerId, userId int64) (models.User, error)
	Me(ctx context.Context, userId int64) (models.User, error)
	List(ctx context.Context, viewerId int64, limit, offset int) ([]models.User, int, error)
	SetPassword(ctx context.Context, userId int64, current, next string) error
	SetAvatar(ctx context.Context, userId int64, dataURI string) (string, error)
	DeleteAvatar(ctx context.Context, userId int64) error
	Subscribe(ctx context.Context, subscriberId, authorId int64, recipesLimit int) (models.Author, error)
	Unsubscribe(ctx context.Context, subscriberId, authorId int64) error
	Subscriptions(ctx context.Context, subscriberId int64, limit, offset, recipesLimit int) ([]models.Author, int, error)
}

type Handler struct {
	log     *slog.Logger
	service UserService
}

func New(log *slog.Logger, service UserService) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=128"`
}

type registeredUser struct {
	Id        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=128"`
}

type avatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
}

// POST /api/users
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Register"
	log := h.log.With("op", op)

	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, log, err)
		return
	}

	user, err := h.service.Register(r.Context(), models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, req.Password)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusCreated, registeredUser{
		Id:        user.Id,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

// GET /api/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.List"
	log := h.log.With("op", op)

	params, err := pagination.FromQuery(r.URL.Query())
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	users, total, err := h.service.List(r.Context(), middleware.ViewerID(r.Context()), params.Limit, params.Offset())
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, pagination.NewPage(users, total, params, r.URL))
}

// GET /api/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Get"
	log := h.log.With("op", op)

	id, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	user, err := h.service.Get(r.Context(), middleware.ViewerID(r.Context()), id)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, user)
}

// GET /api/users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Me"
	log := h.log.With("op", op)

	userId, ok := h.caller(w, r, log, op)
	if !ok {
		return
	}

	user, err := h.service.Me(r.Context(), userId)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, user)
}

// POST /api/users/set_password
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.SetPassword"
	log := h.log.With("op", op)

	userId, ok := h.caller(w, r, log, op)
	if !ok {
		return
	}

	var req setPasswordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, log, err)
		return
	}

	if err := h.service.SetPassword(r.Context(), userId, req.CurrentPassword, req.NewPassword); err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.NoContent(w)
}

// PUT /api/users/me/avatar
func (h *Handler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.SetAvatar"
	log := h.log.With("op", op)

	userId, ok := h.caller(w, r, log, op)
	if !ok {
		return
	}

	var req avatarRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, log, err)
		return
	}

	avatar, err := h.service.SetAvatar(r.Context(), userId, req.Avatar)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, avatarResponse{Avatar: avatar})
}

// DELETE /api/users/me/avatar
func (h *Handler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.DeleteAvatar"
	log := h.log.With("op", op)

	userId, ok := h.caller(w, r, log, op)
	if !ok {
		return
	}

	if err := h.service.DeleteAvatar(r.Context(), userId); err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.NoContent(w)
}

// POST /api/users/{id}/subscribe
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Subscribe"
	log := h.log.With("op", op)

	userId, ok := h.caller(w, r, log, op)
	if !ok {
		return
	}
	authorId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}
	recipesLimit, err := urlparser.QueryInt(r.URL.Query(), "recipes_limit", 0)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	author, err := h.service.Subscribe(r.Context(), userId, authorId, recipesLimit)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusCreated, author)
}

// DELETE /api/users/{id}/subscribe
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Unsubscribe"
	log := h.log.With("op", op)

	userId, ok := h.caller(w, r, log, op)
	if !ok {
		return
	}
	authorId, err := urlparser.PathID(r, "id")
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	if err := h.service.Unsubscribe(r.Context(), userId, authorId); err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.NoContent(w)
}

// GET /api/users/subscriptions
func (h *Handler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Subscriptions"
	log := h.log.With("op", op)

	userId, ok := h.caller(w, r, log, op)
	if !ok {
		return
	}
	query := r.URL.Query()
	params, err := pagination.FromQuery(query)
	if err != nil {
		respond.Error(w, log, err)
		return
	}
	recipesLimit, err := urlparser.QueryInt(query, "recipes_limit", 0)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	authors, total, err := h.service.Subscriptions(r.Context(), userId, params.Limit, params.Offset(), recipesLimit)
	if err != nil {
		respond.Error(w, log, err)
		return
	}

	respond.JSON(w, log, http.StatusOK, pagination.NewPage(authors, total, params, r.URL))
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string) (int64, bool) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		respond.Error(w, log, fmt.Errorf("%s: %w", op, serviceerrors.ErrUnauthorized))
		return 0, false
	}
	return principal.UserId, true
}
