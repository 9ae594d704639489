package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"foodgram/internal/handlers/respond"
	serviceerrors "foodgram/internal/service"

	"github.com/go-chi/chi/v5"
)

type ShortCodeResolver interface {
	ResolveShortCode(ctx context.Context, code string) (int64, error)
}

// ShortLinks serves the public /s/{code} redirects.
type ShortLinks struct {
	log      *slog.Logger
	resolver ShortCodeResolver
	baseURL  string
}

func NewShortLinks(log *slog.Logger, resolver ShortCodeResolver, baseURL string) *ShortLinks {
	return &ShortLinks{
		log:      log,
		resolver: resolver,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// GET /s/{code}
func (s *ShortLinks) Redirect(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.recipes.Redirect"
	log := s.log.With("op", op)

	code := chi.URLParam(r, "code")
	if code == "" {
		http.Redirect(w, r, s.baseURL+"/not_found", http.StatusMovedPermanently)
		return
	}

	recipeId, err := s.resolver.ResolveShortCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, serviceerrors.ErrNotFound) {
			log.Info("Unknown short code", slog.String("short_code", code))
			http.Redirect(w, r, s.baseURL+"/not_found", http.StatusMovedPermanently)
			return
		}
		respond.Error(w, log, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("%s/recipes/%d/", s.baseURL, recipeId), http.StatusMovedPermanently)
}
