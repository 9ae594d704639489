package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	authhandler "foodgram/internal/handlers/auth"
	cataloghandler "foodgram/internal/handlers/catalog"
	recipeshandler "foodgram/internal/handlers/recipes"
	usershandler "foodgram/internal/handlers/users"
	"foodgram/internal/routes"
	authservice "foodgram/internal/service/auth"
	catalogservice "foodgram/internal/service/catalog"
	recipeservice "foodgram/internal/service/recipe"
	userservice "foodgram/internal/service/user"
	"foodgram/pkg/config"
	"foodgram/pkg/lib/metrics"
	"foodgram/pkg/lib/randcode"
)

type Storage interface {
	recipeservice.RecipeStorage
	userservice.UserStorage
	authservice.UserStorage
	catalogservice.CatalogStorage
	Ping(ctx context.Context) error
}

type TokenStore interface {
	authservice.TokenStore
	Ping(ctx context.Context) error
}

type App struct {
	log    *slog.Logger
	server *http.Server
}

func New(log *slog.Logger, cfg *config.Config, storage Storage, tokens TokenStore, m *metrics.Metrics) (*App, error) {
	const op = "app.New"

	location, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	userService := userservice.New(log, storage)
	authService := authservice.New(log, storage, tokens, cfg.JWT)
	catalogService := catalogservice.New(log, storage)
	recipeService, err := recipeservice.New(log, storage, recipeservice.Options{
		BaseURL:   cfg.HTTP.BaseURL,
		Location:  location,
		CacheSize: cfg.ShortCode.CacheSize,
		Codes: &randcode.Generator{
			Alphabet:    randcode.Alphanumeric,
			Length:      cfg.ShortCode.Length,
			MaxAttempts: cfg.ShortCode.MaxAttempts,
		},
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rt := routes.New(log, cfg, routes.Handlers{
		Users:      usershandler.New(log, userService),
		Auth:       authhandler.New(log, authService),
		Catalog:    cataloghandler.New(log, catalogService),
		Recipes:    recipeshandler.New(log, recipeService),
		ShortLinks: recipeshandler.NewShortLinks(log, recipeService, cfg.HTTP.BaseURL),
	}, authService, m, map[string]routes.Pinger{
		"postgres": storage,
		"redis":    tokens,
	})

	return &App{
		log: log,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      rt.Register(),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
	}, nil
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

// Run blocks until the server stops. A graceful Shutdown is not an error.
func (a *App) Run() error {
	const op = "app.Run"

	a.log.Info("Starting HTTP server", slog.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	const op = "app.Shutdown"

	a.log.Info("Stopping HTTP server")
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
