package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	authhandler "foodgram/internal/handlers/auth"
	cataloghandler "foodgram/internal/handlers/catalog"
	recipeshandler "foodgram/internal/handlers/recipes"
	"foodgram/internal/handlers/respond"
	usershandler "foodgram/internal/handlers/users"
	"foodgram/internal/middleware"
	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger/sl"
	"foodgram/pkg/lib/metrics"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Pinger is a dependency checked by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Routes struct {
	log           *slog.Logger
	cfg           *config.Config
	users         *usershandler.Handler
	auth          *authhandler.Handler
	catalog       *cataloghandler.Handler
	recipes       *recipeshandler.Handler
	shortLinks    *recipeshandler.ShortLinks
	authenticator middleware.Authenticator
	metrics       *metrics.Metrics
	pingers       map[string]Pinger
}

type Handlers struct {
	Users      *usershandler.Handler
	Auth       *authhandler.Handler
	Catalog    *cataloghandler.Handler
	Recipes    *recipeshandler.Handler
	ShortLinks *recipeshandler.ShortLinks
}

func New(
	log *slog.Logger,
	cfg *config.Config,
	handlers Handlers,
	authenticator middleware.Authenticator,
	m *metrics.Metrics,
	pingers map[string]Pinger,
) *Routes {
	return &Routes{
		log:           log,
		cfg:           cfg,
		users:         handlers.Users,
		auth:          handlers.Auth,
		catalog:       handlers.Catalog,
		recipes:       handlers.Recipes,
		shortLinks:    handlers.ShortLinks,
		authenticator: authenticator,
		metrics:       m,
		pingers:       pingers,
	}
}

// Register builds the router.
func (rt *Routes) Register() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health)
	r.Handle("/metrics", rt.metrics.Handler())
	r.Get("/s/{code}", rt.shortLinks.Redirect)

	requireAuth := middleware.RequireAuth(rt.log)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.log, rt.authenticator))

		r.Route("/auth/token", func(r chi.Router) {
			r.With(httprate.LimitByIP(rt.cfg.RateLimit.LoginRequests, rt.cfg.RateLimit.LoginWindow)).
				Post("/login", rt.auth.Login)
			r.With(requireAuth).Post("/logout", rt.auth.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", rt.users.Register)
			r.Get("/", rt.users.List)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", rt.users.Me)
				r.Put("/me/avatar", rt.users.SetAvatar)
				r.Delete("/me/avatar", rt.users.DeleteAvatar)
				r.Get("/subscriptions", rt.users.Subscriptions)
				r.Post("/set_password", rt.users.SetPassword)
				r.Post("/{id}/subscribe", rt.users.Subscribe)
				r.Delete("/{id}/subscribe", rt.users.Unsubscribe)
			})
			r.Get("/{id}", rt.users.Get)
		})

		r.Get("/tags", rt.catalog.ListTags)
		r.Get("/tags/{id}", rt.catalog.GetTag)
		r.Get("/ingredients", rt.catalog.ListIngredients)
		r.Get("/ingredients/{id}", rt.catalog.GetIngredient)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", rt.recipes.List)
			r.Get("/{id}", rt.recipes.Get)
			r.Get("/{id}/get-link", rt.recipes.GetLink)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", rt.recipes.Create)
				r.Get("/download_shopping_cart", rt.recipes.DownloadShoppingCart)
				r.Patch("/{id}", rt.recipes.Update)
				r.Delete("/{id}", rt.recipes.Delete)
				r.Post("/{id}/favorite", rt.recipes.AddFavorite)
				r.Delete("/{id}/favorite", rt.recipes.RemoveFavorite)
				r.Post("/{id}/shopping_cart", rt.recipes.AddToCart)
				r.Delete("/{id}/shopping_cart", rt.recipes.RemoveFromCart)
			})
		})
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (rt *Routes) health(w http.ResponseWriter, r *http.Request) {
	const op = "routes.health"
	log := rt.log.With("op", op)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(rt.pingers))}
	status := http.StatusOK
	for name, p := range rt.pingers {
		if err := p.Ping(ctx); err != nil {
			log.Warn("Dependency is down", slog.String("dependency", name), sl.Err(err))
			resp.Checks[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "up"
	}

	respond.JSON(w, log, status, resp)
}
