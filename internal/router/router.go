package router

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New. Guest carts are served
// only when GuestCarts is true; Upload may be nil when no image store is
// configured.
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Review    *handler.ReviewHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Wholesale *handler.WholesaleHandler
	Upload    *handler.UploadHandler

	GuestCarts bool
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, tokens middleware.TokenVerifier, limits config.RateLimitConfig, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> RequestID -> RealIP -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	authn := middleware.Authenticate(tokens, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(limits.AuthPerMinute, limits.AuthBurst, logger))
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
			})
			r.With(authn).Get("/me", h.Auth.Me)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/{idOrSlug}", h.Product.Get)
			r.Get("/{id}/reviews", h.Review.List)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/{id}/review", h.Review.Add)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", h.Product.Create)
					r.Put("/{id}", h.Product.Update)
					r.Delete("/{id}", h.Product.Delete)
					r.Put("/{id}/reviews/{reviewId}", h.Review.Update)
					r.Delete("/{id}/reviews/{reviewId}", h.Review.Delete)
				})
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.Category.List)
			r.Get("/{idOrSlug}", h.Category.Get)

			r.Group(func(r chi.Router) {
				r.Use(authn, middleware.RequireAdmin)
				r.Post("/", h.Category.Create)
				r.Put("/{id}", h.Category.Update)
				r.Delete("/{id}", h.Category.Delete)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authn)
			r.Get("/", h.Cart.Get)
			r.Delete("/", h.Cart.Clear)
			r.Post("/add", h.Cart.Add)
			r.Put("/update", h.Cart.Update)
			r.Delete("/remove/{productId}", h.Cart.Remove)
		})

		if h.GuestCarts {
			r.Route("/guest-cart/{guestId}", func(r chi.Router) {
				r.Get("/", h.Cart.GuestGet)
				r.Delete("/", h.Cart.GuestClear)
				r.Post("/add", h.Cart.GuestAdd)
				r.Put("/update", h.Cart.GuestUpdate)
				r.Delete("/remove/{productId}", h.Cart.GuestRemove)
			})
		}

		r.Route("/orders", func(r chi.Router) {
			r.Get("/track/{orderNumber}", h.Order.Track)

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/", h.Order.Create)
				r.Get("/", h.Order.ListMine)
				r.Get("/{id}", h.Order.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Put("/{id}/status", h.Order.UpdateStatus)
					r.Put("/{id}/payment", h.Order.UpdatePayment)
				})
			})
		})

		r.Route("/wholesale", func(r chi.Router) {
			r.Use(authn)
			r.Post("/register", h.Wholesale.Register)
			r.Get("/profile", h.Wholesale.Profile)
			r.Get("/pricing", h.Wholesale.Pricing)
			r.Get("/products", h.Wholesale.Products)
			r.With(middleware.RequireAdmin).Put("/{id}/approve", h.Wholesale.Approve)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authn, middleware.RequireAdmin)
			r.Get("/orders", h.Order.ListAll)
			r.Get("/wholesale", h.Wholesale.List)
		})

		if h.Upload != nil {
			r.Route("/uploads", func(r chi.Router) {
				r.Use(authn, middleware.RequireAdmin)
				r.Post("/", h.Upload.Upload)
				r.Delete("/{id}", h.Upload.Delete)
			})
		}
	})

	return r
}
