package api

import (
	"context"
	"net/http"

	"signalcraft-be/internal/auth"
	"signalcraft-be/internal/contact"
	"signalcraft-be/internal/design"
	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/middleware"
	"signalcraft-be/internal/order"
	"signalcraft-be/internal/product"
	"signalcraft-be/internal/upload"
	"signalcraft-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// IdentityProvider is the hosted-login surface used by the auth routes.
type IdentityProvider interface {
	Exchange(ctx context.Context, code, codeVerifier, redirectURI string) (*auth.TokenSet, error)
	LogoutURL() (string, error)
	IdentityPoolConfig() (auth.IdentityPoolConfig, error)
}

type Handler struct {
	Orders   order.Service
	Designs  design.Service
	Products product.Service
	Contact  contact.Service
	Uploads  upload.Service
	Identity IdentityProvider

	Verifier    auth.TokenVerifier
	Policy      auth.Policy
	Limiter     *middleware.RateLimiter
	Idempotency middleware.IdempotencyStore

	WebOrigin     string
	SecureCookies bool
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.CORS(h.WebOrigin))
	r.Use(auth.Authenticate(h.Verifier))
	if h.Limiter != nil {
		r.Use(h.Limiter.Middleware)
	}
	r.Use(middleware.Idempotency(h.Idempotency))

	authenticated := auth.Require(h.Policy.Authenticated)
	admin := auth.Require(h.Policy.Admin)

	r.Get("/health", h.health)

	r.Get("/products", h.listProducts)
	r.Get("/products/{productID}", h.getProduct)
	r.Post("/contact", h.createContactMessage)
	r.With(admin).Get("/contact", h.listContactMessages)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/exchange", h.exchange)
		r.Post("/logout", h.logout)
		r.Get("/identity-pool-config", h.identityPoolConfig)
		r.With(authenticated).Get("/me", h.me)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticated)

		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/{orderID}", h.getOrder)
		r.With(auth.Require(h.Policy.CanUpdatePayment)).Patch("/orders/{orderID}/payment", h.updatePaymentStatus)
		r.With(admin).Patch("/orders/{orderID}/status", h.updateOrderStatus)
		r.Get("/orders/{orderID}/designs", h.listDesigns)
		r.With(admin).Post("/orders/{orderID}/designs", h.createDesign)

		r.Get("/designs/{designID}/reviews", h.listReviews)
		r.Post("/designs/{designID}/reviews", h.createReview)

		r.Post("/uploads/presign", h.presignUpload)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin)

		r.Get("/orders", h.listOrders)
		r.Patch("/orders/{orderID}/status", h.updateOrderStatus)
		r.Patch("/orders/{orderID}/shipping", h.updateShipping)
		r.Post("/orders/{orderID}/events", h.addOrderEvent)
		r.Get("/orders/{orderID}/designs", h.listDesigns)
		r.Post("/orders/{orderID}/designs", h.createDesign)

		r.Get("/products", h.listAllProducts)
		r.Post("/products", h.createProduct)
		r.Patch("/products/{productID}", h.updateProduct)
		r.Patch("/products/{productID}/deactivate", h.deactivateProduct)

		r.Get("/messages", h.listContactMessages)
		r.Patch("/messages/{messageID}", h.updateContactMessage)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID returns the named UUID path parameter. A malformed id cannot name an
// existing row, so it is reported as notFound.
func pathID(r *http.Request, name string, notFound error) (string, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", notFound
	}
	return id.String(), nil
}
