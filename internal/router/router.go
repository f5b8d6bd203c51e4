// Package router sets up all HTTP routes and middleware chains for the
// DocNexus API. Render endpoints carry an extra rate limit since PDF
// generation is expensive.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docnexus/internal/handlers"
	"docnexus/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, renderLimiter *middleware.RenderLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Templates and versions
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", api.TemplateList)
			r.Post("/", api.TemplateCreate)
			r.Get("/by-name/{name}", api.TemplateGetByName)

			r.Route("/{templateID}", func(r chi.Router) {
				r.Get("/", api.TemplateGet)
				r.Delete("/", api.TemplateDeactivate)
				r.Put("/branding", api.TemplateUpdateBranding)
				r.Patch("/variables", api.VariablesUpdate)
				r.Post("/duplicate", api.TemplateDuplicate)

				r.Route("/versions", func(r chi.Router) {
					r.Get("/", api.VersionList)
					r.Post("/", api.VersionCreate)
					r.Get("/{sequence}", api.VersionGet)
				})

				r.Route("/assets", func(r chi.Router) {
					r.Get("/", api.AssetList)
					r.Post("/", api.AssetUpload)
					r.Get("/{assetID}", api.AssetGet)
					r.Delete("/{assetID}", api.AssetDelete)
					r.Put("/{assetID}/default", api.AssetSetDefault)
				})

				// Rendering endpoints are rate limited.
				r.Group(func(r chi.Router) {
					r.Use(renderLimiter.Middleware)
					r.Post("/documents", api.DocumentGenerate)
					r.Post("/preview", api.DocumentPreview)
				})
				r.Get("/documents", api.DocumentList)
			})
		})

		r.Get("/documents/{documentID}/download", api.DocumentDownload)

		// Inventory
		r.Route("/products", func(r chi.Router) {
			r.Get("/", api.ProductList)
			r.Post("/", api.ProductCreate)
			r.Get("/{sku}", api.ProductGet)
			r.Get("/{sku}/stock", api.ProductStock)
			r.Get("/{sku}/price", api.ProductPrice)
			r.Put("/{sku}/inventory", api.InventoryUpsert)
		})

		// Orders
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", api.OrderList)
			r.Post("/", api.OrderCreate)
			r.Get("/{orderID}", api.OrderGet)
			r.Put("/{orderID}/status", api.OrderUpdateStatus)

			r.Group(func(r chi.Router) {
				r.Use(renderLimiter.Middleware)
				r.Post("/{orderID}/invoice", api.OrderInvoice)
			})
		})
	})

	return r
}

// healthHandler responds to health checks from load balancers and
// container orchestrators.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
