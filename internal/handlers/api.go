// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API: template authoring and
// versioning, branding asset management, document generation, and the
// inventory/order endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"docnexus/internal/apperr"
	"docnexus/internal/assets"
	"docnexus/internal/cache"
	"docnexus/internal/docgen"
	"docnexus/internal/storage"
	"docnexus/internal/store"
)

// API bundles the dependencies shared by all HTTP handlers.
type API struct {
	templates *store.TemplateStore
	assets    *store.AssetStore
	documents *store.DocumentStore
	products  *store.ProductStore
	orders    *store.OrderStore

	resolver  *assets.Resolver
	pipeline  *docgen.Pipeline
	blobs     *storage.Client
	inventory *cache.InventoryCache

	validate *validator.Validate
}

// NewAPI creates the API handler set.
func NewAPI(
	templates *store.TemplateStore,
	assetStore *store.AssetStore,
	documents *store.DocumentStore,
	products *store.ProductStore,
	orders *store.OrderStore,
	resolver *assets.Resolver,
	pipeline *docgen.Pipeline,
	blobs *storage.Client,
	inventory *cache.InventoryCache,
) *API {
	return &API{
		templates: templates,
		assets:    assetStore,
		documents: documents,
		products:  products,
		orders:    orders,
		resolver:  resolver,
		pipeline:  pipeline,
		blobs:     blobs,
		inventory: inventory,
		validate:  validator.New(),
	}
}

// errNotConfigured reports an operation that needs a collaborator the
// deployment did not configure.
var errNotConfigured = errors.New("not configured")

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP status codes. Validation
// errors are 422, missing resources 404, version/default races 409, and
// failures of the PDF engine or blob store 502. Anything unclassified is
// logged and hidden behind a 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, apperr.ErrExternal):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		slog.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// decodeAndValidate parses a JSON body into dst and runs struct validation.
func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body: %v", err)
	}
	if err := a.validate.Struct(dst); err != nil {
		return apperr.Validation("%v", err)
	}
	return nil
}

// urlUUID parses a UUID path parameter; a malformed value is a validation
// failure, not a 404.
func urlUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s: must be a UUID", param)
	}
	return id, nil
}

// requestUser reads the authenticated user forwarded by the gateway. The
// API itself does not authenticate; an absent header maps to the zero UUID.
func requestUser(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return uuid.Nil
	}
	return id
}
