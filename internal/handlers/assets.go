// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"docnexus/internal/apperr"
	"docnexus/internal/assets"
	"docnexus/internal/models"
)

// maxUploadOverhead leaves room for multipart form fields beyond the file.
const maxUploadOverhead = 4 << 10

// AssetUpload handles POST /api/templates/{templateID}/assets as a
// multipart form: file, asset_type, name, optional description and default
// flag. Validation runs before any blob write.
func (a *API) AssetUpload(w http.ResponseWriter, r *http.Request) {
	if a.resolver == nil {
		writeError(w, apperr.External("object storage", errNotConfigured))
		return
	}
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	tpl, err := a.templates.FindByID(templateID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tpl == nil {
		writeError(w, apperr.NotFound("template %s", templateID))
		return
	}

	maxBytes := a.resolver.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+maxUploadOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, apperr.Validation("file exceeds maximum size of %d bytes", maxBytes))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.Validation("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperr.Validation("unreadable upload: %v", err))
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	var description *string
	if d := r.FormValue("description"); d != "" {
		description = &d
	}

	asset, err := a.resolver.Upload(r.Context(), templateID, assets.UploadInput{
		AssetType:   models.AssetType(r.FormValue("asset_type")),
		Name:        name,
		Description: description,
		Filename:    header.Filename,
		Data:        data,
		IsDefault:   r.FormValue("is_default") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// AssetList handles GET /api/templates/{templateID}/assets with an optional
// type filter.
func (a *API) AssetList(w http.ResponseWriter, r *http.Request) {
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := a.assets.ListByTemplate(templateID, models.AssetType(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": list})
}

// AssetGet handles GET /api/templates/{templateID}/assets/{assetID}. When
// storage is configured the reply carries a short-lived download URL.
func (a *API) AssetGet(w http.ResponseWriter, r *http.Request) {
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	assetID, err := urlUUID(r, "assetID")
	if err != nil {
		writeError(w, err)
		return
	}
	asset, err := a.assets.FindByID(templateID, assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	if asset == nil {
		writeError(w, apperr.NotFound("asset %s", assetID))
		return
	}

	reply := map[string]any{"asset": asset}
	if a.blobs != nil {
		url, err := a.blobs.PresignedURL(r.Context(), a.blobs.AssetsBucket(), asset.S3Key, 15*time.Minute)
		if err != nil {
			slog.Warn("asset download presign failed", "key", asset.S3Key, "error", err)
		} else {
			reply["download_url"] = url
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

// AssetSetDefault handles PUT /api/templates/{templateID}/assets/{assetID}/default.
// The previous default of the same type is cleared in the same transaction.
func (a *API) AssetSetDefault(w http.ResponseWriter, r *http.Request) {
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	assetID, err := urlUUID(r, "assetID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.assets.SetDefault(templateID, assetID); err != nil {
		writeError(w, err)
		return
	}
	asset, err := a.assets.FindByID(templateID, assetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// AssetDelete handles DELETE /api/templates/{templateID}/assets/{assetID}.
// Assets are hard-deleted, record and blob both.
func (a *API) AssetDelete(w http.ResponseWriter, r *http.Request) {
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	assetID, err := urlUUID(r, "assetID")
	if err != nil {
		writeError(w, err)
		return
	}
	if a.resolver == nil {
		writeError(w, apperr.External("object storage", errNotConfigured))
		return
	}
	if err := a.resolver.Remove(r.Context(), templateID, assetID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
