// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"docnexus/internal/apperr"
	"docnexus/internal/docgen"
	"docnexus/internal/models"
)

// generateRequest drives one document render.
type generateRequest struct {
	VersionSequence     int            `json:"version_sequence" validate:"gte=0"`
	Bindings            map[string]any `json:"bindings"`
	Draft               bool           `json:"draft"`
	IncludeVerification bool           `json:"include_verification"`
	Strict              bool           `json:"strict"`
}

// generateResponse returns the persisted document record plus the render
// audit metadata.
type generateResponse struct {
	Document        *models.GeneratedDocument `json:"document"`
	VersionSequence int                       `json:"version_sequence"`
	Unresolved      []string                  `json:"unresolved,omitempty"`
	MissingRequired []string                  `json:"missing_required,omitempty"`
	EmbeddedAssets  []docgen.EmbeddedAsset    `json:"embedded_assets,omitempty"`
	VerificationID  string                    `json:"verification_id,omitempty"`
}

// DocumentGenerate handles POST /api/templates/{templateID}/documents. It
// renders the PDF, stores the artifact, and records the document.
func (a *API) DocumentGenerate(w http.ResponseWriter, r *http.Request) {
	if a.blobs == nil {
		writeError(w, apperr.External("object storage", errNotConfigured))
		return
	}
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req generateRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := a.pipeline.Generate(r.Context(), docgen.Request{
		TemplateID:          templateID,
		VersionSequence:     req.VersionSequence,
		Bindings:            req.Bindings,
		Draft:               req.Draft,
		IncludeVerification: req.IncludeVerification,
		Strict:              req.Strict,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	key := fmt.Sprintf("documents/%s/%s.pdf", templateID, uuid.New())
	if err := a.blobs.Upload(r.Context(), a.blobs.DocumentsBucket(), key, "application/pdf", result.PDF); err != nil {
		writeError(w, apperr.External("document upload", err))
		return
	}

	bindings := make(map[string]string, len(req.Bindings))
	for k, v := range req.Bindings {
		bindings[k] = fmt.Sprintf("%v", v)
	}
	doc, err := a.documents.Create(&models.GeneratedDocument{
		TemplateID:      templateID,
		VersionSequence: result.VersionSequence,
		Bindings:        bindings,
		S3Key:           key,
		SizeBytes:       int64(len(result.PDF)),
		Checksum:        result.Checksum,
		CreatedBy:       requestUser(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateResponse{
		Document:        doc,
		VersionSequence: result.VersionSequence,
		Unresolved:      result.Unresolved,
		MissingRequired: result.MissingRequired,
		EmbeddedAssets:  result.EmbeddedAssets,
		VerificationID:  result.VerificationID,
	})
}

// DocumentPreview handles POST /api/templates/{templateID}/preview. It
// returns the composed HTML without calling the PDF engine or persisting
// anything, so editors can iterate quickly.
func (a *API) DocumentPreview(w http.ResponseWriter, r *http.Request) {
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req generateRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	comp, err := a.pipeline.Compose(r.Context(), docgen.Request{
		TemplateID:          templateID,
		VersionSequence:     req.VersionSequence,
		Bindings:            req.Bindings,
		Draft:               req.Draft,
		IncludeVerification: req.IncludeVerification,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"html":             comp.HTML,
		"version_sequence": comp.VersionSequence,
		"unresolved":       comp.Unresolved,
		"missing_required": comp.MissingRequired,
		"checksum":         comp.Checksum,
	})
}

// DocumentList handles GET /api/templates/{templateID}/documents.
func (a *API) DocumentList(w http.ResponseWriter, r *http.Request) {
	templateID, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	limit, offset := pagination(r)
	docs, err := a.documents.ListByTemplate(templateID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// DocumentDownload handles GET /api/documents/{documentID}/download and
// replies with a short-lived presigned URL for the stored PDF.
func (a *API) DocumentDownload(w http.ResponseWriter, r *http.Request) {
	if a.blobs == nil {
		writeError(w, apperr.External("object storage", errNotConfigured))
		return
	}
	id, err := urlUUID(r, "documentID")
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := a.documents.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if doc == nil {
		writeError(w, apperr.NotFound("document %s", id))
		return
	}
	url, err := a.blobs.PresignedURL(r.Context(), a.blobs.DocumentsBucket(), doc.S3Key, 15*time.Minute)
	if err != nil {
		writeError(w, apperr.External("presign", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": doc, "download_url": url})
}
