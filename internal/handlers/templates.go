// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
	"docnexus/internal/slug"
)

// createTemplateRequest creates a template together with its first version.
type createTemplateRequest struct {
	Name         string                 `json:"name"`
	Title        string                 `json:"title" validate:"required,max=200"`
	Description  string                 `json:"description"`
	DocumentType models.DocumentType    `json:"document_type" validate:"required"`
	Branding     *models.BrandingConfig `json:"branding"`
	HTMLContent  string                 `json:"html_content" validate:"required"`
	CSSContent   string                 `json:"css_content"`
}

// templateResponse pairs a template with one of its versions for replies
// that produce both.
type templateResponse struct {
	Template *models.Template        `json:"template"`
	Version  *models.TemplateVersion `json:"version,omitempty"`
}

// TemplateCreate handles POST /api/templates.
func (a *API) TemplateCreate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !req.DocumentType.Valid() {
		writeError(w, apperr.Validation("unknown document type %q", req.DocumentType))
		return
	}

	name := req.Name
	if name == "" {
		name = slug.Generate(req.Title)
	}
	if !slug.Valid(name) {
		writeError(w, apperr.Validation("name %q is not a valid slug", name))
		return
	}

	branding := models.DefaultBranding()
	if req.Branding != nil {
		branding = *req.Branding
	}

	tpl := &models.Template{
		Name:         name,
		Title:        req.Title,
		Description:  req.Description,
		DocumentType: req.DocumentType,
		Branding:     branding,
		CreatedBy:    requestUser(r),
	}
	created, version, err := a.templates.Create(tpl, req.HTMLContent, req.CSSContent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateResponse{Template: created, Version: version})
}

// TemplateList handles GET /api/templates.
func (a *API) TemplateList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	docType := models.DocumentType(r.URL.Query().Get("type"))
	activeOnly := r.URL.Query().Get("active") == "true"

	templates, err := a.templates.List(docType, activeOnly, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

// TemplateGet handles GET /api/templates/{templateID}.
func (a *API) TemplateGet(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	tpl, err := a.templates.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if tpl == nil {
		writeError(w, apperr.NotFound("template %s", id))
		return
	}
	writeJSON(w, http.StatusOK, templateResponse{Template: tpl})
}

// TemplateGetByName handles GET /api/templates/by-name/{name}.
func (a *API) TemplateGetByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tpl, err := a.templates.FindByName(name)
	if err != nil {
		writeError(w, err)
		return
	}
	if tpl == nil {
		writeError(w, apperr.NotFound("template %q", name))
		return
	}
	writeJSON(w, http.StatusOK, templateResponse{Template: tpl})
}

// TemplateDeactivate handles DELETE /api/templates/{templateID}. Templates
// are soft-deleted so historical documents keep their version references.
func (a *API) TemplateDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.templates.Deactivate(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateBrandingRequest replaces the template's branding configuration.
type updateBrandingRequest struct {
	PrimaryColor   string `json:"primary_color" validate:"required,hexcolor"`
	SecondaryColor string `json:"secondary_color" validate:"required,hexcolor"`
	FontFamily     string `json:"font_family" validate:"required,max=100"`
}

// TemplateUpdateBranding handles PUT /api/templates/{templateID}/branding.
// Branding changes do not create a new version; they apply to every future
// render of any version.
func (a *API) TemplateUpdateBranding(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateBrandingRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	branding := models.BrandingConfig{
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		FontFamily:     req.FontFamily,
	}
	if err := a.templates.UpdateBranding(id, branding); err != nil {
		writeError(w, err)
		return
	}
	tpl, err := a.templates.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponse{Template: tpl})
}

// createVersionRequest appends a new immutable version.
type createVersionRequest struct {
	HTMLContent string            `json:"html_content" validate:"required"`
	CSSContent  string            `json:"css_content"`
	Variables   []models.Variable `json:"variables"`
}

// VersionCreate handles POST /api/templates/{templateID}/versions.
func (a *API) VersionCreate(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req createVersionRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	version, err := a.templates.CreateVersion(id, req.HTMLContent, req.CSSContent, req.Variables, requestUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, version)
}

// VersionList handles GET /api/templates/{templateID}/versions.
func (a *API) VersionList(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	versions, err := a.templates.ListVersions(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

// VersionGet handles GET /api/templates/{templateID}/versions/{sequence}.
func (a *API) VersionGet(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	seq, err := strconv.Atoi(chi.URLParam(r, "sequence"))
	if err != nil || seq < 1 {
		writeError(w, apperr.Validation("invalid sequence: must be a positive integer"))
		return
	}
	version, err := a.templates.GetVersion(id, seq)
	if err != nil {
		writeError(w, err)
		return
	}
	if version == nil {
		writeError(w, apperr.NotFound("template %s version %d", id, seq))
		return
	}
	writeJSON(w, http.StatusOK, version)
}

// updateVariablesRequest refines metadata of declared variables.
type updateVariablesRequest struct {
	Variables []models.Variable `json:"variables" validate:"required,min=1"`
}

// VariablesUpdate handles PATCH /api/templates/{templateID}/variables. It
// updates descriptions, examples, types and required flags on the current
// version's declared variables without creating a new version.
func (a *API) VariablesUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateVariablesRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	version, err := a.templates.UpdateVariableMeta(id, req.Variables)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

// duplicateTemplateRequest forks a template under a new name.
type duplicateTemplateRequest struct {
	Name string `json:"name" validate:"required"`
}

// TemplateDuplicate handles POST /api/templates/{templateID}/duplicate.
// The copy starts at version 1 with a forked-from reference to the source's
// current version; content is copied, never shared.
func (a *API) TemplateDuplicate(w http.ResponseWriter, r *http.Request) {
	id, err := urlUUID(r, "templateID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req duplicateTemplateRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if !slug.Valid(req.Name) {
		writeError(w, apperr.Validation("name %q is not a valid slug", req.Name))
		return
	}
	tpl, version, err := a.templates.Duplicate(id, req.Name, requestUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, templateResponse{Template: tpl, Version: version})
}

// pagination parses limit/offset query parameters with sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > 200 {
		limit = 200
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
