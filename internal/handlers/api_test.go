// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"docnexus/internal/apperr"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.Validation("bad input"), http.StatusUnprocessableEntity},
		{"not found", apperr.NotFound("template x"), http.StatusNotFound},
		{"conflict", apperr.Conflict("sequence race"), http.StatusConflict},
		{"external", apperr.External("pdf engine", errors.New("down")), http.StatusBadGateway},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: secret table is on fire"))
	if strings.Contains(rec.Body.String(), "secret") {
		t.Errorf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestPaginationBounds(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=5", 10, 5},
		{"?limit=9999", 200, 0},
		{"?limit=-3&offset=-1", 50, 0},
		{"?limit=abc", 50, 0},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/templates"+tt.query, nil)
		limit, offset := pagination(r)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("pagination(%q) = (%d, %d), want (%d, %d)",
				tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestRequestUser(t *testing.T) {
	id := uuid.New()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-User-ID", id.String())
	if got := requestUser(r); got != id {
		t.Errorf("requestUser = %s, want %s", got, id)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := requestUser(r); got != uuid.Nil {
		t.Errorf("requestUser without header = %s, want zero UUID", got)
	}
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	api := NewAPI(nil, nil, nil, nil, nil, nil, nil, nil, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/templates", strings.NewReader("{not json"))
	var req createTemplateRequest
	err := api.decodeAndValidate(r, &req)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDecodeAndValidateEnforcesRules(t *testing.T) {
	api := NewAPI(nil, nil, nil, nil, nil, nil, nil, nil, nil)

	// Missing required title and html_content.
	r := httptest.NewRequest(http.MethodPost, "/api/templates",
		strings.NewReader(`{"document_type": "invoice"}`))
	var req createTemplateRequest
	err := api.decodeAndValidate(r, &req)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}
