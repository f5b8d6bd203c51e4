// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package docgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

// fakeTemplates serves templates and versions from memory.
type fakeTemplates struct {
	templates map[uuid.UUID]*models.Template
	versions  map[uuid.UUID]map[int]*models.TemplateVersion
}

func (f *fakeTemplates) FindByID(id uuid.UUID) (*models.Template, error) {
	return f.templates[id], nil
}

func (f *fakeTemplates) GetVersion(templateID uuid.UUID, sequence int) (*models.TemplateVersion, error) {
	return f.versions[templateID][sequence], nil
}

// fakeAssets serves pre-resolved assets and canned data URIs.
type fakeAssets struct {
	defaults map[models.AssetType]*models.Asset
	uris     map[uuid.UUID]string
}

func (f *fakeAssets) ResolveDefault(_ uuid.UUID, at models.AssetType) (*models.Asset, error) {
	return f.defaults[at], nil
}

func (f *fakeAssets) Embed(_ context.Context, a *models.Asset) (string, error) {
	return f.uris[a.ID], nil
}

// fakeEngine records the HTML it was asked to render.
type fakeEngine struct {
	lastHTML string
	fail     bool
}

func (f *fakeEngine) Render(_ context.Context, html string) ([]byte, error) {
	if f.fail {
		return nil, apperr.External("pdf engine", errors.New("down"))
	}
	f.lastHTML = html
	return []byte("%PDF-fake"), nil
}

func fixture() (*Pipeline, uuid.UUID, *fakeEngine, *fakeAssets) {
	templateID := uuid.New()
	logoID := uuid.New()
	watermarkID := uuid.New()

	templates := &fakeTemplates{
		templates: map[uuid.UUID]*models.Template{
			templateID: {
				ID:             templateID,
				Name:           "invoice-standard",
				DocumentType:   models.DocumentTypeInvoice,
				Branding:       models.DefaultBranding(),
				CurrentVersion: 2,
				IsActive:       true,
			},
		},
		versions: map[uuid.UUID]map[int]*models.TemplateVersion{
			templateID: {
				1: {
					TemplateID:  templateID,
					Sequence:    1,
					HTMLContent: `<p>Old: {{customer}}</p>`,
					Variables:   []models.Variable{{Name: "customer", Type: models.VariableTypeString, Required: true}},
				},
				2: {
					TemplateID:  templateID,
					Sequence:    2,
					HTMLContent: `<img src="{{logo}}"><p>Invoice for {{customer}}, total {{total}}</p>`,
					Variables: []models.Variable{
						{Name: "customer", Type: models.VariableTypeString, Required: true},
						{Name: "total", Type: models.VariableTypeCurrency, Required: true},
					},
				},
			},
		},
	}

	assetSource := &fakeAssets{
		defaults: map[models.AssetType]*models.Asset{
			models.AssetTypeLogo: {
				ID: logoID, TemplateID: templateID,
				AssetType: models.AssetTypeLogo, Name: "main-logo", IsDefault: true,
			},
			models.AssetTypeWatermark: {
				ID: watermarkID, TemplateID: templateID,
				AssetType: models.AssetTypeWatermark, Name: "draft-stamp",
			},
		},
		uris: map[uuid.UUID]string{
			logoID:      "data:image/png;base64,TE9HTw==",
			watermarkID: "data:image/png;base64,V00=",
		},
	}

	engine := &fakeEngine{}
	return NewPipeline(templates, assetSource, engine), templateID, engine, assetSource
}

func TestGenerateSubstitutesAndRendersPDF(t *testing.T) {
	p, templateID, engine, _ := fixture()

	result, err := p.Generate(context.Background(), Request{
		TemplateID: templateID,
		Bindings:   map[string]any{"customer": "Acme Corp", "total": 1234.5},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(result.PDF) != "%PDF-fake" {
		t.Errorf("pdf = %q", result.PDF)
	}
	if result.VersionSequence != 2 {
		t.Errorf("version = %d, want current version 2", result.VersionSequence)
	}
	if !strings.Contains(result.HTML, "Invoice for Acme Corp, total $1,234.50") {
		t.Errorf("substitution missing in html:\n%s", result.HTML)
	}
	if !strings.Contains(result.HTML, `src="data:image/png;base64,TE9HTw=="`) {
		t.Errorf("logo not embedded:\n%s", result.HTML)
	}
	if engine.lastHTML != result.HTML {
		t.Error("engine received different html than result reports")
	}
	if len(result.EmbeddedAssets) != 1 || result.EmbeddedAssets[0].Name != "main-logo" {
		t.Errorf("embedded assets = %+v", result.EmbeddedAssets)
	}
}

func TestComposeExplicitVersion(t *testing.T) {
	p, templateID, _, _ := fixture()

	comp, err := p.Compose(context.Background(), Request{
		TemplateID:      templateID,
		VersionSequence: 1,
		Bindings:        map[string]any{"customer": "Acme"},
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if comp.VersionSequence != 1 {
		t.Errorf("version = %d, want 1", comp.VersionSequence)
	}
	if !strings.Contains(comp.HTML, "Old: Acme") {
		t.Errorf("wrong version rendered:\n%s", comp.HTML)
	}
}

func TestComposeUnknownVersionNotFound(t *testing.T) {
	p, templateID, _, _ := fixture()

	_, err := p.Compose(context.Background(), Request{TemplateID: templateID, VersionSequence: 99})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestComposeInactiveTemplateNotFound(t *testing.T) {
	p, templateID, _, _ := fixture()
	p.templates.(*fakeTemplates).templates[templateID].IsActive = false

	_, err := p.Compose(context.Background(), Request{TemplateID: templateID})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestComposeMissingRequiredIsMetadataByDefault(t *testing.T) {
	p, templateID, _, _ := fixture()

	comp, err := p.Compose(context.Background(), Request{
		TemplateID: templateID,
		Bindings:   map[string]any{"customer": "Acme"},
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(comp.MissingRequired) != 1 || comp.MissingRequired[0] != "total" {
		t.Errorf("missing required = %v, want [total]", comp.MissingRequired)
	}
	// The missing placeholder renders as empty, not as the raw token.
	if strings.Contains(comp.HTML, "{{total}}") {
		t.Error("raw placeholder leaked into output")
	}
	if !strings.Contains(comp.HTML, "Invoice for Acme, total </p>") {
		t.Errorf("missing binding should render empty:\n%s", comp.HTML)
	}
}

func TestComposeStrictModeFailsOnMissingRequired(t *testing.T) {
	p, templateID, _, _ := fixture()

	_, err := p.Compose(context.Background(), Request{
		TemplateID: templateID,
		Bindings:   map[string]any{"customer": "Acme"},
		Strict:     true,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestComposeDraftOverlaysWatermark(t *testing.T) {
	p, templateID, _, _ := fixture()

	comp, err := p.Compose(context.Background(), Request{
		TemplateID: templateID,
		Bindings:   map[string]any{"customer": "Acme", "total": 10},
		Draft:      true,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(comp.HTML, `class="watermark-overlay"`) {
		t.Error("watermark overlay missing in draft mode")
	}
	if !strings.Contains(comp.HTML, "data:image/png;base64,V00=") {
		t.Error("watermark data URI missing")
	}
}

func TestComposeDraftWithoutWatermarkIsSilent(t *testing.T) {
	p, templateID, _, assetSource := fixture()
	delete(assetSource.defaults, models.AssetTypeWatermark)

	comp, err := p.Compose(context.Background(), Request{
		TemplateID: templateID,
		Bindings:   map[string]any{"customer": "Acme", "total": 10},
		Draft:      true,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if strings.Contains(comp.HTML, "watermark-overlay") {
		t.Error("overlay present without a watermark asset")
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	p, templateID, _, _ := fixture()
	req := Request{
		TemplateID:          templateID,
		Bindings:            map[string]any{"customer": "Acme", "total": 99.95},
		IncludeVerification: true,
	}

	first, err := p.Compose(context.Background(), req)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := p.Compose(context.Background(), req)
		if err != nil {
			t.Fatalf("compose %d: %v", i, err)
		}
		if again.HTML != first.HTML {
			t.Fatalf("run %d produced different html", i)
		}
		if again.Checksum != first.Checksum {
			t.Fatalf("run %d produced different checksum", i)
		}
		if again.VerificationID != first.VerificationID {
			t.Fatalf("run %d produced different verification id", i)
		}
	}
}

func TestComposeVerificationCodeEmbedded(t *testing.T) {
	p, templateID, _, _ := fixture()

	comp, err := p.Compose(context.Background(), Request{
		TemplateID:          templateID,
		Bindings:            map[string]any{"customer": "Acme", "total": 10},
		IncludeVerification: true,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if comp.VerificationID == "" {
		t.Error("verification id empty")
	}
	if !strings.Contains(comp.HTML, `class="verification"`) {
		t.Error("verification block missing")
	}
	if !strings.Contains(comp.HTML, "data:image/png;base64,") {
		t.Error("verification code image not inlined")
	}
}

func TestComposeCallerBindingOverridesLogo(t *testing.T) {
	p, templateID, _, _ := fixture()

	comp, err := p.Compose(context.Background(), Request{
		TemplateID: templateID,
		Bindings:   map[string]any{"customer": "Acme", "total": 10, "logo": "data:custom"},
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(comp.HTML, `src="data:custom"`) {
		t.Error("caller logo binding not honored")
	}
	if len(comp.EmbeddedAssets) != 0 {
		t.Errorf("embedded assets = %+v, want none", comp.EmbeddedAssets)
	}
}

func TestGenerateEngineFailureIsExternal(t *testing.T) {
	p, templateID, engine, _ := fixture()
	engine.fail = true

	_, err := p.Generate(context.Background(), Request{
		TemplateID: templateID,
		Bindings:   map[string]any{"customer": "Acme", "total": 10},
	})
	if !errors.Is(err, apperr.ErrExternal) {
		t.Fatalf("err = %v, want external error", err)
	}
}
