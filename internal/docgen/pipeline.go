// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package docgen orchestrates document generation: it loads a template
// version, substitutes variable bindings, embeds branding assets inline,
// applies draft watermarks and verification codes, and drives the external
// PDF engine. Composition is deterministic: the same version, bindings and
// assets always produce byte-identical HTML.
package docgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"docnexus/internal/apperr"
	"docnexus/internal/assets"
	"docnexus/internal/models"
	"docnexus/internal/pdf"
	"docnexus/internal/vars"
)

// TemplateSource provides template and version lookup.
type TemplateSource interface {
	FindByID(id uuid.UUID) (*models.Template, error)
	GetVersion(templateID uuid.UUID, sequence int) (*models.TemplateVersion, error)
}

// AssetSource resolves and embeds branding assets.
type AssetSource interface {
	ResolveDefault(templateID uuid.UUID, assetType models.AssetType) (*models.Asset, error)
	Embed(ctx context.Context, asset *models.Asset) (string, error)
}

// Pipeline renders documents from stored templates.
type Pipeline struct {
	templates TemplateSource
	assets    AssetSource
	engine    pdf.Engine
}

// NewPipeline wires a render pipeline from its collaborators.
func NewPipeline(templates TemplateSource, assetSource AssetSource, engine pdf.Engine) *Pipeline {
	return &Pipeline{templates: templates, assets: assetSource, engine: engine}
}

// Request describes one document generation.
type Request struct {
	TemplateID uuid.UUID
	// VersionSequence selects an explicit version; zero means current.
	VersionSequence int
	Bindings        map[string]any
	// Draft overlays the watermark asset and permits incomplete bindings.
	Draft bool
	// IncludeVerification embeds a scannable QR verification code.
	IncludeVerification bool
	// Strict fails with a validation error when required variables are
	// missing instead of reporting them as metadata.
	Strict bool
}

// EmbeddedAsset records one asset that was inlined into the document.
type EmbeddedAsset struct {
	ID        uuid.UUID        `json:"id"`
	AssetType models.AssetType `json:"asset_type"`
	Name      string           `json:"name"`
}

// Composition is the deterministic HTML stage of a render, before PDF
// encoding.
type Composition struct {
	HTML            string
	VersionSequence int
	Unresolved      []string
	MissingRequired []string
	EmbeddedAssets  []EmbeddedAsset
	Checksum        string
	VerificationID  string
}

// Result is a finished render: the PDF artifact plus the composition
// metadata for auditability.
type Result struct {
	PDF []byte
	Composition
}

// Generate composes the document and converts it to PDF.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Result, error) {
	comp, err := p.Compose(ctx, req)
	if err != nil {
		return nil, err
	}
	artifact, err := p.engine.Render(ctx, comp.HTML)
	if err != nil {
		return nil, err
	}
	return &Result{PDF: artifact, Composition: *comp}, nil
}

// Compose produces the final self-contained HTML without calling the PDF
// engine. Used directly for previews.
func (p *Pipeline) Compose(ctx context.Context, req Request) (*Composition, error) {
	tpl, err := p.templates.FindByID(req.TemplateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil || !tpl.IsActive {
		return nil, apperr.NotFound("template %s", req.TemplateID)
	}

	seq := req.VersionSequence
	if seq == 0 {
		seq = tpl.CurrentVersion
	}
	version, err := p.templates.GetVersion(req.TemplateID, seq)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, apperr.NotFound("template %s version %d", req.TemplateID, seq)
	}

	missing := missingRequired(version.Variables, req.Bindings)
	if req.Strict && len(missing) > 0 {
		return nil, apperr.Validation("missing required variables: %s", strings.Join(missing, ", "))
	}

	// Branding assets bind to reserved variable names. Caller-supplied
	// bindings take precedence so a document can override its logo.
	bindings := make(map[string]any, len(req.Bindings)+2)
	for k, v := range req.Bindings {
		bindings[k] = v
	}
	var embedded []EmbeddedAsset
	for _, at := range []models.AssetType{models.AssetTypeLogo, models.AssetTypeSignature} {
		if _, ok := bindings[string(at)]; ok {
			continue
		}
		uri, asset, err := p.embedDefault(ctx, req.TemplateID, at)
		if err != nil {
			return nil, err
		}
		if asset != nil {
			bindings[string(at)] = uri
			embedded = append(embedded, EmbeddedAsset{ID: asset.ID, AssetType: asset.AssetType, Name: asset.Name})
		}
	}

	var watermarkURI string
	if req.Draft {
		uri, asset, err := p.embedDefault(ctx, req.TemplateID, models.AssetTypeWatermark)
		if err != nil {
			return nil, err
		}
		// A draft without a configured watermark renders without one.
		if asset != nil {
			watermarkURI = uri
			embedded = append(embedded, EmbeddedAsset{ID: asset.ID, AssetType: asset.AssetType, Name: asset.Name})
		}
	}

	body := vars.Substitute(version.HTMLContent, bindings, version.Variables)
	unresolved := vars.Unresolved(version.HTMLContent, bindings)

	comp := &Composition{
		VersionSequence: seq,
		Unresolved:      unresolved,
		MissingRequired: missing,
		EmbeddedAssets:  embedded,
	}

	var verification string
	if req.IncludeVerification {
		id, block, err := verificationBlock(req.TemplateID, seq, body)
		if err != nil {
			return nil, err
		}
		comp.VerificationID = id
		verification = block
	}

	comp.HTML = composeHTML(tpl.Branding, version.CSSContent, body, watermarkURI, verification)
	sum := sha256.Sum256([]byte(comp.HTML))
	comp.Checksum = hex.EncodeToString(sum[:])
	return comp, nil
}

// embedDefault resolves the default asset of a type and embeds it. Returns
// a nil asset when the template has none of that type.
func (p *Pipeline) embedDefault(ctx context.Context, templateID uuid.UUID, at models.AssetType) (string, *models.Asset, error) {
	// Deployments without object storage render without branding assets.
	if p.assets == nil {
		return "", nil, nil
	}
	asset, err := p.assets.ResolveDefault(templateID, at)
	if err != nil {
		return "", nil, err
	}
	if asset == nil {
		return "", nil, nil
	}
	uri, err := p.assets.Embed(ctx, asset)
	if err != nil {
		return "", nil, err
	}
	return uri, asset, nil
}

// missingRequired returns declared required variable names with no supplied
// binding, in declaration order.
func missingRequired(decls []models.Variable, bindings map[string]any) []string {
	var missing []string
	for _, d := range decls {
		if !d.Required {
			continue
		}
		if _, ok := bindings[d.Name]; !ok {
			missing = append(missing, d.Name)
		}
	}
	return missing
}

// verificationBlock builds a deterministic verification payload for the
// substituted body and renders it as an inline QR code. The identifier is
// derived from the content so re-rendering the same document yields the
// same code.
func verificationBlock(templateID uuid.UUID, sequence int, body string) (string, string, error) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", templateID, sequence, body)))
	id := hex.EncodeToString(sum[:8])
	payload := fmt.Sprintf("docnexus:verify:%s:%d:%s", templateID, sequence, id)

	png, err := qrcode.Encode(payload, qrcode.Medium, 128)
	if err != nil {
		return "", "", fmt.Errorf("encode verification code: %w", err)
	}
	block := fmt.Sprintf(
		`<div class="verification"><img src="%s" alt="verification code" width="96" height="96"><span>%s</span></div>`,
		assets.DataURI("image/png", png), id,
	)
	return id, block, nil
}

// composeHTML assembles the final self-contained document. Section order is
// fixed so output is byte-identical across renders.
func composeHTML(branding models.BrandingConfig, css, body, watermarkURI, verification string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	fmt.Fprintf(&b, ":root { --primary-color: %s; --secondary-color: %s; }\n", branding.PrimaryColor, branding.SecondaryColor)
	fmt.Fprintf(&b, "body { font-family: '%s', sans-serif; }\n", branding.FontFamily)
	if css != "" {
		b.WriteString(css)
		if !strings.HasSuffix(css, "\n") {
			b.WriteString("\n")
		}
	}
	if watermarkURI != "" {
		b.WriteString(".watermark-overlay { position: fixed; top: 0; left: 0; width: 100%; height: 100%; ")
		b.WriteString("background-repeat: repeat; background-position: center; opacity: 0.08; ")
		b.WriteString("pointer-events: none; z-index: 1000; }\n")
	}
	if verification != "" {
		b.WriteString(".verification { margin-top: 2em; font-size: 0.7em; color: var(--secondary-color); }\n")
	}
	b.WriteString("</style>\n</head>\n<body>\n")
	if watermarkURI != "" {
		fmt.Fprintf(&b, `<div class="watermark-overlay" style="background-image: url(%s);"></div>`+"\n", watermarkURI)
	}
	b.WriteString(body)
	b.WriteString("\n")
	if verification != "" {
		b.WriteString(verification)
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
