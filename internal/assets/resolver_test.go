// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

// fakeBlobs is an in-memory BlobStore for tests.
type fakeBlobs struct {
	objects map[string][]byte
	failGet bool
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Upload(_ context.Context, _, key, _ string, body []byte) error {
	f.objects[key] = body
	return nil
}

func (f *fakeBlobs) Download(_ context.Context, _, key string) ([]byte, error) {
	if f.failGet {
		return nil, errors.New("connection refused")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (f *fakeBlobs) Delete(_ context.Context, _, key string) error {
	delete(f.objects, key)
	return nil
}

// pngBytes encodes a small solid image for upload tests.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAcceptsPNGAndProbesDimensions(t *testing.T) {
	r := NewResolver(nil, newFakeBlobs(), "assets", 1<<20)

	ct, width, height, err := r.validate(UploadInput{
		AssetType: models.AssetTypeLogo,
		Filename:  "logo.png",
		Data:      pngBytes(t, 120, 40),
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ct != "image/png" {
		t.Errorf("content type = %q, want image/png", ct)
	}
	if width == nil || *width != 120 || height == nil || *height != 40 {
		t.Errorf("dimensions = %v x %v, want 120 x 40", width, height)
	}
}

func TestValidateRejectsOversized(t *testing.T) {
	r := NewResolver(nil, newFakeBlobs(), "assets", 64)

	_, _, _, err := r.validate(UploadInput{
		AssetType: models.AssetTypeLogo,
		Filename:  "logo.png",
		Data:      pngBytes(t, 10, 10),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestValidateRejectsDisallowedType(t *testing.T) {
	r := NewResolver(nil, newFakeBlobs(), "assets", 1<<20)

	_, _, _, err := r.validate(UploadInput{
		AssetType: models.AssetTypeLogo,
		Filename:  "script.html",
		Data:      []byte("<html><body>hi</body></html>"),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestValidateRejectsUnknownAssetType(t *testing.T) {
	r := NewResolver(nil, newFakeBlobs(), "assets", 1<<20)

	_, _, _, err := r.validate(UploadInput{
		AssetType: models.AssetType("banner"),
		Filename:  "x.png",
		Data:      pngBytes(t, 1, 1),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestValidateDetectsSVGByFilename(t *testing.T) {
	r := NewResolver(nil, newFakeBlobs(), "assets", 1<<20)

	svg := []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"/>`)
	ct, width, height, err := r.validate(UploadInput{
		AssetType: models.AssetTypeSignature,
		Filename:  "sign.svg",
		Data:      svg,
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ct != "image/svg+xml" {
		t.Errorf("content type = %q, want image/svg+xml", ct)
	}
	if width != nil || height != nil {
		t.Errorf("svg should have no pixel dimensions, got %v x %v", width, height)
	}
}

func TestEmbedProducesDataURI(t *testing.T) {
	blobs := newFakeBlobs()
	data := pngBytes(t, 4, 4)
	blobs.objects["assets/t/logo.png"] = data

	r := NewResolver(nil, blobs, "assets", 1<<20)
	uri, err := r.Embed(context.Background(), &models.Asset{
		S3Key:       "assets/t/logo.png",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("uri prefix wrong: %s", uri[:40])
	}
	if uri != DataURI("image/png", data) {
		t.Error("embed output differs from DataURI of the blob")
	}
}

func TestEmbedBlobFailureIsExternal(t *testing.T) {
	blobs := newFakeBlobs()
	blobs.failGet = true

	r := NewResolver(nil, blobs, "assets", 1<<20)
	_, err := r.Embed(context.Background(), &models.Asset{S3Key: "k", ContentType: "image/png"})
	if !errors.Is(err, apperr.ErrExternal) {
		t.Fatalf("err = %v, want external error", err)
	}
}
