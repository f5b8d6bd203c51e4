// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"docnexus/internal/apperr"
	"docnexus/internal/models"
)

func newTestTemplate(name string) *models.Template {
	return &models.Template{
		Name:         name,
		Title:        "Test " + name,
		DocumentType: models.DocumentTypeInvoice,
		Branding:     models.DefaultBranding(),
		CreatedBy:    uuid.New(),
	}
}

func TestTemplateCreateExtractsVariables(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-create-test") })

	created, version, err := s.Create(newTestTemplate("tpl-create-test"),
		`<h1>Invoice {{number}}</h1><p>For {{customer}}</p>`, "h1 { color: red; }")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CurrentVersion != 1 {
		t.Errorf("current version = %d, want 1", created.CurrentVersion)
	}
	if version.Sequence != 1 {
		t.Errorf("version sequence = %d, want 1", version.Sequence)
	}
	if len(version.Variables) != 2 {
		t.Fatalf("variables = %+v, want number and customer", version.Variables)
	}
	if version.Variables[0].Name != "number" || version.Variables[1].Name != "customer" {
		t.Errorf("variables out of appearance order: %+v", version.Variables)
	}
}

func TestTemplateCreateDuplicateNameFails(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-dup-name") })

	if _, _, err := s.Create(newTestTemplate("tpl-dup-name"), "<p>one</p>", ""); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, _, err := s.Create(newTestTemplate("tpl-dup-name"), "<p>two</p>", "")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCreateVersionIncrementsSequence(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-version-seq") })

	created, _, err := s.Create(newTestTemplate("tpl-version-seq"), "<p>{{a}}</p>", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	v2, err := s.CreateVersion(created.ID, "<p>{{a}} {{b}}</p>", "", nil, created.CreatedBy)
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if v2.Sequence != 2 {
		t.Errorf("sequence = %d, want 2", v2.Sequence)
	}

	tpl, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if tpl.CurrentVersion != 2 {
		t.Errorf("current version = %d, want 2", tpl.CurrentVersion)
	}

	// Variables carry over from the previous version and pick up new names.
	names := make([]string, len(v2.Variables))
	for i, v := range v2.Variables {
		names[i] = v.Name
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("variables = %v, want [a b]", names)
	}
}

func TestCreateVersionConcurrentSequencesAreGapless(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-concurrent") })

	created, _, err := s.Create(newTestTemplate("tpl-concurrent"), "<p>v1</p>", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	sequences := make(chan int, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.CreateVersion(created.ID, "<p>update</p>", "", nil, created.CreatedBy)
			if err != nil {
				errs <- err
				return
			}
			sequences <- v.Sequence
		}()
	}
	wg.Wait()
	close(sequences)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent create version: %v", err)
	}

	seen := make(map[int]bool)
	for seq := range sequences {
		if seen[seq] {
			t.Fatalf("duplicate sequence %d allocated", seq)
		}
		seen[seq] = true
	}
	for want := 2; want <= workers+1; want++ {
		if !seen[want] {
			t.Errorf("sequence %d missing, history has a gap", want)
		}
	}
}

func TestCreateVersionInactiveTemplateFails(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-inactive") })

	created, _, err := s.Create(newTestTemplate("tpl-inactive"), "<p>v1</p>", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Deactivate(created.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err = s.CreateVersion(created.ID, "<p>v2</p>", "", nil, created.CreatedBy)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestVersionsAreImmutable(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-immutable") })

	created, _, err := s.Create(newTestTemplate("tpl-immutable"), "<p>original</p>", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateVersion(created.ID, "<p>changed</p>", "", nil, created.CreatedBy); err != nil {
		t.Fatalf("create version: %v", err)
	}

	v1, err := s.GetVersion(created.ID, 1)
	if err != nil {
		t.Fatalf("get version 1: %v", err)
	}
	if v1.HTMLContent != "<p>original</p>" {
		t.Errorf("version 1 content changed: %q", v1.HTMLContent)
	}
}

func TestDuplicateForksContent(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-fork-src", "tpl-fork-copy") })

	source, _, err := s.Create(newTestTemplate("tpl-fork-src"), "<p>{{shared}}</p>", "p { margin: 0; }")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	sourceVersion, err := s.GetVersion(source.ID, 1)
	if err != nil {
		t.Fatalf("get source version: %v", err)
	}

	fork, forkVersion, err := s.Duplicate(source.ID, "tpl-fork-copy", source.CreatedBy)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if fork.CurrentVersion != 1 || forkVersion.Sequence != 1 {
		t.Errorf("fork starts at version %d/%d, want 1/1", fork.CurrentVersion, forkVersion.Sequence)
	}
	if forkVersion.ForkedFrom == nil || *forkVersion.ForkedFrom != sourceVersion.ID {
		t.Errorf("forked_from = %v, want %s", forkVersion.ForkedFrom, sourceVersion.ID)
	}
	if forkVersion.HTMLContent != sourceVersion.HTMLContent {
		t.Error("fork content differs from source")
	}

	// Edits to the source never leak into the fork.
	if _, err := s.CreateVersion(source.ID, "<p>diverged</p>", "", nil, source.CreatedBy); err != nil {
		t.Fatalf("diverge source: %v", err)
	}
	forkV1, err := s.GetVersion(fork.ID, 1)
	if err != nil {
		t.Fatalf("get fork version: %v", err)
	}
	if forkV1.HTMLContent != "<p>{{shared}}</p>" {
		t.Errorf("fork content changed after source edit: %q", forkV1.HTMLContent)
	}
}

func TestUpdateVariableMetaRefinesDeclaredOnly(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-varmeta") })

	created, _, err := s.Create(newTestTemplate("tpl-varmeta"), "<p>{{total}}</p>", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	version, err := s.UpdateVariableMeta(created.ID, []models.Variable{
		{Name: "total", Description: "Grand total", Type: models.VariableTypeCurrency, Required: true},
		{Name: "ghost", Description: "not declared in markup"},
	})
	if err != nil {
		t.Fatalf("update variable meta: %v", err)
	}
	if len(version.Variables) != 1 {
		t.Fatalf("variables = %+v, want only the declared one", version.Variables)
	}
	v := version.Variables[0]
	if v.Description != "Grand total" || v.Type != models.VariableTypeCurrency || !v.Required {
		t.Errorf("metadata not applied: %+v", v)
	}
}

func TestUpdateBrandingDoesNotBumpVersion(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)
	t.Cleanup(func() { cleanTemplates(t, db, "tpl-branding") })

	created, _, err := s.Create(newTestTemplate("tpl-branding"), "<p>x</p>", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = s.UpdateBranding(created.ID, models.BrandingConfig{
		PrimaryColor: "#000000", SecondaryColor: "#FFFFFF", FontFamily: "Georgia",
	})
	if err != nil {
		t.Fatalf("update branding: %v", err)
	}

	tpl, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if tpl.Branding.PrimaryColor != "#000000" {
		t.Errorf("primary color = %s", tpl.Branding.PrimaryColor)
	}
	if tpl.CurrentVersion != 1 {
		t.Errorf("current version = %d, branding must not create versions", tpl.CurrentVersion)
	}
}

func TestFindByIDMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)

	tpl, err := s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if tpl != nil {
		t.Errorf("tpl = %+v, want nil", tpl)
	}
}
