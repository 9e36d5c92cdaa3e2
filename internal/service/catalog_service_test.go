package service

import (
	"errors"
	"testing"

	"kreuzen_backend/internal/util"
)

func TestCatalogDeleteRejectsReferencedEntities(t *testing.T) {
	db := openTestDB(t)
	catalog := NewCatalog(db)

	uni, err := catalog.Universities.Create(ctxBG(), UniversityRequest{
		Name:               "LMU München",
		AllowedMailDomains: []string{"@Campus.LMU.de"},
	})
	if err != nil {
		t.Fatalf("create university: %v", err)
	}
	if got := []string(uni.AllowedMailDomains); len(got) != 1 || got[0] != "campus.lmu.de" {
		t.Fatalf("expected normalized domain, got %v", got)
	}

	module, err := catalog.Modules.Create(ctxBG(), ModuleRequest{Name: "Physiologie", UniversityID: uni.ID})
	if err != nil {
		t.Fatalf("create module: %v", err)
	}

	expectConflict(t, catalog.Universities.Delete(ctxBG(), uni.ID), util.ConflictInUse)

	if err := catalog.Modules.Delete(ctxBG(), module.ID); err != nil {
		t.Fatalf("delete module: %v", err)
	}
	if err := catalog.Universities.Delete(ctxBG(), uni.ID); err != nil {
		t.Fatalf("delete university: %v", err)
	}

	var nf *util.NotFoundError
	if _, err := catalog.Universities.Get(ctxBG(), uni.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogValidatesReferences(t *testing.T) {
	db := openTestDB(t)
	catalog := NewCatalog(db)

	var nf *util.NotFoundError
	if _, err := catalog.Modules.Create(ctxBG(), ModuleRequest{Name: "Biochemie", UniversityID: 42}); !errors.As(err, &nf) {
		t.Fatalf("expected missing university, got %v", err)
	}

	_, err := catalog.Semesters.Create(ctxBG(), SemesterRequest{Name: "SS 2025", StartYear: 2025, EndYear: 2024})
	expectValidation(t, err)

	_, err = catalog.Universities.Create(ctxBG(), UniversityRequest{Name: "   "})
	expectValidation(t, err)
}

func TestHintActiveFlag(t *testing.T) {
	db := openTestDB(t)
	catalog := NewCatalog(db)

	active, err := catalog.Hints.Create(ctxBG(), HintRequest{Text: "Lies die Frage zweimal."})
	if err != nil {
		t.Fatalf("create hint: %v", err)
	}
	if !active.IsActive {
		t.Fatalf("hints must default to active")
	}
	inactive, err := catalog.Hints.Create(ctxBG(), HintRequest{Text: "Veralteter Hinweis", IsActive: boolPtr(false)})
	if err != nil {
		t.Fatalf("create inactive hint: %v", err)
	}
	stored, err := catalog.Hints.Get(ctxBG(), inactive.ID)
	if err != nil {
		t.Fatalf("get hint: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("inactive flag must be persisted")
	}

	for i := 0; i < 5; i++ {
		h, err := catalog.Hints.Random(ctxBG(), map[string]interface{}{"is_active": true})
		if err != nil {
			t.Fatalf("random hint: %v", err)
		}
		if h.ID != active.ID {
			t.Fatalf("random must only pick active hints, got %d", h.ID)
		}
	}
}
