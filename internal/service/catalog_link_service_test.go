package service

import (
	"errors"
	"slices"
	"testing"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"
)

func TestSectionRequestValidation(t *testing.T) {
	db := openTestDB(t)
	catalog := NewCatalog(db)

	var nf *util.NotFoundError
	if _, err := catalog.Sections.Create(ctxBG(), SectionRequest{Name: "Vorklinik", MajorID: 7}); !errors.As(err, &nf) {
		t.Fatalf("expected missing major, got %v", err)
	}

	uni := model.University{Name: "Universität Leipzig"}
	mustCreate(t, db, &uni)
	major := model.Major{Name: "Humanmedizin", UniversityID: uni.ID}
	mustCreate(t, db, &major)

	_, err := catalog.Sections.Create(ctxBG(), SectionRequest{Name: "ab", MajorID: major.ID})
	expectValidation(t, err)

	sections, err := catalog.Sections.List(ctxBG(), map[string]interface{}{"major_id": major.ID})
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("expected no sections, got %d", len(sections))
	}
}

func TestModuleVisibilityFollowsSubscriptions(t *testing.T) {
	db := openTestDB(t)
	catalog := NewCatalog(db)
	links := NewCatalogLinkService(db)
	moduleIDs := func(modules []model.Module, err error) []uint {
		t.Helper()
		if err != nil {
			t.Fatalf("list modules: %v", err)
		}
		ids := make([]uint, len(modules))
		for i, m := range modules {
			ids[i] = m.ID
		}
		return ids
	}

	uni, err := catalog.Universities.Create(ctxBG(), UniversityRequest{Name: "Universität Leipzig"})
	if err != nil {
		t.Fatalf("create university: %v", err)
	}
	major, err := catalog.Majors.Create(ctxBG(), MajorRequest{Name: "Humanmedizin", UniversityID: uni.ID})
	if err != nil {
		t.Fatalf("create major: %v", err)
	}
	otherMajor, err := catalog.Majors.Create(ctxBG(), MajorRequest{Name: "Zahnmedizin", UniversityID: uni.ID})
	if err != nil {
		t.Fatalf("create major: %v", err)
	}
	section, err := catalog.Sections.Create(ctxBG(), SectionRequest{Name: "Vorklinik", MajorID: major.ID})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}
	foreignSection, err := catalog.Sections.Create(ctxBG(), SectionRequest{Name: "Prothetik", MajorID: otherMajor.ID})
	if err != nil {
		t.Fatalf("create section: %v", err)
	}

	newModule := func(name string, wide bool) *model.Module {
		m, err := catalog.Modules.Create(ctxBG(), ModuleRequest{Name: name, UniversityID: uni.ID, IsUniversityWide: wide})
		if err != nil {
			t.Fatalf("create module %s: %v", name, err)
		}
		return m
	}
	wide := newModule("Terminologie", true)
	viaMajor := newModule("Physiologie", false)
	viaSection := newModule("Biochemie", false)
	newModule("Zahnerhaltung", false)

	for i := 0; i < 2; i++ {
		if err := links.LinkModuleToMajor(ctxBG(), major.ID, viaMajor.ID); err != nil {
			t.Fatalf("link module to major: %v", err)
		}
	}
	if err := links.LinkModuleToSection(ctxBG(), section.ID, viaSection.ID); err != nil {
		t.Fatalf("link module to section: %v", err)
	}
	var nf *util.NotFoundError
	if err := links.LinkModuleToMajor(ctxBG(), major.ID, 999); !errors.As(err, &nf) {
		t.Fatalf("expected missing module, got %v", err)
	}

	if got := moduleIDs(links.ModulesByMajor(ctxBG(), major.ID)); !slices.Equal(got, []uint{viaMajor.ID}) {
		t.Fatalf("unexpected major modules %v", got)
	}
	if got := moduleIDs(links.ModulesBySection(ctxBG(), section.ID)); !slices.Equal(got, []uint{viaSection.ID}) {
		t.Fatalf("unexpected section modules %v", got)
	}
	if majors, err := links.MajorsByModule(ctxBG(), viaMajor.ID); err != nil || len(majors) != 1 || majors[0].ID != major.ID {
		t.Fatalf("unexpected majors of module: %v %v", majors, err)
	}
	if sections, err := links.SectionsByModule(ctxBG(), viaSection.ID); err != nil || len(sections) != 1 || sections[0].ID != section.ID {
		t.Fatalf("unexpected sections of module: %v %v", sections, err)
	}

	student := createUser(t, db, "mara", model.RoleUser, "geheim123")
	if err := db.Model(student).Update("university_id", uni.ID).Error; err != nil {
		t.Fatalf("assign university: %v", err)
	}
	self := Actor{UserID: student.ID, Role: model.RoleUser}

	if got := moduleIDs(links.ModulesOfUser(ctxBG(), self, student.ID)); !slices.Equal(got, []uint{wide.ID}) {
		t.Fatalf("expected only university-wide module, got %v", got)
	}

	for i := 0; i < 2; i++ {
		if err := links.SubscribeMajor(ctxBG(), self, student.ID, major.ID); err != nil {
			t.Fatalf("subscribe major: %v", err)
		}
	}
	if majors, err := links.MajorsOfUser(ctxBG(), self, student.ID); err != nil || len(majors) != 1 {
		t.Fatalf("expected one subscribed major, got %v %v", majors, err)
	}
	if got := moduleIDs(links.ModulesOfUser(ctxBG(), self, student.ID)); !slices.Equal(got, []uint{wide.ID, viaMajor.ID}) {
		t.Fatalf("expected major modules to be visible, got %v", got)
	}

	err = links.SubscribeSection(ctxBG(), self, student.ID, major.ID, foreignSection.ID)
	expectValidation(t, err)
	if err := links.SubscribeSection(ctxBG(), self, student.ID, major.ID, section.ID); err != nil {
		t.Fatalf("subscribe section: %v", err)
	}
	if sections, err := links.SectionsOfUser(ctxBG(), self, student.ID, major.ID); err != nil || len(sections) != 1 || sections[0].ID != section.ID {
		t.Fatalf("unexpected user sections: %v %v", sections, err)
	}
	if got := moduleIDs(links.ModulesOfUser(ctxBG(), self, student.ID)); !slices.Equal(got, []uint{wide.ID, viaMajor.ID, viaSection.ID}) {
		t.Fatalf("expected section modules to be visible, got %v", got)
	}

	stranger := Actor{UserID: student.ID + 100, Role: model.RoleModerator}
	if _, err := links.ModulesOfUser(ctxBG(), stranger, student.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if err := links.SubscribeMajor(ctxBG(), stranger, student.ID, otherMajor.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	admin := Actor{UserID: student.ID + 200, Role: model.RoleAdmin}
	if _, err := links.MajorsOfUser(ctxBG(), admin, student.ID); err != nil {
		t.Fatalf("admin read: %v", err)
	}

	expectConflict(t, catalog.Majors.Delete(ctxBG(), major.ID), util.ConflictInUse)
	expectConflict(t, catalog.Modules.Delete(ctxBG(), viaMajor.ID), util.ConflictInUse)
	expectConflict(t, catalog.Sections.Delete(ctxBG(), section.ID), util.ConflictInUse)

	if err := links.UnsubscribeMajor(ctxBG(), self, student.ID, major.ID); err != nil {
		t.Fatalf("unsubscribe major: %v", err)
	}
	if sections, _ := links.SectionsOfUser(ctxBG(), self, student.ID, major.ID); len(sections) != 0 {
		t.Fatalf("sections of an unsubscribed major must be dropped, got %d", len(sections))
	}
	if got := moduleIDs(links.ModulesOfUser(ctxBG(), self, student.ID)); !slices.Equal(got, []uint{wide.ID}) {
		t.Fatalf("expected only university-wide module after unsubscribe, got %v", got)
	}

	if err := links.UnlinkModuleFromMajor(ctxBG(), major.ID, viaMajor.ID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if err := catalog.Modules.Delete(ctxBG(), viaMajor.ID); err != nil {
		t.Fatalf("delete unlinked module: %v", err)
	}
}
