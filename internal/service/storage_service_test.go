package service

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestAttachImageReplacesPreviousFile(t *testing.T) {
	env := newTestEnv(t)
	root := t.TempDir()
	env.questions.Storage = &StorageService{Provider: &LocalStorageProvider{Root: root}}
	q := env.createSingleChoice(t, answerTexts(2), 1, 1)

	first, err := env.questions.AttachImage(ctxBG(), q.Base.ID, env.student, "Schnitt.PNG",
		bytes.NewReader(pngHeader), int64(len(pngHeader)))
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if !strings.HasPrefix(first, "/uploads/questions/") || !strings.HasSuffix(first, ".png") {
		t.Fatalf("unexpected image url %q", first)
	}
	firstPath := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(first, "/uploads/")))
	if _, err := os.Stat(firstPath); err != nil {
		t.Fatalf("expected stored file: %v", err)
	}

	second, err := env.questions.AttachImage(ctxBG(), q.Base.ID, env.student, "neu.png",
		bytes.NewReader(pngHeader), int64(len(pngHeader)))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := os.Stat(firstPath); !os.IsNotExist(err) {
		t.Fatalf("replaced image should be removed, stat err = %v", err)
	}

	var stored model.Question
	if err := env.db.First(&stored, q.Base.ID).Error; err != nil {
		t.Fatalf("load question: %v", err)
	}
	if stored.ImageURL != second {
		t.Fatalf("expected %q, got %q", second, stored.ImageURL)
	}
}

func TestAttachImageRejectsInvalidUploads(t *testing.T) {
	env := newTestEnv(t)
	env.questions.Storage = &StorageService{Provider: &LocalStorageProvider{Root: t.TempDir()}}
	q := env.createSingleChoice(t, answerTexts(2), 1, 1)

	_, err := env.questions.AttachImage(ctxBG(), q.Base.ID, env.student, "notizen.txt",
		bytes.NewReader(pngHeader), int64(len(pngHeader)))
	expectValidation(t, err)

	text := []byte("kein Bild, nur Text")
	_, err = env.questions.AttachImage(ctxBG(), q.Base.ID, env.student, "fake.png",
		bytes.NewReader(text), int64(len(text)))
	expectValidation(t, err)

	stranger := Actor{UserID: 77, Role: model.RoleUser}
	if _, err := env.questions.AttachImage(ctxBG(), q.Base.ID, stranger, "bild.png",
		bytes.NewReader(pngHeader), int64(len(pngHeader))); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestStorageKeyFromURL(t *testing.T) {
	s := &StorageService{Provider: &LocalStorageProvider{Root: t.TempDir()}}
	if got := s.KeyFromURL("/uploads/questions/3/a.png"); got != "questions/3/a.png" {
		t.Fatalf("unexpected key %q", got)
	}
	if err := s.Delete(ctxBG(), "questions/fehlt.png"); err != nil {
		t.Fatalf("deleting a missing file should succeed: %v", err)
	}
}
