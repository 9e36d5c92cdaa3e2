package util_test

import (
	"testing"
	"time"

	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"
)

func TestGenerateAndParseJWT(t *testing.T) {
	user := &model.User{Username: "alice", Role: model.RoleModerator}
	user.ID = 42

	token, err := util.GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := util.ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.RoleModerator || claims.Username != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseJWTRejectsWrongSecretAndExpired(t *testing.T) {
	user := &model.User{Username: "bob", Role: model.RoleUser}
	user.ID = 7

	token, err := util.GenerateJWT(user, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := util.ParseJWT(token, "other"); err == nil {
		t.Fatalf("expected signature error")
	}

	expired, err := util.GenerateJWT(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("generate expired: %v", err)
	}
	if _, err := util.ParseJWT(expired, "secret"); err == nil {
		t.Fatalf("expected expiry error")
	}
}
