package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/repository"
	"kreuzen_backend/internal/util"

	"gorm.io/datatypes"
)

type authEnv struct {
	auth     *AuthService
	notifier *recordingNotifier
	uni      model.University
	cfg      *config.Config
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	db := openTestDB(t)

	uni := model.University{
		Name:               "Charité Berlin",
		AllowedMailDomains: datatypes.JSONSlice[string]{"charite.de"},
	}
	mustCreate(t, db, &uni)

	cfg := &config.Config{
		JWT:  config.JWTConfig{Secret: "test-secret-with-enough-length-1234", ExpireTime: time.Hour},
		Mail: config.MailConfig{FrontendURL: "https://kreuzen.example/"},
	}
	notifier := &recordingNotifier{}
	auth := NewAuthService(repository.NewUserRepository(db), repository.NewCatalogRepository[model.University](db), notifier, cfg, db)
	return &authEnv{auth: auth, notifier: notifier, uni: uni, cfg: cfg}
}

func (e *authEnv) register(email string) (*model.User, error) {
	return e.auth.Register(ctxBG(), RegisterRequest{
		Username:     strings.ToLower(strings.Split(email, "@")[0]),
		Email:        email,
		Password:     "geheim123",
		UniversityID: e.uni.ID,
	})
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	i := strings.Index(link, "?token=")
	if i < 0 {
		t.Fatalf("link without token: %q", link)
	}
	return link[i+len("?token="):]
}

func TestRegisterConfirmLogin(t *testing.T) {
	env := newAuthEnv(t)

	user, err := env.register("Anna@Charite.de")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "anna@charite.de" || user.Role != model.RoleUser || user.EmailConfirmed {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, _, err := env.auth.Login(ctxBG(), "anna", "geheim123"); !errors.Is(err, util.ErrEmailNotConfirmed) {
		t.Fatalf("expected unconfirmed email, got %v", err)
	}

	job := env.notifier.last()
	if job.Template != MailConfirmEmail || job.To != "anna@charite.de" {
		t.Fatalf("unexpected mail job: %+v", job)
	}
	if !strings.HasPrefix(job.Data["link"], "https://kreuzen.example/confirm-email?token=") {
		t.Fatalf("unexpected confirm link: %q", job.Data["link"])
	}

	if err := env.auth.ConfirmEmail(ctxBG(), tokenFromLink(t, job.Data["link"])); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := env.auth.ConfirmEmail(ctxBG(), tokenFromLink(t, job.Data["link"])); !errors.Is(err, util.ErrTokenInvalid) {
		t.Fatalf("confirm token must be single use, got %v", err)
	}

	token, loggedIn, err := env.auth.Login(ctxBG(), "anna@charite.de", "geheim123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, loggedIn.ID)
	}
	claims, err := util.ParseJWT(token, env.cfg.JWT.Secret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, err := env.auth.Login(ctxBG(), "anna", "falsch123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := env.auth.Login(ctxBG(), "niemand", "geheim123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestRegisterRejections(t *testing.T) {
	env := newAuthEnv(t)

	if _, err := env.register("max@gmail.com"); !errors.Is(err, util.ErrMailDomainNotAllowed) {
		t.Fatalf("expected domain rejection, got %v", err)
	}
	if _, err := env.register("max@charite.de"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := env.register("MAX@charite.de"); !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	_, err := env.auth.Register(ctxBG(), RegisterRequest{
		Username:     "max",
		Email:        "max2@charite.de",
		Password:     "geheim123",
		UniversityID: env.uni.ID,
	})
	if !errors.Is(err, util.ErrUsernameTaken) {
		t.Fatalf("expected duplicate username, got %v", err)
	}

	var nf *util.NotFoundError
	_, err = env.auth.Register(ctxBG(), RegisterRequest{
		Username:     "lena",
		Email:        "lena@charite.de",
		Password:     "geheim123",
		UniversityID: 999,
	})
	if !errors.As(err, &nf) {
		t.Fatalf("expected missing university, got %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	env := newAuthEnv(t)
	if _, err := env.register("paul@charite.de"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := env.auth.ConfirmEmail(ctxBG(), tokenFromLink(t, env.notifier.last().Data["link"])); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if err := env.auth.RequestPasswordReset(ctxBG(), "unbekannt@charite.de"); err != nil {
		t.Fatalf("unknown email must not leak, got %v", err)
	}
	if err := env.auth.RequestPasswordReset(ctxBG(), "paul@charite.de"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	job := env.notifier.last()
	if job.Template != MailPasswordReset {
		t.Fatalf("expected reset mail, got %+v", job)
	}

	expectValidation(t, env.auth.ResetPassword(ctxBG(), tokenFromLink(t, job.Data["link"]), "kurz"))
	if err := env.auth.ResetPassword(ctxBG(), "kein-token", "neuesPasswort"); !errors.Is(err, util.ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if err := env.auth.ResetPassword(ctxBG(), tokenFromLink(t, job.Data["link"]), "neuesPasswort"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, _, err := env.auth.Login(ctxBG(), "paul", "geheim123"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := env.auth.Login(ctxBG(), "paul", "neuesPasswort"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
