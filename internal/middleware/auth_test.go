package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kreuzen_backend/internal/config"
	"kreuzen_backend/internal/model"
	"kreuzen_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const testSecret = "middleware-test-secret-0123456789"

func newRouter(roles ...model.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	group := r.Group("/", AuthMiddleware(cfg))
	if len(roles) > 0 {
		group.Use(RoleMiddleware(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).UserID)
	})
	return r
}

func tokenFor(t *testing.T, id uint, role model.UserRole, exp time.Duration) string {
	t.Helper()
	user := &model.User{Username: "tester", Role: role}
	user.ID = id
	token, err := util.GenerateJWT(user, testSecret, exp)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func do(r *gin.Engine, header string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + tokenFor(t, 1, model.RoleUser, -time.Minute), http.StatusUnauthorized},
		{"valid token", "Bearer " + tokenFor(t, 1, model.RoleUser, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := do(r, tt.header); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	moderatorOnly := newRouter(model.RoleModerator)
	adminOnly := newRouter(model.RoleAdmin)

	tests := []struct {
		name string
		r    *gin.Engine
		role model.UserRole
		want int
	}{
		{"user on moderator route", moderatorOnly, model.RoleUser, http.StatusForbidden},
		{"moderator on moderator route", moderatorOnly, model.RoleModerator, http.StatusOK},
		{"admin on moderator route", moderatorOnly, model.RoleAdmin, http.StatusOK},
		{"moderator on admin route", adminOnly, model.RoleModerator, http.StatusForbidden},
		{"sudo on admin route", adminOnly, model.RoleSudo, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := "Bearer " + tokenFor(t, 5, tt.role, time.Hour)
			if got := do(tt.r, header); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

type fakeActivity struct {
	seen chan uint
}

func (f *fakeActivity) UpdateLastSeen(userID uint) error {
	f.seen <- userID
	return nil
}

func TestActivityMiddlewareRecordsUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	activity := &fakeActivity{seen: make(chan uint, 1)}

	r := gin.New()
	r.GET("/ping", AuthMiddleware(cfg), ActivityMiddleware(activity), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	if got := do(r, "Bearer "+tokenFor(t, 9, model.RoleUser, time.Hour)); got != http.StatusNoContent {
		t.Fatalf("got %d", got)
	}
	select {
	case id := <-activity.seen:
		if id != 9 {
			t.Fatalf("expected user 9, got %d", id)
		}
	case <-time.After(time.Second):
		t.Fatalf("last seen was not updated")
	}
}
