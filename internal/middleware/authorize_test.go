package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/models"
	"eventdesk/internal/security"
)

func roleRouter(t *testing.T, user *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin",
		func(c *gin.Context) {
			if user != nil {
				c.Set(ctxUserKey, *user)
			}
			c.Next()
		},
		RequireRoles(models.UserRoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestRequireRoles(t *testing.T) {
	for _, tc := range []struct {
		name string
		user *models.User
		want int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"wrong role", &models.User{ID: "u1", Role: models.UserRoleUser}, http.StatusForbidden},
		{"admin", &models.User{ID: "u2", Role: models.UserRoleAdmin}, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := roleRouter(t, tc.user)
			req, _ := http.NewRequest("GET", "/admin", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestUserFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := UserFrom(c); ok {
		t.Error("UserFrom should miss on an empty context")
	}

	c.Set(ctxUserKey, models.User{ID: "u1", Role: models.UserRoleUser})
	user, ok := UserFrom(c)
	if !ok || user.ID != "u1" {
		t.Errorf("UserFrom = %+v, %v", user, ok)
	}
}

func TestClaimsFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if _, ok := ClaimsFrom(c); ok {
		t.Error("ClaimsFrom should miss on an empty context")
	}

	c.Set(ctxClaimsKey, security.AccessClaims{UserID: "u1", SessionID: "s1"})
	claims, ok := ClaimsFrom(c)
	if !ok || claims.SessionID != "s1" {
		t.Errorf("ClaimsFrom = %+v, %v", claims, ok)
	}
}
