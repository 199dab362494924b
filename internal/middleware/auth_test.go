package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"attendance_backend/internal/models"
)

func mintToken(t *testing.T, secret, userID string, role models.UserRole) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func newProtectedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/", AuthRequired())
	if len(roles) > 0 {
		grp.Use(RequireRoles(roles...))
	}
	grp.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	return r
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newProtectedRouter()

	tok := mintToken(t, "test-secret", "u-1", models.RoleMember)
	w := serve(r, tok)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", w.Code, w.Body.String())
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newProtectedRouter()

	if w := serve(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthRequiredRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newProtectedRouter()

	tok := mintToken(t, "another-secret", "u-1", models.RoleMember)
	if w := serve(r, tok); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := newProtectedRouter(models.RoleAdmin, models.RoleManager)

	admin := mintToken(t, "test-secret", "u-1", models.RoleAdmin)
	if w := serve(r, admin); w.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", w.Code)
	}

	member := mintToken(t, "test-secret", "u-2", models.RoleMember)
	if w := serve(r, member); w.Code != http.StatusForbidden {
		t.Errorf("member: status = %d, want 403", w.Code)
	}
}
