package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"super-qa/internal/domain"
	"super-qa/internal/service"
)

func newMiddlewareFixture() (*gin.Engine, *service.SessionService, *mockUserRepo) {
	gin.SetMode(gin.TestMode)
	users := newMockUserRepo(nil)
	sessions := service.NewSessionService("test-secret", false, users, zap.NewNop())

	r := gin.New()
	protected := r.Group("/", SessionAuthMiddleware(sessions))
	protected.GET("projects", func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r, sessions, users
}

func getProjects(r http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func hasClearedSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName && c.Value == "" && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

// Los tres modos de fallo (sin cookie, firma inválida, usuario borrado)
// terminan igual: redirect a /signin y nunca acceso a la ruta.
func TestMiddlewareRejectsAllInvalidSessions(t *testing.T) {
	r, sessions, _ := newMiddlewareFixture()

	t.Run("no cookie", func(t *testing.T) {
		rec := getProjects(r, nil)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if rec.Header().Get("Location") != "/signin?redirectTo=%2Fprojects" {
			t.Fatalf("expected redirect preserving path, got %q", rec.Header().Get("Location"))
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		forged := foreignSessionCookie(t)
		rec := getProjects(r, forged)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if rec.Header().Get("Location") != "/signin?redirectTo=%2Fprojects" {
			t.Fatalf("expected redirect preserving path, got %q", rec.Header().Get("Location"))
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		cookie, err := sessions.Issue("ghost")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		rec := getProjects(r, cookie)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if rec.Header().Get("Location") != "/signin" {
			t.Fatalf("expected redirect to /signin, got %q", rec.Header().Get("Location"))
		}
		if !hasClearedSessionCookie(rec) {
			t.Fatalf("expected stale cookie to be cleared")
		}
	})
}

// foreignSessionCookie emite una cookie firmada con otro secreto.
func foreignSessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	other := service.NewSessionService("another-secret", false, newMockUserRepo(nil), zap.NewNop())
	cookie, err := other.Issue("u1")
	if err != nil {
		t.Fatalf("issue foreign cookie: %v", err)
	}
	return cookie
}

func TestMiddlewarePassesAuthenticatedRequests(t *testing.T) {
	r, sessions, users := newMiddlewareFixture()
	users.add(domain.User{ID: "u1", Email: "ada@example.com"})

	cookie, err := sessions.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec := getProjects(r, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != `{"user_id":"u1"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}
