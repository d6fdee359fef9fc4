package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"super-qa/internal/domain"
	"super-qa/internal/service"
)

type mockTempUserRepo struct {
	byID map[string]domain.TempUser
}

func newMockTempUserRepo() *mockTempUserRepo {
	return &mockTempUserRepo{byID: make(map[string]domain.TempUser)}
}

func (m *mockTempUserRepo) Create(_ context.Context, tempUser domain.TempUser) error {
	m.byID[tempUser.ID] = tempUser
	return nil
}

func (m *mockTempUserRepo) GetByID(_ context.Context, id string) (domain.TempUser, error) {
	tempUser, ok := m.byID[id]
	if !ok {
		return domain.TempUser{}, pgx.ErrNoRows
	}
	return tempUser, nil
}

func (m *mockTempUserRepo) DeleteByEmail(_ context.Context, email string) error {
	for id, tempUser := range m.byID {
		if tempUser.Email == email {
			delete(m.byID, id)
		}
	}
	return nil
}

type mockUserRepo struct {
	byID    map[string]domain.User
	byEmail map[string]string
	temp    *mockTempUserRepo
}

func newMockUserRepo(temp *mockTempUserRepo) *mockUserRepo {
	return &mockUserRepo{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
		temp:    temp,
	}
}

func (m *mockUserRepo) add(user domain.User) {
	m.byID[user.ID] = user
	m.byEmail[user.Email] = user.ID
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.byID[id], nil
}

func (m *mockUserRepo) PromoteTempUser(_ context.Context, user domain.User, tempUserID string) error {
	m.add(user)
	if m.temp != nil {
		delete(m.temp.byID, tempUserID)
	}
	return nil
}

type mockProjectRepo struct {
	projects map[string]domain.Project
	members  map[string]domain.ProjectMember
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{
		projects: make(map[string]domain.Project),
		members:  make(map[string]domain.ProjectMember),
	}
}

func (m *mockProjectRepo) Create(_ context.Context, project domain.Project, owner domain.ProjectMember) error {
	m.projects[project.ID] = project
	m.members[owner.ProjectID+"|"+owner.UserID] = owner
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (domain.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return domain.Project{}, pgx.ErrNoRows
	}
	return project, nil
}

func (m *mockProjectRepo) ListByUser(_ context.Context, userID string) ([]domain.Project, error) {
	var result []domain.Project
	for _, member := range m.members {
		if member.UserID == userID {
			result = append(result, m.projects[member.ProjectID])
		}
	}
	return result, nil
}

func (m *mockProjectRepo) GetMember(_ context.Context, projectID, userID string) (domain.ProjectMember, error) {
	member, ok := m.members[projectID+"|"+userID]
	if !ok {
		return domain.ProjectMember{}, pgx.ErrNoRows
	}
	return member, nil
}

type mockEmailSender struct {
	lastTo   string
	lastCode string
	lastLink string
	err      error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail, code, link string) error {
	m.lastTo = toEmail
	m.lastCode = code
	m.lastLink = link
	return m.err
}

type fixture struct {
	router   *gin.Engine
	users    *mockUserRepo
	temp     *mockTempUserRepo
	sender   *mockEmailSender
	sessions *service.SessionService
	hasher   *service.PasswordHasher
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	temp := newMockTempUserRepo()
	users := newMockUserRepo(temp)
	sender := &mockEmailSender{}
	hasher := service.NewPasswordHasher(bcrypt.MinCost)

	sessions := service.NewSessionService("test-secret", false, users, logger)
	authSvc := service.NewAuthService(logger, users, temp, hasher, sender, service.NewOTPRateLimiter(time.Hour, 100), "http://localhost:8080")
	projectSvc := service.NewProjectService(logger, newMockProjectRepo())

	authH := NewAuthHandler(logger, authSvc, sessions)
	projectH := NewProjectHandler(logger, projectSvc)
	router := NewRouter(logger, sessions, authH, projectH, nil)

	return &fixture{
		router:   router,
		users:    users,
		temp:     temp,
		sender:   sender,
		sessions: sessions,
		hasher:   hasher,
	}
}

func postForm(r http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func signupForm() url.Values {
	return url.Values{
		"name":            {"Ada"},
		"email":           {"ada@example.com"},
		"password":        {"Hunter!2"},
		"confirmPassword": {"Hunter!2"},
	}
}

func TestSignupRedirectsToVerify(t *testing.T) {
	f := newFixture()

	rec := postForm(f.router, "/signup", signupForm())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/verify?") || !strings.Contains(location, "email=ada%40example.com") {
		t.Fatalf("expected redirect to /verify with email, got %q", location)
	}
	if f.sender.lastTo != "ada@example.com" || f.sender.lastCode == "" {
		t.Fatalf("expected verification email to be sent")
	}
}

func TestSignupExistingAccountConflict(t *testing.T) {
	f := newFixture()
	f.users.add(domain.User{ID: "u1", Email: "ada@example.com"})

	rec := postForm(f.router, "/signup", signupForm())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User already exists") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSignupReportsAllInvalidFields(t *testing.T) {
	f := newFixture()

	rec := postForm(f.router, "/signup", url.Values{"name": {"Ada"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, field := range []string{"email", "password", "confirmpassword"} {
		if !strings.Contains(body, field) {
			t.Fatalf("expected field %q in validation response, got %s", field, body)
		}
	}
}

func TestVerifyIssuesSessionAndRedirectsHome(t *testing.T) {
	f := newFixture()

	rec := postForm(f.router, "/signup", signupForm())
	location := rec.Header().Get("Location")
	parsed, err := url.Parse(location)
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	tempID := parsed.Query().Get("id")

	rec = postForm(f.router, "/verify", url.Values{
		"email": {"ada@example.com"},
		"id":    {tempID},
		"otp":   {f.sender.lastCode},
	})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatalf("expected session cookie to be set")
	}

	// La sesión emitida da acceso a rutas protegidas.
	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.AddCookie(session)
	protected := httptest.NewRecorder()
	f.router.ServeHTTP(protected, req)
	if protected.Code != http.StatusOK {
		t.Fatalf("expected 200 on protected route, got %d", protected.Code)
	}

	// El link ya consumido no verifica de nuevo.
	rec = postForm(f.router, "/verify", url.Values{
		"email": {"ada@example.com"},
		"id":    {tempID},
		"otp":   {f.sender.lastCode},
	})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid verification link") {
		t.Fatalf("expected invalid link error, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestVerifyWrongCodeGenericError(t *testing.T) {
	f := newFixture()

	rec := postForm(f.router, "/signup", signupForm())
	parsed, _ := url.Parse(rec.Header().Get("Location"))
	tempID := parsed.Query().Get("id")

	wrong := "0000"
	if f.sender.lastCode == wrong {
		wrong = "0001"
	}
	rec = postForm(f.router, "/verify", url.Values{
		"email": {"ada@example.com"},
		"id":    {tempID},
		"otp":   {wrong},
	})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid verification code") {
		t.Fatalf("expected generic code error, got %d %s", rec.Code, rec.Body.String())
	}
	if len(f.users.byID) != 0 {
		t.Fatalf("expected no user created on wrong code")
	}
}

func TestVerifyPageWithoutParamsRedirectsToSignup(t *testing.T) {
	f := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/verify", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/signup" {
		t.Fatalf("expected redirect to /signup, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSigninEnumerationResistantResponses(t *testing.T) {
	f := newFixture()
	hash, err := f.hasher.Hash("Correct!1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	f.users.add(domain.User{ID: "u1", Email: "ada@example.com", PasswordHash: hash})

	wrongPass := postForm(f.router, "/signin", url.Values{
		"email":    {"ada@example.com"},
		"password": {"Wrong!1"},
	})
	unknown := postForm(f.router, "/signin", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"Correct!1"},
	})
	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both, got %d and %d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("expected identical responses, got %s vs %s", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestSigninHonorsSafeRedirectTo(t *testing.T) {
	f := newFixture()
	hash, _ := f.hasher.Hash("Correct!1")
	f.users.add(domain.User{ID: "u1", Email: "ada@example.com", PasswordHash: hash})

	rec := postForm(f.router, "/signin?redirectTo=%2Fprojects", url.Values{
		"email":    {"ada@example.com"},
		"password": {"Correct!1"},
	})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/projects" {
		t.Fatalf("expected redirect to /projects, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = postForm(f.router, "/signin?redirectTo=https%3A%2F%2Fevil.example.com", url.Values{
		"email":    {"ada@example.com"},
		"password": {"Correct!1"},
	})
	if rec.Header().Get("Location") != "/" {
		t.Fatalf("expected external redirect to be ignored, got %q", rec.Header().Get("Location"))
	}
}

func TestLogoutAlwaysClearsCookie(t *testing.T) {
	f := newFixture()

	// Sin sesión previa sigue siendo un logout válido.
	rec := postForm(f.router, "/logout", url.Values{})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/signin" {
		t.Fatalf("expected redirect to /signin, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.SessionCookieName && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatalf("expected clearing instruction for the session cookie")
	}
}
