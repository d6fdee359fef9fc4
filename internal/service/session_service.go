package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"super-qa/internal/repository"
)

// SessionCookieName es el nombre de la cookie de sesión.
const SessionCookieName = "superqa_session"

const (
	sessionTTL    = 30 * 24 * time.Hour
	sessionIssuer = "super-qa"
	signinPath    = "/signin"
)

var ErrSessionInvalid = errors.New("session invalid")

// SessionService emite y valida cookies de sesión firmadas. No hay estado
// de sesión del lado del servidor: la validez es función de la firma, el
// expiry y que el usuario referenciado siga existiendo.
type SessionService struct {
	secret []byte
	secure bool
	users  repository.UserRepository
	logger *zap.Logger
}

func NewSessionService(secret string, secure bool, users repository.UserRepository, logger *zap.Logger) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		secure: secure,
		users:  users,
		logger: logger,
	}
}

// SessionOutcome es el resultado explícito de resolver una sesión: o hay
// un usuario autenticado, o hay que redirigir (y quizás limpiar la cookie).
// Nunca ambas cosas.
type SessionOutcome struct {
	UserID      string
	RedirectTo  string
	ClearCookie bool
}

// Authenticated indica si la resolución terminó en un usuario válido.
func (o SessionOutcome) Authenticated() bool {
	return o.UserID != ""
}

// Issue firma una sesión para el usuario y devuelve la cookie a setear.
func (s *SessionService) Issue(userID string) (*http.Cookie, error) {
	if len(s.secret) == 0 || strings.TrimSpace(userID) == "" {
		return nil, ErrSessionInvalid
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	}, nil
}

// Read extrae el userId de la cookie de la request. Devuelve "" si la
// cookie falta, está malformada o la firma no verifica; nunca falla.
func (s *SessionService) Read(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if _, err := parser.ParseWithClaims(cookie.Value, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	}); err != nil {
		return ""
	}
	if claims.Issuer != sessionIssuer || strings.TrimSpace(claims.Subject) == "" {
		return ""
	}
	return claims.Subject
}

// Resolve requiere una sesión válida cuyo usuario siga existiendo.
// Sin sesión: redirect a /signin preservando la ruta pedida en redirectTo.
// Con sesión colgante o con fallo de lookup: redirect y limpieza de cookie;
// ante estado ambiguo nunca se deja la request autenticada.
func (s *SessionService) Resolve(ctx context.Context, r *http.Request, redirectTo string) SessionOutcome {
	if redirectTo == "" {
		redirectTo = r.URL.Path
	}

	userID := s.Read(r)
	if userID == "" {
		params := url.Values{"redirectTo": {redirectTo}}
		return SessionOutcome{RedirectTo: signinPath + "?" + params.Encode()}
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if s.logger != nil {
			s.logger.Warn("session user lookup failed", zap.Error(err), zap.String("user_id", userID))
		}
		return SessionOutcome{RedirectTo: signinPath, ClearCookie: true}
	}
	return SessionOutcome{UserID: userID}
}

// Destroy devuelve la instrucción de limpieza de cookie. Idempotente:
// no importa si había sesión o no.
func (s *SessionService) Destroy() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	}
}
