package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"super-qa/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticación.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	sessions *service.SessionService
}

// NewAuthHandler crea una instancia de AuthHandler con sus dependencias.
func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		sessions: sessions,
	}
}

// Signup maneja POST /signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name            string `form:"name" json:"name" binding:"required"`
		Email           string `form:"email" json:"email" binding:"required,email"`
		Password        string `form:"password" json:"password" binding:"required"`
		ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" binding:"required"`
	}
	if fields, ok := bindRequest(c, &req); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data", "fields": fields})
		return
	}

	tempUser, err := h.authServ.Signup(c.Request.Context(), service.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		case errors.Is(err, service.ErrPasswordMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		case errors.Is(err, service.ErrSignupConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Failed to process sign-up"})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many sign-up attempts"})
		case errors.Is(err, service.ErrEmailSendFailure):
			// El TempUser quedó creado; solo falló el despacho del correo.
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to send verification email"})
		default:
			h.logger.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process sign-up"})
		}
		return
	}

	c.Redirect(http.StatusSeeOther, service.VerificationPath(tempUser.Email, tempUser.ID))
}

// VerifyPage maneja GET /verify: sin email e id no hay nada que verificar.
func (h *AuthHandler) VerifyPage(c *gin.Context) {
	email := c.Query("email")
	id := c.Query("id")
	if email == "" || id == "" {
		c.Redirect(http.StatusSeeOther, "/signup")
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email, "id": id})
}

// Verify maneja POST /verify.
func (h *AuthHandler) Verify(c *gin.Context) {
	var req struct {
		Email string `form:"email" json:"email" binding:"required"`
		ID    string `form:"id" json:"id" binding:"required"`
		OTP   string `form:"otp" json:"otp" binding:"required"`
	}
	if fields, ok := bindRequest(c, &req); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification data", "fields": fields})
		return
	}

	user, err := h.authServ.Verify(c.Request.Context(), req.ID, req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVerification):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification link"})
		case errors.Is(err, service.ErrOTPInvalid), errors.Is(err, service.ErrOTPExpired):
			// Código incorrecto y código vencido reciben la misma copy.
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		default:
			h.logger.Error("verify failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		}
		return
	}

	cookie, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}
	http.SetCookie(c.Writer, cookie)
	c.Redirect(http.StatusSeeOther, "/")
}

// SigninPage maneja GET /signin: un caller ya autenticado va a home.
func (h *AuthHandler) SigninPage(c *gin.Context) {
	if userID := h.sessions.Read(c.Request); userID != "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Status(http.StatusOK)
}

// Signin maneja POST /signin.
func (h *AuthHandler) Signin(c *gin.Context) {
	var req struct {
		Email    string `form:"email" json:"email" binding:"required,email"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if fields, ok := bindRequest(c, &req); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data", "fields": fields})
		return
	}

	user, err := h.authServ.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.logger.Error("signin failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	cookie, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.logger.Error("session issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}
	http.SetCookie(c.Writer, cookie)
	c.Redirect(http.StatusSeeOther, safeRedirect(c.Query("redirectTo")))
}

// Logout maneja POST /logout. Idempotente: limpia la cookie hubiera o no sesión.
func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, h.sessions.Destroy())
	c.Redirect(http.StatusSeeOther, "/signin")
}

// safeRedirect solo acepta rutas relativas al propio sitio.
func safeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	return target
}
