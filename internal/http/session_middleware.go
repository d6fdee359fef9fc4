package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"super-qa/internal/service"
)

const userIDKey = "auth_user_id"

// SessionAuthMiddleware requiere una sesión válida con usuario existente.
// Sin ella redirige a /signin preservando la ruta pedida, y limpia la
// cookie si quedó colgante. La decisión viene como resultado explícito de
// Resolve, no como panic ni abort implícito.
func SessionAuthMiddleware(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirectTo := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			redirectTo += "?" + raw
		}

		outcome := sessions.Resolve(c.Request.Context(), c.Request, redirectTo)
		if !outcome.Authenticated() {
			if outcome.ClearCookie {
				http.SetCookie(c.Writer, sessions.Destroy())
			}
			c.Redirect(http.StatusSeeOther, outcome.RedirectTo)
			c.Abort()
			return
		}

		c.Set(userIDKey, outcome.UserID)
		c.Next()
	}
}

// CurrentUserID obtiene el id del usuario autenticado desde el contexto.
func CurrentUserID(c *gin.Context) (string, bool) {
	val, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	userID, ok := val.(string)
	return userID, ok && userID != ""
}
