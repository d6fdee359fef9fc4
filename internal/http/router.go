package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"super-qa/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	sessions *service.SessionService,
	authH *AuthHandler,
	projectH *ProjectHandler,
	pool *pgxpool.Pool,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/signup", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/signup", authH.Signup)
	r.GET("/verify", authH.VerifyPage)
	r.POST("/verify", authH.Verify)
	r.GET("/signin", authH.SigninPage)
	r.POST("/signin", authH.Signin)
	r.POST("/logout", authH.Logout)

	// Todo lo demás requiere sesión válida.
	protected := r.Group("/", SessionAuthMiddleware(sessions))
	protected.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	protected.GET("projects", projectH.ListProjects)
	protected.POST("projects", projectH.CreateProject)
	protected.GET("projects/:id", projectH.GetProject)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
