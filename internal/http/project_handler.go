package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"super-qa/internal/service"
)

// ProjectHandler mantiene dependencias para los endpoints de proyectos.
type ProjectHandler struct {
	logger      *zap.Logger
	projectServ *service.ProjectService
}

func NewProjectHandler(logger *zap.Logger, projectServ *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		logger:      logger,
		projectServ: projectServ,
	}
}

// CreateProject maneja POST /projects.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var req struct {
		Name                    string `form:"name" json:"name" binding:"required"`
		Description             string `form:"description" json:"description" binding:"required"`
		DefaultEnvironment      string `form:"defaultEnvironment" json:"defaultEnvironment" binding:"required"`
		JiraToken               string `form:"jiraToken" json:"jiraToken"`
		MattermostToken         string `form:"mattermostToken" json:"mattermostToken"`
		SentryToken             string `form:"sentryToken" json:"sentryToken"`
		EmailNotifications      bool   `form:"emailNotifications" json:"emailNotifications"`
		SlackNotifications      bool   `form:"slackNotifications" json:"slackNotifications"`
		MattermostNotifications bool   `form:"mattermostNotifications" json:"mattermostNotifications"`
	}
	if fields, ok := bindRequest(c, &req); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all required fields", "fields": fields})
		return
	}

	project, err := h.projectServ.CreateProject(c.Request.Context(), userID, service.CreateProjectInput{
		Name:                    req.Name,
		Description:             req.Description,
		DefaultEnvironment:      req.DefaultEnvironment,
		JiraToken:               req.JiraToken,
		MattermostToken:         req.MattermostToken,
		SentryToken:             req.SentryToken,
		EmailNotifications:      req.EmailNotifications,
		SlackNotifications:      req.SlackNotifications,
		MattermostNotifications: req.MattermostNotifications,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidProject) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all required fields"})
			return
		}
		h.logger.Error("create project failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "projectId": project.ID})
}

// ListProjects maneja GET /projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	projects, err := h.projectServ.ListProjects(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list projects failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// GetProject maneja GET /projects/:id.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	project, err := h.projectServ.GetProject(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		h.logger.Error("get project failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": project})
}
