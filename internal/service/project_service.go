package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"super-qa/internal/domain"
	"super-qa/internal/repository"
)

var (
	ErrInvalidProject  = errors.New("invalid project data")
	ErrProjectNotFound = errors.New("project not found")
)

// ProjectService coordina creación y acceso a proyectos.
type ProjectService struct {
	logger   *zap.Logger
	projects repository.ProjectRepository
}

func NewProjectService(logger *zap.Logger, projects repository.ProjectRepository) *ProjectService {
	return &ProjectService{logger: logger, projects: projects}
}

type CreateProjectInput struct {
	Name                    string
	Description             string
	DefaultEnvironment      string
	JiraToken               string
	MattermostToken         string
	SentryToken             string
	EmailNotifications      bool
	SlackNotifications      bool
	MattermostNotifications bool
}

// CreateProject crea el proyecto junto con exactamente un miembro owner
// con todos los permisos, en una sola transacción.
func (s *ProjectService) CreateProject(ctx context.Context, userID string, input CreateProjectInput) (domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	environment := strings.TrimSpace(input.DefaultEnvironment)
	if name == "" || description == "" || environment == "" {
		return domain.Project{}, ErrInvalidProject
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:                      uuid.NewString(),
		Name:                    name,
		Description:             description,
		Status:                  domain.ProjectStatusActive,
		DefaultEnvironment:      environment,
		JiraToken:               strings.TrimSpace(input.JiraToken),
		MattermostToken:         strings.TrimSpace(input.MattermostToken),
		SentryToken:             strings.TrimSpace(input.SentryToken),
		EmailNotifications:      input.EmailNotifications,
		SlackNotifications:      input.SlackNotifications,
		MattermostNotifications: input.MattermostNotifications,
		CreatedBy:               userID,
		CreatedAt:               now,
	}
	owner := domain.ProjectMember{
		ID:          uuid.NewString(),
		ProjectID:   project.ID,
		UserID:      userID,
		Role:        domain.MemberRoleOwner,
		Status:      domain.MemberStatusActive,
		Permissions: domain.AllPermissions(),
		CreatedAt:   now,
	}

	if err := s.projects.Create(ctx, project, owner); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

// ListProjects devuelve los proyectos donde el usuario es miembro.
func (s *ProjectService) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// GetProject devuelve un proyecto solo si el usuario es miembro.
func (s *ProjectService) GetProject(ctx context.Context, userID, projectID string) (domain.Project, error) {
	if _, err := s.projects.GetMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	return project, nil
}
