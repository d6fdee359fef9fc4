package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"super-qa/internal/domain"
)

// ProjectRepository define el contrato de persistencia para proyectos.
type ProjectRepository interface {
	// Create inserta el proyecto y su miembro inicial en una sola transacción.
	Create(ctx context.Context, project domain.Project, owner domain.ProjectMember) error
	GetByID(ctx context.Context, id string) (domain.Project, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Project, error)
	GetMember(ctx context.Context, projectID, userID string) (domain.ProjectMember, error)
}

// PgProjectRepository implementa ProjectRepository usando pgxpool.
type PgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

const projectColumns = `
	id, name, description, status, default_environment,
	COALESCE(jira_token, ''), COALESCE(mattermost_token, ''), COALESCE(sentry_token, ''),
	email_notifications, slack_notifications, mattermost_notifications,
	created_by, created_at
`

func (r *PgProjectRepository) Create(ctx context.Context, project domain.Project, owner domain.ProjectMember) error {
	const projectQuery = `
		INSERT INTO projects (
			id, name, description, status, default_environment,
			jira_token, mattermost_token, sentry_token,
			email_notifications, slack_notifications, mattermost_notifications,
			created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, $13)
	`
	const memberQuery = `
		INSERT INTO project_members (
			id, project_id, user_id, role, status,
			can_create_tests, can_execute_tests, can_manage_members, can_view_reports,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, projectQuery,
		project.ID,
		project.Name,
		project.Description,
		project.Status,
		project.DefaultEnvironment,
		project.JiraToken,
		project.MattermostToken,
		project.SentryToken,
		project.EmailNotifications,
		project.SlackNotifications,
		project.MattermostNotifications,
		project.CreatedBy,
		project.CreatedAt,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, memberQuery,
		owner.ID,
		owner.ProjectID,
		owner.UserID,
		owner.Role,
		owner.Status,
		owner.Permissions.CanCreateTests,
		owner.Permissions.CanExecuteTests,
		owner.Permissions.CanManageMembers,
		owner.Permissions.CanViewReports,
		owner.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	var p domain.Project
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Status,
		&p.DefaultEnvironment,
		&p.JiraToken,
		&p.MattermostToken,
		&p.SentryToken,
		&p.EmailNotifications,
		&p.SlackNotifications,
		&p.MattermostNotifications,
		&p.CreatedBy,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (r *PgProjectRepository) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	const query = `
		SELECT
			p.id, p.name, p.description, p.status, p.default_environment,
			COALESCE(p.jira_token, ''), COALESCE(p.mattermost_token, ''), COALESCE(p.sentry_token, ''),
			p.email_notifications, p.slack_notifications, p.mattermost_notifications,
			p.created_by, p.created_at
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Status,
			&p.DefaultEnvironment,
			&p.JiraToken,
			&p.MattermostToken,
			&p.SentryToken,
			&p.EmailNotifications,
			&p.SlackNotifications,
			&p.MattermostNotifications,
			&p.CreatedBy,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *PgProjectRepository) GetMember(ctx context.Context, projectID, userID string) (domain.ProjectMember, error) {
	const query = `
		SELECT id, project_id, user_id, role, status,
			can_create_tests, can_execute_tests, can_manage_members, can_view_reports,
			created_at
		FROM project_members
		WHERE project_id = $1 AND user_id = $2
	`
	var m domain.ProjectMember
	err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ID,
		&m.ProjectID,
		&m.UserID,
		&m.Role,
		&m.Status,
		&m.Permissions.CanCreateTests,
		&m.Permissions.CanExecuteTests,
		&m.Permissions.CanManageMembers,
		&m.Permissions.CanViewReports,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.ProjectMember{}, err
	}
	return m, nil
}
