package domain

import "time"

// Roles y estados de membresía.
const (
	ProjectStatusActive = "active"
	MemberRoleOwner     = "owner"
	MemberStatusActive  = "active"
)

// Project es un proyecto de QA con sus integraciones opcionales.
type Project struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	Description             string    `json:"description"`
	Status                  string    `json:"status"`
	DefaultEnvironment      string    `json:"default_environment"`
	JiraToken               string    `json:"-"`
	MattermostToken         string    `json:"-"`
	SentryToken             string    `json:"-"`
	EmailNotifications      bool      `json:"email_notifications"`
	SlackNotifications      bool      `json:"slack_notifications"`
	MattermostNotifications bool      `json:"mattermost_notifications"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`
}

// MemberPermissions agrupa los permisos booleanos de un miembro.
type MemberPermissions struct {
	CanCreateTests   bool `json:"can_create_tests"`
	CanExecuteTests  bool `json:"can_execute_tests"`
	CanManageMembers bool `json:"can_manage_members"`
	CanViewReports   bool `json:"can_view_reports"`
}

// AllPermissions devuelve el set completo de permisos concedidos.
func AllPermissions() MemberPermissions {
	return MemberPermissions{
		CanCreateTests:   true,
		CanExecuteTests:  true,
		CanManageMembers: true,
		CanViewReports:   true,
	}
}

// ProjectMember vincula un usuario a un proyecto con rol y permisos.
type ProjectMember struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"project_id"`
	UserID      string            `json:"user_id"`
	Role        string            `json:"role"`
	Status      string            `json:"status"`
	Permissions MemberPermissions `json:"permissions"`
	CreatedAt   time.Time         `json:"created_at"`
}
