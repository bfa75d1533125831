package models

import "time"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTrainer Role = "TRAINER"
	RoleClient  Role = "CLIENT"
)

// Client is the user record of a trainer's client inside a workspace.
type Client struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspaceId" db:"workspace_id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone,omitempty" db:"phone"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
