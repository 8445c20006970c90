package domain

import "time"

const (
	UserRoleAdmin  = "admin"
	UserRoleMember = "member"
)

type User struct {
	ID          string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Status      string    `json:"status,omitempty"`
	JobTitle    string    `json:"job_title,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastActive  time.Time `json:"last_active"`
}
