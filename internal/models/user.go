package model

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleMember  UserRole = "member"
	RoleClient  UserRole = "client"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:member" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanCompleteTasks gates the completion toggle.
func (u *User) CanCompleteTasks() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// EligibleAssignee reports whether the user may be assigned tasks or
// subscribed to them. Clients only observe.
func (u *User) EligibleAssignee() bool {
	return u.Role != RoleClient
}
