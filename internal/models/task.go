package model

import "time"

// Task is the aggregate root of this service. Number is a per-project
// ordinal assigned at creation time; the composite unique index backs the
// retry-on-conflict assignment in the task service.
type Task struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	ProjectID         string     `gorm:"size:36;not null;index;uniqueIndex:idx_tasks_project_number" json:"project_id"`
	GroupID           string     `gorm:"size:36;not null" json:"group_id"`
	Number            int64      `gorm:"not null;uniqueIndex:idx_tasks_project_number" json:"number"`
	CreatedByUserID   string     `gorm:"size:36;not null" json:"created_by_user_id"`
	AssignedToUserID  *string    `gorm:"size:36" json:"assigned_to_user_id"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
	Name              string     `gorm:"not null" json:"name"`
	Description       string     `json:"description"`
	DueOn             *time.Time `json:"due_on,omitempty"`
	Estimation        *float64   `json:"estimation,omitempty"`
	HiddenFromClients bool       `gorm:"not null;default:false" json:"hidden_from_clients"`
	Billable          bool       `gorm:"not null;default:true" json:"billable"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Project         Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Group           TaskGroup    `gorm:"foreignKey:GroupID" json:"task_group,omitempty"`
	Labels          []Label      `gorm:"many2many:task_labels" json:"labels"`
	SubscribedUsers []User       `gorm:"many2many:task_subscribers" json:"subscribed_users"`
	Attachments     []Attachment `gorm:"foreignKey:TaskID" json:"attachments"`
}

func (t *Task) Completed() bool {
	return t.CompletedAt != nil
}
