package model

import "time"

type Label struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `gorm:"not null" json:"color"`
	CreatedAt time.Time `json:"created_at"`

	Tasks []Task `gorm:"many2many:task_labels" json:"-"`
}
