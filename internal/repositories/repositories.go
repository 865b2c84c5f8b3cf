package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the per-entity repositories so a transaction can be
// opened once and every participant rebound to it.
type Repositories struct {
	Tasks       *TaskRepository
	Projects    *ProjectRepository
	Attachments *AttachmentRepository
	References  *ReferenceRepository

	db *gorm.DB
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Tasks:       NewTaskRepository(db),
		Projects:    NewProjectRepository(db),
		Attachments: NewAttachmentRepository(db),
		References:  NewReferenceRepository(db),
		db:          db,
	}
}

// Transaction runs fn inside a single database transaction. Every
// repository reachable from the argument operates on that transaction; an
// error from fn rolls everything back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
