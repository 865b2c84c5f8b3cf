package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "taskhub.com/taskhub/internal/errors"
	model "taskhub.com/taskhub/internal/models"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) Create(ctx context.Context, attachment *model.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	var attachment model.Attachment
	err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Attachment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrAttachmentNotFound
	}
	return nil
}

// ReferencedPublicPaths returns every public path recorded on attachment
// rows, originals and thumbnails alike. The sweeper treats anything in blob
// storage outside this set as an orphan.
func (r *AttachmentRepository) ReferencedPublicPaths(ctx context.Context) (map[string]bool, error) {
	var rows []model.Attachment
	err := r.db.WithContext(ctx).Select("path", "thumb").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	paths := make(map[string]bool, len(rows)*2)
	for _, row := range rows {
		paths[row.Path] = true
		if row.Thumb != nil {
			paths[*row.Thumb] = true
		}
	}
	return paths, nil
}
