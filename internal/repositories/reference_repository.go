package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "taskhub.com/taskhub/internal/errors"
	model "taskhub.com/taskhub/internal/models"
)

// ReferenceRepository serves the read-only reference entities the edit view
// needs: task groups, labels, eligible assignees, and user lookup for the
// identity boundary.
type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) FindUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// VerifyAssignee checks that the user exists and may be assigned tasks.
// Clients observe projects but never carry work, so a client id is rejected
// the same as an unknown one.
func (r *ReferenceRepository) VerifyAssignee(ctx context.Context, userID string) error {
	user, err := r.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrUnknownAssignee
		}
		return err
	}
	if !user.EligibleAssignee() {
		return apperrors.ErrUnknownAssignee
	}
	return nil
}

// VerifyGroup checks that the group exists and belongs to the project.
func (r *ReferenceRepository) VerifyGroup(ctx context.Context, groupID, projectID string) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.TaskGroup{}).
		Where("id = ? AND project_id = ?", groupID, projectID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrUnknownGroup
	}
	return nil
}

func (r *ReferenceRepository) ListGroups(ctx context.Context, projectID string) ([]model.TaskGroup, error) {
	var groups []model.TaskGroup
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("`order` asc").
		Find(&groups).Error
	return groups, err
}

func (r *ReferenceRepository) ListLabels(ctx context.Context) ([]model.Label, error) {
	var labels []model.Label
	err := r.db.WithContext(ctx).Order("name asc").Find(&labels).Error
	return labels, err
}

// ListAssignees returns the users eligible for assignment and subscription.
func (r *ReferenceRepository) ListAssignees(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("role <> ?", model.RoleClient).
		Order("name asc").
		Find(&users).Error
	return users, err
}
