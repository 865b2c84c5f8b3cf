package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "taskhub.com/taskhub/internal/errors"
	model "taskhub.com/taskhub/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CountForProject returns the number of tasks the project currently holds.
// The creation flow reads this inside its transaction to derive the next
// task number.
func (r *TaskRepository) CountForProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

// ErrDuplicateNumber marks the unique-index violation on (project_id, number)
// raised by the task insert itself. Only Create wraps it: a duplicated-key
// error from any other statement in the same transaction is not a number
// conflict and must not trigger the creation retry.
var ErrDuplicateNumber = errors.New("task number already taken")

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: project %s number %d", ErrDuplicateNumber, task.ProjectID, task.Number)
	}
	return err
}

// IsDuplicateNumber reports whether err comes from the task insert losing the
// race for its number slot.
func IsDuplicateNumber(err error) bool {
	return errors.Is(err, ErrDuplicateNumber)
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Group").
		Preload("Labels").
		Preload("SubscribedUsers").
		Preload("Attachments").
		First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListForProject(ctx context.Context, projectID string) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Group").
		Preload("Labels").
		Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&tasks).Error
	return tasks, err
}

// RecentlyAssigned feeds the dashboard card: open tasks assigned to the
// user, newest assignment first.
func (r *TaskRepository) RecentlyAssigned(ctx context.Context, userID string, limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("Project").
		Preload("Group").
		Where("assigned_to_user_id = ? AND completed_at IS NULL AND assigned_at IS NOT NULL", userID).
		Order("assigned_at desc").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

// AttachSubscribers inserts task_subscribers pivot rows. An empty list is a
// no-op; an unknown user id is an error so the surrounding transaction
// rolls back.
func (r *TaskRepository) AttachSubscribers(ctx context.Context, task *model.Task, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	if err := r.verifyIDs(ctx, &model.User{}, userIDs, apperrors.ErrUnknownSubscriber); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(task).
		Association("SubscribedUsers").
		Append(usersByID(userIDs))
}

// AttachLabels inserts task_labels pivot rows, same contract as
// AttachSubscribers.
func (r *TaskRepository) AttachLabels(ctx context.Context, task *model.Task, labelIDs []string) error {
	if len(labelIDs) == 0 {
		return nil
	}

	if err := r.verifyIDs(ctx, &model.Label{}, labelIDs, apperrors.ErrUnknownLabel); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(task).
		Association("Labels").
		Append(labelsByID(labelIDs))
}

// ReplaceSubscribers makes the pivot set equal to userIDs.
func (r *TaskRepository) ReplaceSubscribers(ctx context.Context, task *model.Task, userIDs []string) error {
	if len(userIDs) > 0 {
		if err := r.verifyIDs(ctx, &model.User{}, userIDs, apperrors.ErrUnknownSubscriber); err != nil {
			return err
		}
	}

	return r.db.WithContext(ctx).Model(task).
		Association("SubscribedUsers").
		Replace(usersByID(userIDs))
}

// ReplaceLabels makes the pivot set equal to labelIDs.
func (r *TaskRepository) ReplaceLabels(ctx context.Context, task *model.Task, labelIDs []string) error {
	if len(labelIDs) > 0 {
		if err := r.verifyIDs(ctx, &model.Label{}, labelIDs, apperrors.ErrUnknownLabel); err != nil {
			return err
		}
	}

	return r.db.WithContext(ctx).Model(task).
		Association("Labels").
		Replace(labelsByID(labelIDs))
}

// Save persists the task's own columns. Associations are managed through
// the attach/replace methods, never implicitly.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error
}

func (r *TaskRepository) verifyIDs(ctx context.Context, entity any, ids []string, missing error) error {
	var count int64
	err := r.db.WithContext(ctx).Model(entity).
		Where("id IN ?", ids).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return missing
	}
	return nil
}

func usersByID(ids []string) []model.User {
	users := make([]model.User, len(ids))
	for i, id := range ids {
		users[i] = model.User{ID: id}
	}
	return users
}

func labelsByID(ids []string) []model.Label {
	labels := make([]model.Label, len(ids))
	for i, id := range ids {
		labels[i] = model.Label{ID: id}
	}
	return labels
}
