package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	apperrors "taskhub.com/taskhub/internal/errors"
	"taskhub.com/taskhub/internal/events"
	model "taskhub.com/taskhub/internal/models"
	repository "taskhub.com/taskhub/internal/repositories"
	"taskhub.com/taskhub/internal/storage"
	"taskhub.com/taskhub/internal/thumbs"
)

// createAttempts bounds the retry loop around the per-project task number.
// The number is read-then-used inside the transaction, so two concurrent
// creations can collide on the unique index; the loser retries with a fresh
// count.
const createAttempts = 3

// Upload is one file payload handed to the creation flow. Reader failures
// abort the whole creation; there is no skip-bad-file policy.
type Upload struct {
	Name   string
	Type   string
	Size   int64
	Reader io.Reader
}

// attachmentPayload is an upload with its bytes buffered. The creation flow
// drains each reader exactly once, before the attempt loop, so a retried
// attempt re-ingests the same bytes instead of an exhausted reader.
type attachmentPayload struct {
	meta Upload
	data []byte
}

type CreateTaskInput struct {
	GroupID           string
	AssignedToUserID  *string
	Name              string
	Description       string
	DueOn             *time.Time
	Estimation        *float64
	HiddenFromClients bool
	Billable          bool
	SubscribedUsers   []string
	Labels            []string
	Attachments       []Upload
}

type UpdateTaskInput struct {
	GroupID           string
	AssignedToUserID  *string
	Name              string
	Description       string
	DueOn             *time.Time
	Estimation        *float64
	HiddenFromClients bool
	Billable          bool
	SubscribedUsers   []string
	Labels            []string
}

type TaskService struct {
	repos     *repository.Repositories
	store     storage.Store
	thumbs    *thumbs.Generator
	publisher events.Publisher
	log       *logrus.Logger
}

func NewTaskService(
	repos *repository.Repositories,
	store storage.Store,
	thumbGen *thumbs.Generator,
	publisher events.Publisher,
	log *logrus.Logger,
) *TaskService {
	return &TaskService{
		repos:     repos,
		store:     store,
		thumbs:    thumbGen,
		publisher: publisher,
		log:       log,
	}
}

// CreateTask runs the creation workflow as one unit of work: task row with
// derived number, subscriber and label pivots, attachment ingestion, and
// the task-created event. Any failure rolls the transaction back; blobs
// written during the failed attempt are removed by compensating cleanup
// since the relational rollback cannot cover them.
func (s *TaskService) CreateTask(
	ctx context.Context,
	projectID string,
	actor *model.User,
	input CreateTaskInput,
) (*model.Task, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.ErrNameRequired
	}

	project, err := s.repos.Projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	payloads := make([]attachmentPayload, 0, len(input.Attachments))
	for _, upload := range input.Attachments {
		data, err := io.ReadAll(upload.Reader)
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", upload.Name, err)
		}
		payloads = append(payloads, attachmentPayload{meta: upload, data: data})
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		task, written, err := s.createOnce(ctx, project, actor, input, payloads)
		if err == nil {
			return s.repos.Tasks.FindByID(ctx, task.ID)
		}

		s.removeBlobs(written)

		if repository.IsDuplicateNumber(err) {
			s.log.WithFields(logrus.Fields{
				"project_id": project.ID,
				"attempt":    attempt + 1,
			}).Warn("task number conflict, retrying")
			continue
		}
		return nil, err
	}

	return nil, apperrors.ErrSequenceConflict
}

func (s *TaskService) createOnce(
	ctx context.Context,
	project *model.Project,
	actor *model.User,
	input CreateTaskInput,
	payloads []attachmentPayload,
) (*model.Task, []string, error) {
	var task *model.Task
	var written []string

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.References.VerifyGroup(ctx, input.GroupID, project.ID); err != nil {
			return err
		}

		if input.AssignedToUserID != nil {
			if err := tx.References.VerifyAssignee(ctx, *input.AssignedToUserID); err != nil {
				return err
			}
		}

		count, err := tx.Tasks.CountForProject(ctx, project.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		task = &model.Task{
			ID:                uuid.NewString(),
			ProjectID:         project.ID,
			GroupID:           input.GroupID,
			Number:            count,
			CreatedByUserID:   actor.ID,
			AssignedToUserID:  input.AssignedToUserID,
			Name:              input.Name,
			Description:       input.Description,
			DueOn:             input.DueOn,
			Estimation:        input.Estimation,
			HiddenFromClients: input.HiddenFromClients,
			Billable:          input.Billable,
			CreatedAt:         now,
		}
		if input.AssignedToUserID != nil {
			task.AssignedAt = &now
		}

		if err := tx.Tasks.Create(ctx, task); err != nil {
			return err
		}

		if err := tx.Tasks.AttachSubscribers(ctx, task, input.SubscribedUsers); err != nil {
			return err
		}

		if err := tx.Tasks.AttachLabels(ctx, task, input.Labels); err != nil {
			return err
		}

		for _, payload := range payloads {
			paths, err := s.ingestAttachment(ctx, tx, task, actor, payload)
			written = append(written, paths...)
			if err != nil {
				return err
			}
		}

		return s.publisher.TaskCreated(ctx, events.TaskCreatedEvent{
			TaskID:    task.ID,
			ProjectID: project.ID,
			Number:    task.Number,
			Name:      task.Name,
		})
	})

	return task, written, err
}

// ingestAttachment persists one upload and its optional thumbnail, then
// records the attachment row. It returns every blob path it wrote, even on
// failure, so the caller can compensate.
func (s *TaskService) ingestAttachment(
	ctx context.Context,
	tx *repository.Repositories,
	task *model.Task,
	actor *model.User,
	payload attachmentPayload,
) ([]string, error) {
	upload := payload.meta

	filename := strings.ToLower(ulid.Make().String()) + thumbs.Extension(upload.Name)
	path := fmt.Sprintf("tasks/%s/%s", task.ID, filename)

	var written []string
	if err := s.store.Put(ctx, path, bytes.NewReader(payload.data)); err != nil {
		return written, fmt.Errorf("store upload %q: %w", upload.Name, err)
	}
	written = append(written, path)

	result := s.thumbs.Generate(ctx, task.ID, filename, payload.data)
	var thumb *string
	if result.Produced() {
		written = append(written, result.Path)
		public := s.store.PublicPath(result.Path)
		thumb = &public
	} else {
		s.log.WithFields(logrus.Fields{
			"task_id": task.ID,
			"file":    upload.Name,
			"reason":  result.Reason,
		}).Debug("thumbnail skipped")
	}

	attachment := &model.Attachment{
		ID:     uuid.NewString(),
		TaskID: task.ID,
		UserID: actor.ID,
		Name:   upload.Name,
		Path:   s.store.PublicPath(path),
		Thumb:  thumb,
		Type:   upload.Type,
		Size:   upload.Size,
	}

	return written, tx.Attachments.Create(ctx, attachment)
}

// UpdateTask applies a full-field patch from the edit view, replacing the
// label and subscriber sets, inside one transaction.
func (s *TaskService) UpdateTask(
	ctx context.Context,
	taskID string,
	actor *model.User,
	input UpdateTaskInput,
) (*model.Task, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.ErrNameRequired
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		task, err := tx.Tasks.FindByID(ctx, taskID)
		if err != nil {
			return err
		}

		if input.GroupID != task.GroupID {
			if err := tx.References.VerifyGroup(ctx, input.GroupID, task.ProjectID); err != nil {
				return err
			}
		}

		if assigneeChanged(task.AssignedToUserID, input.AssignedToUserID) {
			if input.AssignedToUserID != nil {
				if err := tx.References.VerifyAssignee(ctx, *input.AssignedToUserID); err != nil {
					return err
				}
				now := time.Now().UTC()
				task.AssignedAt = &now
			} else {
				task.AssignedAt = nil
			}
		}

		task.GroupID = input.GroupID
		task.AssignedToUserID = input.AssignedToUserID
		task.Name = input.Name
		task.Description = input.Description
		task.DueOn = input.DueOn
		task.Estimation = input.Estimation
		task.HiddenFromClients = input.HiddenFromClients
		task.Billable = input.Billable

		if err := tx.Tasks.Save(ctx, task); err != nil {
			return err
		}

		if err := tx.Tasks.ReplaceLabels(ctx, task, input.Labels); err != nil {
			return err
		}

		return tx.Tasks.ReplaceSubscribers(ctx, task, input.SubscribedUsers)
	})
	if err != nil {
		return nil, err
	}

	return s.repos.Tasks.FindByID(ctx, taskID)
}

// SetCompleted toggles the completion timestamp. Only users with the
// complete-task capability may call it.
func (s *TaskService) SetCompleted(
	ctx context.Context,
	taskID string,
	actor *model.User,
	completed bool,
) (*model.Task, error) {
	if !actor.CanCompleteTasks() {
		return nil, apperrors.ErrForbidden
	}

	task, err := s.repos.Tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if completed && task.CompletedAt == nil {
		now := time.Now().UTC()
		task.CompletedAt = &now
	} else if !completed {
		task.CompletedAt = nil
	}

	if err := s.repos.Tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteAttachment removes the row and both blobs. The row delete is
// authoritative; blob removal failures are logged and left to the sweeper.
func (s *TaskService) DeleteAttachment(ctx context.Context, id string) error {
	attachment, err := s.repos.Attachments.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repos.Attachments.Delete(ctx, id); err != nil {
		return err
	}

	s.removePublicBlob(attachment.Path)
	if attachment.Thumb != nil {
		s.removePublicBlob(*attachment.Thumb)
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.repos.Tasks.FindByID(ctx, id)
}

func (s *TaskService) ListProjectTasks(ctx context.Context, projectID string) ([]model.Task, error) {
	if _, err := s.repos.Projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repos.Tasks.ListForProject(ctx, projectID)
}

func (s *TaskService) RecentlyAssigned(ctx context.Context, actor *model.User, limit int) ([]model.Task, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repos.Tasks.RecentlyAssigned(ctx, actor.ID, limit)
}

// ProjectReferences is the read-only reference data the edit view consumes.
type ProjectReferences struct {
	TaskGroups []model.TaskGroup `json:"task_groups"`
	Labels     []model.Label     `json:"labels"`
	Assignees  []model.User      `json:"users_with_access_to_project"`
}

func (s *TaskService) References(ctx context.Context, projectID string) (*ProjectReferences, error) {
	if _, err := s.repos.Projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}

	groups, err := s.repos.References.ListGroups(ctx, projectID)
	if err != nil {
		return nil, err
	}
	labels, err := s.repos.References.ListLabels(ctx)
	if err != nil {
		return nil, err
	}
	assignees, err := s.repos.References.ListAssignees(ctx)
	if err != nil {
		return nil, err
	}

	return &ProjectReferences{TaskGroups: groups, Labels: labels, Assignees: assignees}, nil
}

func (s *TaskService) removeBlobs(paths []string) {
	for _, path := range paths {
		if err := s.store.Remove(context.Background(), path); err != nil && err != storage.ErrNotFound {
			s.log.WithField("path", path).WithError(err).Warn("failed to clean up blob after rollback")
		}
	}
}

func (s *TaskService) removePublicBlob(public string) {
	path, ok := s.store.FromPublicPath(public)
	if !ok {
		return
	}
	if err := s.store.Remove(context.Background(), path); err != nil && err != storage.ErrNotFound {
		s.log.WithField("path", path).WithError(err).Warn("failed to remove blob")
	}
}

func assigneeChanged(current, next *string) bool {
	switch {
	case current == nil && next == nil:
		return false
	case current == nil || next == nil:
		return true
	default:
		return *current != *next
	}
}
