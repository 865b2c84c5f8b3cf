package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "taskhub.com/taskhub/internal/errors"
	middleware "taskhub.com/taskhub/internal/http/middlewares"
	"taskhub.com/taskhub/internal/http/validators"
	"taskhub.com/taskhub/internal/services"
)

const dateLayout = "2006-01-02"

type Handler struct {
	taskService *services.TaskService
}

func NewHandler(taskService *services.TaskService) *Handler {
	return &Handler{
		taskService: taskService,
	}
}

// CreateTask handles the multipart creation form: scalar fields, repeated
// subscribed_users / labels fields, and any number of files under the
// attachments field.
func (h *Handler) CreateTask(c echo.Context) error {
	projectID := c.Param("projectID")
	if projectID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "project id is required")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}

	input, err := createInputFromForm(form)
	if err != nil {
		return err
	}
	if err := validators.ValidateCreateTask(input); err != nil {
		return err
	}

	files := form.File["attachments"]
	opened := make([]multipart.File, 0, len(files))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
		}
		opened = append(opened, f)

		input.Attachments = append(input.Attachments, services.Upload{
			Name:   fh.Filename,
			Type:   fh.Header.Get("Content-Type"),
			Size:   fh.Size,
			Reader: f,
		})
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), projectID, middleware.Actor(c), *input)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListProjectTasks(c echo.Context) error {
	tasks, err := h.taskService.ListProjectTasks(c.Request().Context(), c.Param("projectID"))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	input := services.UpdateTaskInput{
		GroupID:           req.GroupID,
		AssignedToUserID:  req.AssignedToUserID,
		Name:              req.Name,
		Description:       req.Description,
		Estimation:        req.Estimation,
		HiddenFromClients: req.HiddenFromClients,
		Billable:          req.Billable,
		SubscribedUsers:   req.SubscribedUsers,
		Labels:            req.Labels,
	}
	if req.DueOn != nil && *req.DueOn != "" {
		due, err := time.Parse(dateLayout, *req.DueOn)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid due_on date")
		}
		input.DueOn = &due
	}

	if err := validators.ValidateUpdateTask(&input); err != nil {
		return err
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), c.Param("id"), middleware.Actor(c), input)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) CompleteTask(c echo.Context) error {
	var req CompleteTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	task, err := h.taskService.SetCompleted(c.Request().Context(), c.Param("id"), middleware.Actor(c), req.Completed)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteAttachment(c echo.Context) error {
	if err := h.taskService.DeleteAttachment(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RecentlyAssigned(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	tasks, err := h.taskService.RecentlyAssigned(c.Request().Context(), middleware.Actor(c), limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

func (h *Handler) ProjectReferences(c echo.Context) error {
	refs, err := h.taskService.References(c.Request().Context(), c.Param("projectID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, refs)
}

func createInputFromForm(form *multipart.Form) (*services.CreateTaskInput, error) {
	value := func(key string) string {
		if vals := form.Value[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	input := &services.CreateTaskInput{
		GroupID:         value("group_id"),
		Name:            value("name"),
		Description:     value("description"),
		SubscribedUsers: form.Value["subscribed_users"],
		Labels:          form.Value["labels"],
	}

	if v := value("assigned_to_user_id"); v != "" {
		input.AssignedToUserID = &v
	}

	if v := value("due_on"); v != "" {
		due, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid due_on date")
		}
		input.DueOn = &due
	}

	if v := value("estimation"); v != "" {
		est, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid estimation")
		}
		input.Estimation = &est
	}

	input.HiddenFromClients = parseFlag(value("hidden_from_clients"), false)
	input.Billable = parseFlag(value("billable"), true)

	return input, nil
}

func parseFlag(v string, def bool) bool {
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return parsed
}

// httpError maps domain errors onto HTTP responses via their attached
// status codes; anything unrecognized becomes a 500.
func httpError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := apperrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, "internal server error")
	}
	return echo.NewHTTPError(status, err.Error())
}
