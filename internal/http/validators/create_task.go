package validators

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"taskhub.com/taskhub/internal/services"
)

func ValidateCreateTask(input *services.CreateTaskInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if input.GroupID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "group_id is required")
	}
	if input.Estimation != nil && *input.Estimation < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "estimation must not be negative")
	}
	return nil
}

func ValidateUpdateTask(input *services.UpdateTaskInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if input.GroupID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "group_id is required")
	}
	if input.Estimation != nil && *input.Estimation < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "estimation must not be negative")
	}
	return nil
}
