package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard-service/internal/api/dto"
	"github.com/spec-kit/taskboard-service/internal/auth"
	"github.com/spec-kit/taskboard-service/internal/domain"
	"github.com/spec-kit/taskboard-service/internal/service"
	apperrors "github.com/spec-kit/taskboard-service/pkg/util/errorutil"
)

// TasksHandler manages the authenticated user's task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// CreateTask POST /api/tasks.
func (h *TasksHandler) CreateTask(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	task, err := h.service.CreateTask(c.Context(), user.ID, service.TaskCreateInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "task": dto.NewTaskView(task)})
}

// ListTasks GET /api/tasks.
func (h *TasksHandler) ListTasks(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	tasks, err := h.service.ListTasks(c.Context(), user.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TaskView, 0, len(tasks))
	for i := range tasks {
		items = append(items, dto.NewTaskView(&tasks[i]))
	}
	return c.JSON(fiber.Map{"success": true, "tasks": items})
}

// GetTask GET /api/tasks/:id.
func (h *TasksHandler) GetTask(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}
	task, err := h.service.GetTask(c.Context(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "task": dto.NewTaskView(task)})
}

// UpdateTask PATCH /api/tasks/:id.
func (h *TasksHandler) UpdateTask(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}
	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	input := service.TaskUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		input.Status = &status
	}

	task, err := h.service.UpdateTask(c.Context(), user.ID, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "task": dto.NewTaskView(task)})
}

// DeleteTask DELETE /api/tasks/:id.
func (h *TasksHandler) DeleteTask(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated()
	}
	if err := h.service.DeleteTask(c.Context(), user.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
