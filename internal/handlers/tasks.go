package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"todo-service/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

type TaskRequest struct {
	Task string `json:"task" binding:"required"`
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

func (h *TaskHandler) AddTask(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User is unauthorized")
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Task title is required")
		return
	}

	task, err := h.taskService.CreateTask(h.db, caller.ID, req.Task)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTitle) {
			respondError(c, http.StatusBadRequest, "Task title is required")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to add task")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"message": "Successfully Add Task",
		"task":    task,
	})
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User is unauthorized")
		return
	}

	tasks, err := h.taskService.ListTasks(h.db, caller.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status_code": http.StatusOK,
		"tasks":       tasks,
	})
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User is unauthorized")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		respondError(c, http.StatusNotFound, "Task Not Found")
		return
	}

	if err := h.taskService.DeleteTask(h.db, caller.ID, taskID); err != nil {
		handleTaskError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Successfully Delete Task")
}

func (h *TaskHandler) MarkDone(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User is unauthorized")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		respondError(c, http.StatusNotFound, "Task Not Found")
		return
	}

	if _, err := h.taskService.MarkDone(h.db, caller.ID, taskID); err != nil {
		handleTaskError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Successfully Update Task")
}

func (h *TaskHandler) EditTask(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User is unauthorized")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		respondError(c, http.StatusNotFound, "Task Not Found")
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Task title is required")
		return
	}

	if _, err := h.taskService.EditTask(h.db, caller.ID, taskID, req.Task); err != nil {
		if errors.Is(err, services.ErrEmptyTitle) {
			respondError(c, http.StatusBadRequest, "Task title is required")
			return
		}
		handleTaskError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Successfully Update Task")
}

// parseTaskID reads the :id route parameter. A non-numeric id matches no
// task and reports not-found rather than a validation error.
func parseTaskID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Task Not Found")
		return
	}
	respondError(c, http.StatusInternalServerError, "Failed to process task request")
}
