package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"todoapp/internal/model"
	"todoapp/internal/storage"
)

type createTaskRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	DueDate     *time.Time     `json:"dueDate"`
	Priority    model.Priority `json:"priority"`
	Done        bool           `json:"done"`
}

// updateTaskRequest is a partial field set; nil means "leave unchanged".
type updateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	DueDate     *time.Time      `json:"dueDate"`
	Priority    *model.Priority `json:"priority"`
	Done        *bool           `json:"done"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.repo.ListTasks(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toWireTask(task))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
		return
	}
	if !req.Priority.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid priority"})
		return
	}

	task := storage.Task{
		ID:          uuid.NewString(),
		UserID:      currentUserID(c),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    string(req.Priority),
		Done:        req.Done,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateTask(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toWireTask(task))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id := c.Param("id")
	userID := currentUserID(c)

	var req updateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	task, err := s.repo.GetTask(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
			return
		}
		task.Title = trimmed
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Priority != nil {
		if !req.Priority.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid priority"})
			return
		}
		task.Priority = string(*req.Priority)
	}
	if req.Done != nil {
		task.Done = *req.Done
	}

	if err := s.repo.UpdateTask(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, toWireTask(task))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id := c.Param("id")

	err := s.repo.DeleteTask(c.Request.Context(), currentUserID(c), id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	// Deleting an unknown ID acknowledges anyway; the delete path is used
	// to clear client-side state and must stay idempotent.
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func toWireTask(in storage.Task) model.Task {
	return model.Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    model.Priority(in.Priority),
		Done:        in.Done,
		CreatedAt:   in.CreatedAt,
	}
}
