// Package server exposes the task service REST API: email/password
// registration and login under /api/auth, and the per-user task collection
// under /api/tasks behind bearer-token auth.
package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"todoapp/internal/auth"
	"todoapp/internal/storage"
)

// Server is the todod web server.
type Server struct {
	repo   storage.Repository
	tokens *auth.Tokens
	router *gin.Engine
}

// NewServer creates a new web server around the given repository.
func NewServer(repo storage.Repository, tokens *auth.Tokens) *Server {
	router := gin.Default()
	s := &Server{
		repo:   repo,
		tokens: tokens,
		router: router,
	}
	s.registerRoutes(router)
	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
	}

	tasks := router.Group("/api/tasks")
	tasks.Use(s.requireAuth)
	{
		tasks.GET("", s.handleListTasks)
		tasks.POST("", s.handleCreateTask)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
	}
}

// Run starts the web server on the given port.
func (s *Server) Run(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}
