package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrEmailTaken = errors.New("storage: email already registered")
)

type Repository interface {
	CreateUser(ctx context.Context, in User) error
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)

	CreateTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, userID, id string) (Task, error)
	UpdateTask(ctx context.Context, in Task) error
	DeleteTask(ctx context.Context, userID, id string) error
	ListTasks(ctx context.Context, userID string) ([]Task, error)
}
