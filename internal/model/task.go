package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyTitle        = errors.New("model: task title is required")
	ErrInvalidPriority   = errors.New("model: invalid task priority")
	ErrInvalidSyncStatus = errors.New("model: invalid task sync status")
)

// Priority is the optional urgency label a task carries. An empty value is
// valid and rendered as the normal default.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// SyncStatus tags a task in the device-local list with its replication state
// against the remote store. It never crosses the wire.
type SyncStatus string

const (
	SyncSynced        SyncStatus = "synced"
	SyncPendingCreate SyncStatus = "pendingCreate"
	SyncPendingUpdate SyncStatus = "pendingUpdate"
	SyncPendingDelete SyncStatus = "pendingDelete"
)

func (s SyncStatus) IsValid() bool {
	switch s {
	case "", SyncSynced, SyncPendingCreate, SyncPendingUpdate, SyncPendingDelete:
		return true
	default:
		return false
	}
}

// Pending reports whether the task still has an unreplicated write.
func (s SyncStatus) Pending() bool {
	switch s {
	case SyncPendingCreate, SyncPendingUpdate, SyncPendingDelete:
		return true
	default:
		return false
	}
}

// Task is one to-do item. ID is assigned by the remote store on creation and
// stays empty while the task exists only on this device.
type Task struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	SyncStatus  SyncStatus `json:"syncStatus,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.SyncStatus.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSyncStatus, t.SyncStatus)
	}
	return nil
}

// SameIdentity reports whether two tasks refer to the same item. Tasks that
// were never synced have no ID yet, so title plus creation time stands in.
func (t Task) SameIdentity(other Task) bool {
	if t.ID != "" || other.ID != "" {
		return t.ID == other.ID
	}
	return t.Title == other.Title && t.CreatedAt.Equal(other.CreatedAt)
}

// Partition splits tasks into active and completed views by the Done flag.
// Tasks tombstoned for deletion are dropped from both.
func Partition(tasks []Task) (active, completed []Task) {
	active = make([]Task, 0, len(tasks))
	completed = make([]Task, 0)
	for _, t := range tasks {
		if t.SyncStatus == SyncPendingDelete {
			continue
		}
		if t.Done {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}
	return active, completed
}
