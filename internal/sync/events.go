package sync

import "todoapp/internal/model"

// EventKind names a reconciler state change the presentation layer may react
// to.
type EventKind string

const (
	EventTaskAdded     EventKind = "task_added"
	EventTaskCompleted EventKind = "task_completed"
	EventTaskRestored  EventKind = "task_restored"
	EventTaskDeleted   EventKind = "task_deleted"

	// EventSyncFailed reports that a local change could not reach the
	// service and was tagged for replay on the next authenticated fetch.
	EventSyncFailed EventKind = "sync_failed"
)

type Event struct {
	Kind EventKind
	Task model.Task
}
