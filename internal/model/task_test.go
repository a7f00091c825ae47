package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	task := Task{
		Title:      "Buy milk",
		Priority:   PriorityHigh,
		CreatedAt:  now,
		SyncStatus: SyncSynced,
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateOptionalFieldsMayBeEmpty(t *testing.T) {
	task := Task{Title: "Water plants"}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateEmptyTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		task := Task{Title: title}
		if err := task.Validate(); !errors.Is(err, ErrEmptyTitle) {
			t.Fatalf("title %q: expected ErrEmptyTitle, got: %v", title, err)
		}
	}
}

func TestTaskValidateInvalidEnums(t *testing.T) {
	task := Task{Title: "Bad priority", Priority: Priority("urgent")}
	if err := task.Validate(); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}

	task = Task{Title: "Bad sync status", SyncStatus: SyncStatus("queued")}
	if err := task.Validate(); !errors.Is(err, ErrInvalidSyncStatus) {
		t.Fatalf("expected ErrInvalidSyncStatus, got: %v", err)
	}
}

func TestSyncStatusPending(t *testing.T) {
	pending := []SyncStatus{SyncPendingCreate, SyncPendingUpdate, SyncPendingDelete}
	for _, s := range pending {
		if !s.Pending() {
			t.Fatalf("expected %q to be pending", s)
		}
	}
	if SyncSynced.Pending() || SyncStatus("").Pending() {
		t.Fatal("synced and empty statuses must not be pending")
	}
}

func TestSameIdentity(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	a := Task{ID: "t-1", Title: "One", CreatedAt: now}
	b := Task{ID: "t-1", Title: "Renamed", CreatedAt: now.Add(time.Hour)}
	if !a.SameIdentity(b) {
		t.Fatal("tasks sharing an ID must match")
	}

	local := Task{Title: "Offline", CreatedAt: now}
	same := Task{Title: "Offline", CreatedAt: now}
	other := Task{Title: "Offline", CreatedAt: now.Add(time.Minute)}
	if !local.SameIdentity(same) {
		t.Fatal("unsynced tasks with equal title and creation time must match")
	}
	if local.SameIdentity(other) {
		t.Fatal("unsynced tasks with different creation times must not match")
	}
	if local.SameIdentity(a) {
		t.Fatal("an unsynced task must not match a synced one")
	}
}

func TestPartition(t *testing.T) {
	tasks := []Task{
		{ID: "1", Title: "active"},
		{ID: "2", Title: "done", Done: true},
		{ID: "3", Title: "tombstone", Done: true, SyncStatus: SyncPendingDelete},
		{Title: "local active", SyncStatus: SyncPendingCreate},
	}

	active, completed := Partition(tasks)
	if len(active) != 2 || len(completed) != 1 {
		t.Fatalf("unexpected partition: active=%d completed=%d", len(active), len(completed))
	}
	if completed[0].ID != "2" {
		t.Fatalf("unexpected completed task: %#v", completed[0])
	}
	for _, task := range active {
		if task.Done {
			t.Fatalf("done task leaked into active view: %#v", task)
		}
	}
}
