// Package sync reconciles the device-local task list with the remote
// service. Every mutation lands locally first, then tries the service when a
// session token exists; failures are tagged on the task and replayed at the
// top of the next authenticated fetch, so the app keeps working offline.
package sync

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	stdsync "sync"
	"time"

	"todoapp/internal/api"
	"todoapp/internal/localstore"
	"todoapp/internal/model"
)

var (
	ErrOpInFlight         = errors.New("sync: an operation for this task is already in flight")
	ErrMissingCredentials = errors.New("sync: email and password are required")
)

// RemoteService is the slice of the API client the reconciler needs.
// *api.Client satisfies it.
type RemoteService interface {
	Register(ctx context.Context, email, password string) (api.Session, error)
	Login(ctx context.Context, email, password string) (api.Session, error)
	ListTasks(ctx context.Context, token string) ([]model.Task, error)
	CreateTask(ctx context.Context, token string, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, token, id string, patch api.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, token, id string) error
}

// Reconciler holds the in-memory active and completed views of the single
// authoritative local list, plus delete tombstones hidden from both views.
// Collection mutation is serialized by mu; per-task remote writes are
// serialized by the in-flight map.
type Reconciler struct {
	remote RemoteService
	store  *localstore.Store
	log    *slog.Logger
	now    func() time.Time

	mu         stdsync.Mutex
	active     []model.Task
	completed  []model.Task
	tombstones []model.Task
	inFlight   map[string]struct{}
	onEvent    func(Event)
}

func NewReconciler(remote RemoteService, store *localstore.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		remote:   remote,
		store:    store,
		log:      logger,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

// Notify registers a sink for reconciler events. The sink is called
// synchronously after the state change it describes has been persisted.
func (r *Reconciler) Notify(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvent = fn
}

// Active returns a copy of the active (not done) view.
func (r *Reconciler) Active() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Task(nil), r.active...)
}

// Completed returns a copy of the completed view.
func (r *Reconciler) Completed() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Task(nil), r.completed...)
}

// Fetch refreshes both views. Without a token it serves the local list
// untouched. With a token it first replays tagged pending writes, then pulls
// the full list and rewrites the local snapshot; if the service is
// unreachable it falls back to the local list.
func (r *Reconciler) Fetch(ctx context.Context) error {
	token, err := r.store.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return r.loadLocal(ctx)
	}

	stillPending, err := r.replayPending(ctx, token)
	if err != nil {
		return err
	}

	remoteTasks, err := r.remote.ListTasks(ctx, token)
	if err != nil {
		r.log.Warn("task list fetch failed, serving local copy", "error", err)
		return r.loadLocal(ctx)
	}
	for i := range remoteTasks {
		remoteTasks[i].SyncStatus = model.SyncSynced
	}

	// Pending tasks that failed replay survive the snapshot rewrite; a
	// locally tagged copy wins over the stale server copy of the same task.
	snapshot := append([]model.Task(nil), stillPending...)
	for _, task := range remoteTasks {
		if indexByIdentity(snapshot, task) < 0 {
			snapshot = append(snapshot, task)
		}
	}

	r.mu.Lock()
	r.active, r.completed = model.Partition(snapshot)
	r.tombstones = collectTombstones(snapshot)
	r.mu.Unlock()

	return r.store.SaveTasks(ctx, snapshot)
}

// AddOptions carries the optional fields of a new task.
type AddOptions struct {
	Description string
	DueDate     *time.Time
	Priority    model.Priority
}

// Add creates a task. A whitespace-only title is a no-op and leaves every
// collection untouched. With a token the task is created remotely and the
// server's copy kept; otherwise (or when the create fails) it is stored as
// pendingCreate for later replay.
func (r *Reconciler) Add(ctx context.Context, title string, opts AddOptions) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, nil
	}

	task := model.Task{
		Title:       title,
		Description: opts.Description,
		DueDate:     opts.DueDate,
		Priority:    opts.Priority,
		CreatedAt:   r.now().UTC(),
		SyncStatus:  model.SyncPendingCreate,
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}

	token, err := r.store.Token(ctx)
	if err != nil {
		return model.Task{}, err
	}
	if token != "" {
		created, err := r.remote.CreateTask(ctx, token, task)
		if err != nil {
			r.log.Warn("remote create failed, keeping task locally", "title", task.Title, "error", err)
		} else {
			created.SyncStatus = model.SyncSynced
			task = created
		}
	}

	r.mu.Lock()
	r.active = append([]model.Task{task}, r.active...)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if err := r.store.SaveTasks(ctx, snapshot); err != nil {
		return model.Task{}, err
	}
	r.emit(Event{Kind: EventTaskAdded, Task: task})
	return task, nil
}

// Complete moves a task from the active view to the completed view. The move
// is persisted immediately; the remote update runs after, and on failure the
// task is tagged pendingUpdate and a SyncFailed event is emitted.
func (r *Reconciler) Complete(ctx context.Context, task model.Task) error {
	return r.setDone(ctx, task, true, EventTaskCompleted)
}

// Restore moves a task back from the completed view to the active view.
func (r *Reconciler) Restore(ctx context.Context, task model.Task) error {
	return r.setDone(ctx, task, false, EventTaskRestored)
}

func (r *Reconciler) setDone(ctx context.Context, task model.Task, done bool, kind EventKind) error {
	release, err := r.acquire(task)
	if err != nil {
		return err
	}
	defer release()

	from, to := &r.active, &r.completed
	if !done {
		from, to = &r.completed, &r.active
	}

	r.mu.Lock()
	idx := indexByIdentity(*from, task)
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}
	moved := (*from)[idx]
	moved.Done = done
	*from = append((*from)[:idx], (*from)[idx+1:]...)
	*to = append([]model.Task{moved}, *to...)
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if err := r.store.SaveTasks(ctx, snapshot); err != nil {
		return err
	}

	token, err := r.store.Token(ctx)
	if err != nil {
		return err
	}
	if moved.ID != "" && !moved.SyncStatus.Pending() {
		if token == "" {
			// The server already knows this task; without a session the
			// move must be tagged or the next fetch would revert it.
			if err := r.tagAndPersist(ctx, moved, model.SyncPendingUpdate); err != nil {
				return err
			}
			moved.SyncStatus = model.SyncPendingUpdate
		} else {
			patch := api.TaskPatch{Done: &done}
			if _, err := r.remote.UpdateTask(ctx, token, moved.ID, patch); err != nil {
				r.log.Warn("remote update failed, tagging for replay", "id", moved.ID, "error", err)
				if err := r.tagAndPersist(ctx, moved, model.SyncPendingUpdate); err != nil {
					return err
				}
				moved.SyncStatus = model.SyncPendingUpdate
				r.emit(Event{Kind: EventSyncFailed, Task: moved})
			}
		}
	}

	r.emit(Event{Kind: kind, Task: moved})
	return nil
}

// RemoveCompleted deletes a task from the completed view. With a token and a
// server ID the remote delete runs first; if it fails the task stays as a
// pendingDelete tombstone, hidden from both views, and is replayed later.
func (r *Reconciler) RemoveCompleted(ctx context.Context, task model.Task) error {
	release, err := r.acquire(task)
	if err != nil {
		return err
	}
	defer release()

	r.mu.Lock()
	idx := indexByIdentity(r.completed, task)
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}
	removed := r.completed[idx]
	r.mu.Unlock()

	token, err := r.store.Token(ctx)
	if err != nil {
		return err
	}

	tombstone := false
	if removed.ID != "" {
		if token == "" {
			tombstone = true
		} else if err := r.remote.DeleteTask(ctx, token, removed.ID); err != nil {
			r.log.Warn("remote delete failed, keeping tombstone", "id", removed.ID, "error", err)
			tombstone = true
		}
	}

	r.mu.Lock()
	if idx = indexByIdentity(r.completed, removed); idx >= 0 {
		r.completed = append(r.completed[:idx], r.completed[idx+1:]...)
	}
	if tombstone {
		removed.SyncStatus = model.SyncPendingDelete
		r.tombstones = append(r.tombstones, removed)
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	if err := r.store.SaveTasks(ctx, snapshot); err != nil {
		return err
	}
	if tombstone && token != "" {
		r.emit(Event{Kind: EventSyncFailed, Task: removed})
	}
	r.emit(Event{Kind: EventTaskDeleted, Task: removed})
	return nil
}

// loadLocal rebuilds both views from the stored list without touching the
// service.
func (r *Reconciler) loadLocal(ctx context.Context) error {
	tasks, err := r.store.Tasks(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.active, r.completed = model.Partition(tasks)
	r.tombstones = collectTombstones(tasks)
	r.mu.Unlock()
	return nil
}

// replayPending pushes tagged writes to the service, oldest first, and
// returns the tasks whose replay failed so their tags survive the snapshot
// rewrite.
func (r *Reconciler) replayPending(ctx context.Context, token string) ([]model.Task, error) {
	tasks, err := r.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	var stillPending []model.Task
	// Stored newest-first; walk from the tail for oldest-first replay.
	for i := len(tasks) - 1; i >= 0; i-- {
		task := tasks[i]
		switch task.SyncStatus {
		case model.SyncPendingCreate:
			if _, err := r.remote.CreateTask(ctx, token, task); err != nil {
				r.log.Warn("pending create replay failed", "title", task.Title, "error", err)
				stillPending = append(stillPending, task)
			}
		case model.SyncPendingUpdate:
			done := task.Done
			_, err := r.remote.UpdateTask(ctx, token, task.ID, api.TaskPatch{Done: &done})
			switch {
			case errors.Is(err, api.ErrNotFound):
				// Deleted elsewhere; the snapshot rewrite drops it.
				r.log.Warn("pending update target gone, dropping", "id", task.ID)
			case err != nil:
				r.log.Warn("pending update replay failed", "id", task.ID, "error", err)
				stillPending = append(stillPending, task)
			}
		case model.SyncPendingDelete:
			if err := r.remote.DeleteTask(ctx, token, task.ID); err != nil {
				r.log.Warn("pending delete replay failed", "id", task.ID, "error", err)
				stillPending = append(stillPending, task)
			}
		}
	}
	return stillPending, nil
}

// tagAndPersist rewrites the stored copy of task with the given status and
// mirrors the tag into whichever view holds it.
func (r *Reconciler) tagAndPersist(ctx context.Context, task model.Task, status model.SyncStatus) error {
	r.mu.Lock()
	if idx := indexByIdentity(r.active, task); idx >= 0 {
		r.active[idx].SyncStatus = status
	}
	if idx := indexByIdentity(r.completed, task); idx >= 0 {
		r.completed[idx].SyncStatus = status
	}
	snapshot := r.snapshotLocked()
	r.mu.Unlock()
	return r.store.SaveTasks(ctx, snapshot)
}

// acquire reserves the task for one mutating operation. A second call for
// the same task before release is rejected, instead of racing the first.
func (r *Reconciler) acquire(task model.Task) (func(), error) {
	key := identityKey(task)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inFlight[key]; busy {
		return nil, ErrOpInFlight
	}
	r.inFlight[key] = struct{}{}
	return func() {
		r.mu.Lock()
		delete(r.inFlight, key)
		r.mu.Unlock()
	}, nil
}

// snapshotLocked flattens the views plus tombstones into the list persisted
// to the local store. Callers must hold mu.
func (r *Reconciler) snapshotLocked() []model.Task {
	snapshot := make([]model.Task, 0, len(r.active)+len(r.completed)+len(r.tombstones))
	snapshot = append(snapshot, r.active...)
	snapshot = append(snapshot, r.completed...)
	snapshot = append(snapshot, r.tombstones...)
	return snapshot
}

func (r *Reconciler) emit(e Event) {
	r.mu.Lock()
	fn := r.onEvent
	r.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

func identityKey(task model.Task) string {
	if task.ID != "" {
		return task.ID
	}
	return task.Title + "|" + task.CreatedAt.UTC().Format(time.RFC3339Nano)
}

func indexByIdentity(tasks []model.Task, task model.Task) int {
	for i, candidate := range tasks {
		if candidate.SameIdentity(task) {
			return i
		}
	}
	return -1
}

func collectTombstones(tasks []model.Task) []model.Task {
	var tombstones []model.Task
	for _, task := range tasks {
		if task.SyncStatus == model.SyncPendingDelete {
			tombstones = append(tombstones, task)
		}
	}
	return tombstones
}
