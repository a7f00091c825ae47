package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"todoapp/internal/api"
	"todoapp/internal/exitcode"
	"todoapp/internal/localstore"
	"todoapp/internal/model"
	"todoapp/internal/sync"
)

// stubRemote is an in-memory task service.
type stubRemote struct {
	tasks  []model.Task
	nextID int
	fail   error
}

func (s *stubRemote) Register(ctx context.Context, email, password string) (api.Session, error) {
	if s.fail != nil {
		return api.Session{}, s.fail
	}
	var session api.Session
	session.Token = "token"
	return session, nil
}

func (s *stubRemote) Login(ctx context.Context, email, password string) (api.Session, error) {
	return s.Register(ctx, email, password)
}

func (s *stubRemote) ListTasks(ctx context.Context, token string) ([]model.Task, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return append([]model.Task(nil), s.tasks...), nil
}

func (s *stubRemote) CreateTask(ctx context.Context, token string, task model.Task) (model.Task, error) {
	if s.fail != nil {
		return model.Task{}, s.fail
	}
	s.nextID++
	task.ID = fmt.Sprintf("t%d", s.nextID)
	task.SyncStatus = ""
	s.tasks = append([]model.Task{task}, s.tasks...)
	return task, nil
}

func (s *stubRemote) UpdateTask(ctx context.Context, token, id string, patch api.TaskPatch) (model.Task, error) {
	if s.fail != nil {
		return model.Task{}, s.fail
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			if patch.Done != nil {
				s.tasks[i].Done = *patch.Done
			}
			return s.tasks[i], nil
		}
	}
	return model.Task{}, api.ErrNotFound
}

func (s *stubRemote) DeleteTask(ctx context.Context, token, id string) error {
	if s.fail != nil {
		return s.fail
	}
	kept := s.tasks[:0]
	for _, task := range s.tasks {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	s.tasks = kept
	return nil
}

func setupDispatcher(t *testing.T) (*Dispatcher, *stubRemote) {
	t.Helper()

	store, err := localstore.Open(filepath.Join(t.TempDir(), "todo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	remote := &stubRemote{}
	rec := sync.NewReconciler(remote, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewDispatcher(rec, nil), remote
}

func run(t *testing.T, d *Dispatcher, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := d.Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUnknownCommand(t *testing.T) {
	d, _ := setupDispatcher(t)

	code, _, errOut := run(t, d, "frobnicate")
	if code != exitcode.UserError {
		t.Fatalf("expected user error, got %d", code)
	}
	if !strings.Contains(errOut, "unknown command: frobnicate") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestFlagWithoutCommand(t *testing.T) {
	d, _ := setupDispatcher(t)

	code, _, _ := run(t, d, "--verbose")
	if code != exitcode.UserError {
		t.Fatalf("expected user error, got %d", code)
	}
}

func TestRegisterMissingArgs(t *testing.T) {
	d, _ := setupDispatcher(t)

	code, _, errOut := run(t, d, "register", "amy@example.com")
	if code != exitcode.UserError {
		t.Fatalf("expected user error, got %d", code)
	}
	if !strings.Contains(errOut, "usage: todo register") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestLoginThenListShowsSections(t *testing.T) {
	d, remote := setupDispatcher(t)

	if code, _, errOut := run(t, d, "login", "amy@example.com", "pw"); code != exitcode.Success {
		t.Fatalf("login failed (%d): %s", code, errOut)
	}

	if code, _, errOut := run(t, d, "add", "buy", "milk"); code != exitcode.Success {
		t.Fatalf("add failed (%d): %s", code, errOut)
	}
	if len(remote.tasks) != 1 || remote.tasks[0].Title != "buy milk" {
		t.Fatalf("add should hit the service: %+v", remote.tasks)
	}

	code, out, _ := run(t, d, "list")
	if code != exitcode.Success {
		t.Fatalf("list failed: %d", code)
	}
	if !strings.Contains(out, "Active") || !strings.Contains(out, "   1  buy milk") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
	if strings.Contains(out, "Completed") {
		t.Fatalf("empty completed section should be omitted:\n%s", out)
	}
}

func TestDoneRestoreRemoveByNumber(t *testing.T) {
	d, remote := setupDispatcher(t)

	run(t, d, "login", "amy@example.com", "pw")
	run(t, d, "add", "walk dog")

	if code, _, errOut := run(t, d, "done", "1"); code != exitcode.Success {
		t.Fatalf("done failed (%d): %s", code, errOut)
	}
	if !remote.tasks[0].Done {
		t.Fatalf("done should patch the service: %+v", remote.tasks)
	}

	code, out, _ := run(t, d, "list")
	if code != exitcode.Success || !strings.Contains(out, "Completed") {
		t.Fatalf("completed section missing:\n%s", out)
	}

	if code, _, errOut := run(t, d, "restore", "1"); code != exitcode.Success {
		t.Fatalf("restore failed (%d): %s", code, errOut)
	}
	if remote.tasks[0].Done {
		t.Fatalf("restore should patch the service: %+v", remote.tasks)
	}

	run(t, d, "done", "1")
	if code, _, errOut := run(t, d, "rm", "1"); code != exitcode.Success {
		t.Fatalf("rm failed (%d): %s", code, errOut)
	}
	if len(remote.tasks) != 0 {
		t.Fatalf("rm should delete from the service: %+v", remote.tasks)
	}
}

func TestDoneOutOfRange(t *testing.T) {
	d, _ := setupDispatcher(t)
	run(t, d, "login", "amy@example.com", "pw")

	code, _, errOut := run(t, d, "done", "7")
	if code != exitcode.UserError {
		t.Fatalf("expected user error, got %d", code)
	}
	if !strings.Contains(errOut, "out of range") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}

	if code, _, _ := run(t, d, "done", "zero"); code != exitcode.UserError {
		t.Fatalf("expected user error for non-numeric ref, got %d", code)
	}
}

func TestAddRequiresTitle(t *testing.T) {
	d, _ := setupDispatcher(t)

	code, _, errOut := run(t, d, "add")
	if code != exitcode.UserError {
		t.Fatalf("expected user error, got %d", code)
	}
	if !strings.Contains(errOut, "title required") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestAddOfflineReportsLocalSave(t *testing.T) {
	d, _ := setupDispatcher(t)

	code, out, _ := run(t, d, "add", "offline", "errand")
	if code != exitcode.Success {
		t.Fatalf("offline add should succeed locally, got %d", code)
	}
	if !strings.Contains(out, "saved locally") {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestAuthErrorExitCode(t *testing.T) {
	d, remote := setupDispatcher(t)
	run(t, d, "login", "amy@example.com", "pw")
	remote.fail = api.ErrUnauthorized

	code, _, errOut := run(t, d, "login", "amy@example.com", "bad")
	if code != exitcode.AuthError {
		t.Fatalf("expected auth error, got %d: %s", code, errOut)
	}
}

func TestSyncPrintsCounts(t *testing.T) {
	d, _ := setupDispatcher(t)
	run(t, d, "login", "amy@example.com", "pw")
	run(t, d, "add", "one thing")

	code, out, _ := run(t, d, "sync")
	if code != exitcode.Success {
		t.Fatalf("sync failed: %d", code)
	}
	if !strings.Contains(out, "1 active, 0 completed") {
		t.Fatalf("unexpected sync output: %q", out)
	}
}

func TestHelpListsCommands(t *testing.T) {
	d, _ := setupDispatcher(t)

	code, out, _ := run(t, d, "help")
	if code != exitcode.Success {
		t.Fatalf("help failed: %d", code)
	}
	for _, name := range []string{"register", "login", "list", "add", "done", "restore", "rm", "sync"} {
		if !strings.Contains(out, name) {
			t.Fatalf("help missing %q:\n%s", name, out)
		}
	}
}
