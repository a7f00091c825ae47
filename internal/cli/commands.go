package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"todoapp/internal/exitcode"
	"todoapp/internal/model"
	"todoapp/internal/output"
	"todoapp/internal/sync"
)

type command struct {
	name     string
	synopsis string
	usage    string
	run      func(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int
}

var commands []command

func init() {
	commands = []command{
		{
			name:     "register",
			synopsis: "Create an account and log in",
			usage:    "todo register <email> <password>",
			run:      runRegister,
		},
		{
			name:     "login",
			synopsis: "Log in to the task service",
			usage:    "todo login <email> <password>",
			run:      runLogin,
		},
		{
			name:     "logout",
			synopsis: "Drop the stored session",
			usage:    "todo logout",
			run:      runLogout,
		},
		{
			name:     "list",
			synopsis: "Show active and completed tasks",
			usage:    "todo list",
			run:      runList,
		},
		{
			name:     "add",
			synopsis: "Add a task",
			usage:    "todo add <title...>",
			run:      runAdd,
		},
		{
			name:     "done",
			synopsis: "Complete an active task by number",
			usage:    "todo done <n>",
			run:      runDone,
		},
		{
			name:     "restore",
			synopsis: "Move a completed task back to active",
			usage:    "todo restore <n>",
			run:      runRestore,
		},
		{
			name:     "rm",
			synopsis: "Delete a completed task by number",
			usage:    "todo rm <n>",
			run:      runRemove,
		},
		{
			name:     "sync",
			synopsis: "Replay pending changes and refresh from the service",
			usage:    "todo sync",
			run:      runSync,
		},
		{
			name:     "help",
			synopsis: "Show this help",
			usage:    "todo help",
			run:      runHelp,
		},
	}
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func runRegister(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	email, password, code := credentialArgs(args, "todo register <email> <password>", errOut)
	if code != exitcode.Success {
		return code
	}
	if err := d.rec.Register(ctx, email, password); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, "ok")
	return exitcode.Success
}

func runLogin(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	email, password, code := credentialArgs(args, "todo login <email> <password>", errOut)
	if code != exitcode.Success {
		return code
	}
	if err := d.rec.Login(ctx, email, password); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, "ok")
	return exitcode.Success
}

func runLogout(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	if err := d.rec.Logout(ctx); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, "ok")
	return exitcode.Success
}

func runList(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	if err := d.rec.Fetch(ctx); err != nil {
		return fail(errOut, err)
	}

	output.FormatSectionHeader(out, "Active")
	for i, task := range d.rec.Active() {
		output.FormatTask(out, i+1, task)
	}
	completed := d.rec.Completed()
	if len(completed) > 0 {
		output.FormatSectionHeader(out, "Completed")
		for i, task := range completed {
			output.FormatTask(out, i+1, task)
		}
	}
	return exitcode.Success
}

func runAdd(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	task, err := d.rec.Add(ctx, title, sync.AddOptions{})
	if err != nil {
		return fail(errOut, err)
	}
	if task.SyncStatus.Pending() {
		fmt.Fprintln(out, "ok (saved locally, will sync)")
	} else {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func runDone(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	task, code := pickTask(ctx, d, args, activeView, errOut)
	if code != exitcode.Success {
		return code
	}
	if err := d.rec.Complete(ctx, task); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, "ok")
	return exitcode.Success
}

func runRestore(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	task, code := pickTask(ctx, d, args, completedView, errOut)
	if code != exitcode.Success {
		return code
	}
	if err := d.rec.Restore(ctx, task); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, "ok")
	return exitcode.Success
}

func runRemove(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	task, code := pickTask(ctx, d, args, completedView, errOut)
	if code != exitcode.Success {
		return code
	}
	if err := d.rec.RemoveCompleted(ctx, task); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, "ok")
	return exitcode.Success
}

func runSync(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	if err := d.rec.Fetch(ctx); err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintf(out, "ok  %d active, %d completed\n", len(d.rec.Active()), len(d.rec.Completed()))
	return exitcode.Success
}

func runHelp(ctx context.Context, d *Dispatcher, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "usage: todo [command]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Running todo with no command opens the interactive UI.")
	fmt.Fprintln(out)
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", cmd.name, cmd.synopsis)
	}
	return exitcode.Success
}

type viewKind int

const (
	activeView viewKind = iota
	completedView
)

// pickTask refreshes state and resolves a 1-based task number against the
// numbering the list command prints.
func pickTask(ctx context.Context, d *Dispatcher, args []string, view viewKind, errOut io.Writer) (model.Task, int) {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: task number required")
		return model.Task{}, exitcode.UserError
	}
	num, err := strconv.Atoi(args[0])
	if err != nil || num < 1 {
		fmt.Fprintf(errOut, "error: invalid task number: %s\n", args[0])
		return model.Task{}, exitcode.UserError
	}

	if err := d.rec.Fetch(ctx); err != nil {
		return model.Task{}, fail(errOut, err)
	}

	tasks := d.rec.Active()
	if view == completedView {
		tasks = d.rec.Completed()
	}
	if num > len(tasks) {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return model.Task{}, exitcode.UserError
	}
	return tasks[num-1], exitcode.Success
}

func credentialArgs(args []string, usage string, errOut io.Writer) (string, string, int) {
	if len(args) != 2 {
		fmt.Fprintf(errOut, "usage: %s\n", usage)
		return "", "", exitcode.UserError
	}
	return args[0], args[1], exitcode.Success
}
