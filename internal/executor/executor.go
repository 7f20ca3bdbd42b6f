// Package executor handles external command execution with privilege
// escalation support. The exit code of the launched process is the sole
// success/failure signal; combined output can additionally be captured so
// callers can classify failures.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor runs external commands with optional sudo elevation.
type Executor struct {
	dryRun  bool
	verbose bool
}

// New creates a new Executor with the given options.
func New(dryRun, verbose bool) *Executor {
	return &Executor{
		dryRun:  dryRun,
		verbose: verbose,
	}
}

// SetDryRun enables or disables dry-run mode.
func (e *Executor) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// SetVerbose enables or disables verbose mode.
func (e *Executor) SetVerbose(verbose bool) {
	e.verbose = verbose
}

// DryRun reports whether dry-run mode is active.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Run executes a command, streaming output to the terminal.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		e.printDryRun(false, name, args)
		return nil
	}

	cmd := e.command(ctx, false, name, args...)
	if cmd == nil {
		return ErrNoPrivileges
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// RunSudo executes a command with sudo if not already root.
func (e *Executor) RunSudo(ctx context.Context, name string, args ...string) error {
	if e.dryRun {
		e.printDryRun(true, name, args)
		return nil
	}

	cmd := e.command(ctx, true, name, args...)
	if cmd == nil {
		return ErrNoPrivileges
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// RunCapture executes a command, streaming output to the terminal while also
// capturing combined stdout+stderr. The captured text is returned even when
// the command fails, so failures can be categorized from it.
func (e *Executor) RunCapture(ctx context.Context, name string, args ...string) (string, error) {
	return e.runCapture(ctx, false, name, args...)
}

// RunSudoCapture is RunCapture with sudo elevation when not already root.
func (e *Executor) RunSudoCapture(ctx context.Context, name string, args ...string) (string, error) {
	return e.runCapture(ctx, true, name, args...)
}

func (e *Executor) runCapture(ctx context.Context, sudo bool, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRun(sudo, name, args)
		return "", nil
	}

	cmd := e.command(ctx, sudo, name, args...)
	if cmd == nil {
		return "", ErrNoPrivileges
	}

	var buf bytes.Buffer
	cmd.Stdin = os.Stdin
	cmd.Stdout = io.MultiWriter(os.Stdout, &buf)
	cmd.Stderr = io.MultiWriter(os.Stderr, &buf)

	err := cmd.Run()
	return buf.String(), err
}

// Output runs a command and returns its stdout.
func (e *Executor) Output(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRun(false, name, args)
		return "", nil
	}

	cmd := e.command(ctx, false, name, args...)
	if cmd == nil {
		return "", ErrNoPrivileges
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	return stdout.String(), err
}

// OutputQuiet runs a command and returns its stdout, suppressing stderr.
func (e *Executor) OutputQuiet(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRun(false, name, args)
		return "", nil
	}

	cmd := e.command(ctx, false, name, args...)
	if cmd == nil {
		return "", ErrNoPrivileges
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err := cmd.Run()
	return stdout.String(), err
}

// OutputCombined runs a command and returns stdout and stderr combined.
func (e *Executor) OutputCombined(ctx context.Context, name string, args ...string) (string, error) {
	if e.dryRun {
		e.printDryRun(false, name, args)
		return "", nil
	}

	cmd := e.command(ctx, false, name, args...)
	if cmd == nil {
		return "", ErrNoPrivileges
	}

	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	return combined.String(), err
}

// command builds the exec.Cmd, wrapping it in sudo when elevation is
// requested and the process is not already root. Returns nil when elevation
// is required but unavailable.
func (e *Executor) command(ctx context.Context, sudo bool, name string, args ...string) *exec.Cmd {
	var cmd *exec.Cmd
	switch {
	case !sudo || isRoot():
		cmd = exec.CommandContext(ctx, name, args...)
	case hasSudo():
		sudoArgs := append([]string{name}, args...)
		cmd = exec.CommandContext(ctx, "sudo", sudoArgs...)
	default:
		return nil
	}

	if e.verbose {
		prefix := "Executing"
		if sudo && isRoot() {
			prefix = "Executing (as root)"
		} else if sudo {
			prefix = "Executing (with sudo)"
		}
		fmt.Printf("%s: %s %s\n", prefix, name, strings.Join(args, " "))
	}

	return cmd
}

func (e *Executor) printDryRun(sudo bool, name string, args []string) {
	if sudo && !isRoot() {
		fmt.Printf("[dry-run] Would execute (with sudo): sudo %s %s\n", name, strings.Join(args, " "))
		return
	}
	fmt.Printf("[dry-run] Would execute: %s %s\n", name, strings.Join(args, " "))
}
