// Package shell invokes rendered command lines as subprocesses. In dry-run
// mode nothing is spawned and nothing is written; the engine only reports
// what would run.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/L3viathan/crun/internal/history"
	"github.com/L3viathan/crun/internal/log"
	"github.com/L3viathan/crun/internal/ui"
)

// Invocation is one rendered command line ready to run.
type Invocation struct {
	Label   string
	Command string
	// Env is the complete child environment, "KEY=VALUE" entries.
	Env []string
	// StdoutPath / StderrPath capture the stream into a file instead of
	// inheriting the terminal.
	StdoutPath string
	StderrPath string
}

// Engine runs invocations one at a time and classifies the result.
type Engine struct {
	dryRun      bool
	store       *history.Store
	fingerprint string
	theme       ui.Theme
}

// New creates an engine. store may be nil, in which case runs are not
// recorded.
func New(dryRun bool, store *history.Store, fingerprint string) *Engine {
	return &Engine{
		dryRun:      dryRun,
		store:       store,
		fingerprint: fingerprint,
		theme:       ui.NewDefaultTheme(),
	}
}

// DryRun reports whether the engine is in dry-run mode.
func (e *Engine) DryRun() bool {
	return e.dryRun
}

// Run passes the command line to the shell and returns its exit code. A
// non-zero exit is not an error; the error return covers spawn failures.
func (e *Engine) Run(ctx context.Context, inv Invocation) (int, error) {
	logger := log.WithJob(inv.Label)

	if e.dryRun {
		fmt.Println(e.theme.DryRun.Render("would run:"), inv.Command)
		e.record(ctx, inv, 0, time.Now(), 0)
		return 0, nil
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", inv.Command)
	cmd.Env = inv.Env

	var stdout, stderr bytes.Buffer
	if inv.StdoutPath != "" {
		cmd.Stdout = &stdout
	} else {
		cmd.Stdout = os.Stdout
	}
	if inv.StderrPath != "" {
		cmd.Stderr = &stderr
	} else {
		cmd.Stderr = os.Stderr
	}

	logger.Debug("running command", "command", inv.Command)
	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return 0, fmt.Errorf("start process: %w", err)
		}
		code = exitErr.ExitCode()
	}

	e.record(ctx, inv, code, started, elapsed)

	if code == 0 {
		if err := e.writeCapture(inv.StdoutPath, stdout.Bytes()); err != nil {
			return code, err
		}
		if err := e.writeCapture(inv.StderrPath, stderr.Bytes()); err != nil {
			return code, err
		}
	}
	return code, nil
}

func (e *Engine) writeCapture(path string, data []byte) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write captured output: %w", err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, inv Invocation, code int, started time.Time, elapsed time.Duration) {
	if e.store == nil {
		return
	}
	_, err := e.store.Append(ctx, history.Record{
		Label:       inv.Label,
		Command:     inv.Command,
		ExitCode:    code,
		DryRun:      e.dryRun,
		Fingerprint: e.fingerprint,
		StartedAt:   started,
		Duration:    elapsed,
	})
	if err != nil {
		log.Warn("failed to record run", "job", inv.Label, "error", err)
	}
}
