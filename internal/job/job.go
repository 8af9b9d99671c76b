// Package job resolves labels to runnable units and executes them: shell
// command jobs, pipelines of jobs, and in-process builtins. Settings flow
// from the config tree through base inheritance, CLI overrides and pipeline
// per-step overrides; every job owns its own deep copy.
package job

import (
	"errors"
	"log/slog"

	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/log"
)

// Job is a runnable unit with the shared lifecycle contract: an optional
// precondition check, then execution.
type Job interface {
	// Label returns the canonical label the job was resolved under.
	Label() string
	// Settings exposes the job's owned settings mapping.
	Settings() *config.Map
	// Override deep-merges overrides into the settings and refreshes the
	// working options and environment copies.
	Override(overrides *config.Map)
	// Run checks the precondition and executes.
	Run() error
}

// core carries the state and behavior shared by every job variant.
type core struct {
	label    string
	settings *config.Map
	options  *config.Map
	env      map[string]string
	ctx      *Context
	logger   *slog.Logger
}

func newCore(ctx *Context, label string, settings *config.Map) core {
	if settings == nil {
		settings = config.NewMap()
	}
	return core{
		label:    label,
		settings: settings,
		options:  config.NewMap(),
		env:      make(map[string]string),
		ctx:      ctx,
		logger:   log.WithJob(label),
	}
}

func (c *core) Label() string {
	return c.label
}

func (c *core) Settings() *config.Map {
	return c.settings
}

// Override deep-merges overrides into settings, then refreshes the working
// options and env copies additively from settings.options and
// settings.environment.
func (c *core) Override(overrides *config.Map) {
	c.logger.Debug("overriding settings", "overrides", overrides.String())
	c.settings.Merge(overrides)
	c.refreshWorkingCopies()
}

func (c *core) refreshWorkingCopies() {
	if opts, ok := c.settings.GetMap("options"); ok {
		c.options.Merge(opts)
	}
	if envMap, ok := c.settings.GetMap("environment"); ok {
		for _, k := range envMap.Keys() {
			v, _ := envMap.Get(k)
			c.env[k] = formatValue(v)
		}
	}
}

// decision is the three-valued result of a precondition check.
type decision int

const (
	runUnconditional decision = iota // no guard declared
	runYes
	runNo
)

// shouldRun evaluates the job's guard, if any. The guard job's failure is
// converted into a boolean here and never propagates, regardless of fail_ok.
// run_if wins when both guards are declared.
func (c *core) shouldRun() (decision, error) {
	var guard string
	invert := false
	if v, ok := c.settings.GetString("run_if"); ok {
		guard = v
	} else if v, ok := c.settings.GetString("run_unless"); ok {
		guard = v
		invert = true
	} else {
		return runUnconditional, nil
	}

	child, err := Resolve(c.ctx.child(), guard)
	if err != nil {
		return runNo, err
	}
	c.logger.Info("checking preconditions")
	if err := child.Run(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if invert {
				return runYes, nil
			}
			return runNo, nil
		}
		return runNo, err
	}
	if invert {
		return runNo, nil
	}
	return runYes, nil
}

// runGuarded is the shared Run flow: a false precondition skips execution.
func (c *core) runGuarded(execute func() error) error {
	dec, err := c.shouldRun()
	if err != nil {
		return err
	}
	if dec == runNo {
		c.logger.Info("skipping job due to precondition")
		return nil
	}
	return execute()
}
