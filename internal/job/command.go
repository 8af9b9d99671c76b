package job

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/shell"
)

// CommandJob renders its command template and hands the result to the shell.
type CommandJob struct {
	core
	template string
}

func newCommandJob(ctx *Context, label string, spec *config.Map) (*CommandJob, error) {
	j := &CommandJob{core: newCore(ctx, label, spec.Clone())}

	template, ok := j.settings.GetString("command")
	if !ok {
		return nil, &ConfigError{Msg: "job " + label + " has no command"}
	}
	j.template = template

	// The working environment starts from the process environment; the
	// job's own environment settings layer on top via refreshWorkingCopies.
	for _, entry := range os.Environ() {
		k, v, _ := strings.Cut(entry, "=")
		j.env[k] = v
	}
	j.refreshWorkingCopies()
	return j, nil
}

// Run checks the precondition and executes the command.
func (j *CommandJob) Run() error {
	return j.runGuarded(j.execute)
}

func (j *CommandJob) execute() error {
	rendered, err := renderTemplate(j.label, j.template, j.settings, j.env, j.ctx.Positional)
	if err != nil {
		return err
	}
	rendered += bakeOptions(j.options)

	j.logger.Info("running job")
	stdoutPath, _ := j.settings.GetString("stdout")
	stderrPath, _ := j.settings.GetString("stderr")

	code, err := j.ctx.Engine.Run(j.ctx.Ctx, shell.Invocation{
		Label:      j.label,
		Command:    rendered,
		Env:        environSlice(j.env),
		StdoutPath: stdoutPath,
		StderrPath: stderrPath,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		if j.settings.Bool("fail_ok") {
			j.logger.Info("job finished")
			return nil
		}
		j.logger.Error("job returned with non-zero exit code", "code", code)
		return &ExitError{Label: j.label, Code: code}
	}
	j.logger.Info("job finished")
	return nil
}

// bakeOptions renders the working options as command-line flags, in
// insertion order: true values as --key, false values skipped, anything
// else as --key=value. The leading space separates them from the command.
func bakeOptions(options *config.Map) string {
	var parts []string
	for _, key := range options.Keys() {
		val, _ := options.Get(key)
		if b, ok := val.(bool); ok {
			if b {
				parts = append(parts, "--"+key)
			}
			continue
		}
		parts = append(parts, fmt.Sprintf("--%s=%s", key, formatValue(val)))
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

// environSlice flattens the working environment for exec, sorted for
// deterministic invocations.
func environSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
