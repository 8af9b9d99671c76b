package job

import "fmt"

// NotFoundError reports a label that resolved to nothing: unknown, or a
// prefix shared by several jobs.
type NotFoundError struct {
	Label string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no job called %s was found", e.Label)
}

// ConfigError reports a structurally broken job entry, such as a command job
// without a command or a base naming an undefined job.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// InterpolationError reports a command template that could not be rendered.
// Malformed marks the empty/purely-numeric placeholder case, which gets its
// own exit code; otherwise Ref names the missing key.
type InterpolationError struct {
	Label     string
	Ref       string
	Malformed bool
}

func (e *InterpolationError) Error() string {
	if e.Malformed {
		return fmt.Sprintf("broken config in job %s: don't use {braces} that are empty or contain numbers", e.Label)
	}
	return fmt.Sprintf("can't interpolate %s in command of job %s", e.Ref, e.Label)
}

// ExitError reports a command that ran and exited non-zero. It propagates up
// through enclosing pipelines unless the failing job declared fail_ok.
type ExitError struct {
	Label string
	Code  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("job %s returned with non-zero exit code %d", e.Label, e.Code)
}

// CycleError reports that resolution recursed past the depth bound, which in
// practice means a job guards or contains itself.
type CycleError struct {
	Label string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("resolution depth exceeded at job %s: cyclic precondition or pipeline", e.Label)
}
