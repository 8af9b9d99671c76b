package job

import (
	"github.com/L3viathan/crun/internal/builtin"
	"github.com/L3viathan/crun/internal/config"
)

// BuiltinJob runs an in-process routine from the builtin registry. Its
// settings come from a config entry named after the builtin (prefix
// stripped), when one exists.
type BuiltinJob struct {
	core
	fn builtin.Func
}

func newBuiltinJob(ctx *Context, label string) (*BuiltinJob, error) {
	name := label[len(BuiltinPrefix):]
	fn, ok := builtin.Lookup(name)
	if !ok {
		return nil, &NotFoundError{Label: label}
	}

	settings := config.NewMap()
	if spec, ok := ctx.Tree.Spec(name); ok {
		settings = spec.Clone()
	}
	j := &BuiltinJob{core: newCore(ctx, name, settings), fn: fn}
	j.refreshWorkingCopies()
	return j, nil
}

// Run checks the precondition and invokes the routine.
func (j *BuiltinJob) Run() error {
	return j.runGuarded(j.execute)
}

func (j *BuiltinJob) execute() error {
	if j.ctx.Engine.DryRun() {
		j.logger.Info("would run builtin")
		return nil
	}
	j.logger.Info("running job")
	if err := j.fn(j.label, j.options, j.settings, j.ctx.GlobalOptions); err != nil {
		return err
	}
	j.logger.Info("job finished")
	return nil
}
