package job

import (
	"github.com/L3viathan/crun/internal/config"
)

// Pipeline is an ordered sequence of child jobs, resolved eagerly at
// construction and run sequentially.
type Pipeline struct {
	core
	jobs []Job
}

func newPipeline(ctx *Context, label string, spec *config.Map) (*Pipeline, error) {
	p := &Pipeline{core: newCore(ctx, label, spec.Clone())}
	p.refreshWorkingCopies()

	steps, ok := p.settings.GetStringSlice("pipeline")
	if !ok {
		return nil, &ConfigError{Msg: "job " + label + ": pipeline must be a list of labels"}
	}
	for _, step := range steps {
		// An inline override keyed by the step's label is folded into the
		// tree entry before resolving, so base inheritance on the child
		// sees it too.
		if override, ok := p.settings.GetMap(step); ok {
			if childSpec, ok := ctx.Tree.Spec(step); ok {
				childSpec.Merge(override)
			}
		}
		child, err := Resolve(ctx.child(), step)
		if err != nil {
			return nil, err
		}
		p.jobs = append(p.jobs, child)
	}
	return p, nil
}

// Jobs exposes the resolved children in declared order.
func (p *Pipeline) Jobs() []Job {
	return p.jobs
}

// Run checks the precondition and runs every child in order.
func (p *Pipeline) Run() error {
	return p.runGuarded(p.execute)
}

// execute runs the children sequentially. A per-step override under the
// child's label is re-applied immediately before the child runs; this is
// distinct from the construction-time merge, which influenced how the child
// resolved. The first unrecovered child failure aborts the remainder.
func (p *Pipeline) execute() error {
	p.logger.Info("running pipeline")
	for _, child := range p.jobs {
		if override, ok := p.settings.GetMap(child.Label()); ok {
			child.Override(override)
		}
		if err := child.Run(); err != nil {
			return err
		}
	}
	p.logger.Info("pipeline finished")
	return nil
}
