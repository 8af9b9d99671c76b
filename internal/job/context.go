package job

import (
	"context"

	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/shell"
)

// maxDepth bounds recursive resolution. Preconditions and pipeline steps may
// name other jobs freely, including each other, so a cycle shows up as depth
// growth rather than a stack overflow.
const maxDepth = 32

// Context carries the state shared by a whole run: the config tree, the
// execution engine, and the root job's positional arguments and CLI
// overrides. Descendant jobs read it; only the CLI layer builds one.
type Context struct {
	Ctx           context.Context
	Tree          *config.Tree
	Engine        *shell.Engine
	Positional    []string
	GlobalOptions *config.Map

	depth int
}

// NewContext builds the root context for one run.
func NewContext(ctx context.Context, tree *config.Tree, engine *shell.Engine, positional []string, global *config.Map) *Context {
	if global == nil {
		global = config.NewMap()
	}
	return &Context{
		Ctx:           ctx,
		Tree:          tree,
		Engine:        engine,
		Positional:    positional,
		GlobalOptions: global,
	}
}

// child returns a context one resolution level deeper, sharing everything
// else by reference.
func (c *Context) child() *Context {
	cp := *c
	cp.depth++
	return &cp
}
