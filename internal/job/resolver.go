package job

import (
	"strings"

	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/log"
)

// BuiltinPrefix marks labels that name in-process builtins instead of
// configured jobs.
const BuiltinPrefix = "_"

// Resolve maps a requested label to a Job: base inheritance is folded into
// the tree entry, aliases rewrite to their canonical label, an unambiguous
// prefix completes to the full label, and the result is classified as
// pipeline, command job or builtin.
func Resolve(ctx *Context, label string) (Job, error) {
	if ctx.depth > maxDepth {
		return nil, &CycleError{Label: label}
	}
	log.Debug("resolving label", "label", label, "depth", ctx.depth)

	if err := ctx.Tree.ApplyInheritance(label); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	if canonical, ok := ctx.Tree.Aliases()[label]; ok {
		label = canonical
	}

	if !ctx.Tree.Has(label) && !strings.HasPrefix(label, BuiltinPrefix) {
		if match, ok := expandPrefix(ctx.Tree, label); ok {
			label = match
		}
	}

	// The canonical label may differ from the requested one; its base
	// inheritance is applied on first resolution too.
	if err := ctx.Tree.ApplyInheritance(label); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}

	spec, found := ctx.Tree.Spec(label)
	switch {
	case found && spec.Has("pipeline"):
		log.Debug("making new pipeline", "label", label)
		return newPipeline(ctx, label, spec)
	case found:
		log.Debug("making new command job", "label", label)
		return newCommandJob(ctx, label, spec)
	case strings.HasPrefix(label, BuiltinPrefix):
		log.Debug("making new builtin job", "label", label)
		return newBuiltinJob(ctx, label)
	default:
		return nil, &NotFoundError{Label: label}
	}
}

// expandPrefix completes label to the single job label it prefixes. Zero or
// several candidates leave the label untouched.
func expandPrefix(tree *config.Tree, label string) (string, bool) {
	var matches []string
	for _, candidate := range tree.Labels() {
		if strings.HasPrefix(candidate, label) {
			matches = append(matches, candidate)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}
