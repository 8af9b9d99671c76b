package main

import (
	"context"
	"errors"
	"sort"

	"github.com/L3viathan/crun/internal/api"
	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/job"
	"github.com/L3viathan/crun/internal/shell"
)

// jobRunner adapts the resolution/execution engine to the HTTP trigger
// server. The config document is reloaded for every run so in-place tree
// mutation never leaks between requests.
type jobRunner struct {
	configPath string
}

func (r *jobRunner) RunJob(ctx context.Context, req api.RunRequest) api.RunResult {
	result := api.RunResult{RunID: req.RunID, Label: req.Label}

	tree, resolvedPath, err := config.Load(r.configPath)
	if err != nil {
		result.Status = "error"
		result.Error = err.Error()
		return result
	}

	overrides := config.NewMap()
	keys := make([]string, 0, len(req.Overrides))
	for k := range req.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		overrides.SetPath(k, req.Overrides[k])
	}

	store, fingerprint := openHistory(resolvedPath)
	if store != nil {
		defer store.Close()
	}

	engine := shell.New(req.DryRun, store, fingerprint)
	jctx := job.NewContext(ctx, tree, engine, req.Positional, overrides)

	j, err := job.Resolve(jctx, req.Label)
	if err != nil {
		result.Status = "error"
		result.Error = err.Error()
		return result
	}
	j.Override(overrides)

	if err := j.Run(); err != nil {
		var exitErr *job.ExitError
		if errors.As(err, &exitErr) {
			result.Status = "failed"
			result.ExitCode = exitErr.Code
		} else {
			result.Status = "error"
		}
		result.Error = err.Error()
		return result
	}
	result.Status = "succeeded"
	return result
}

func (r *jobRunner) ListJobs() ([]api.JobInfo, error) {
	tree, _, err := config.Load(r.configPath)
	if err != nil {
		return nil, err
	}
	var jobs []api.JobInfo
	for _, label := range tree.Labels() {
		jobs = append(jobs, api.JobInfo{Label: label, Aliases: tree.AliasesOf(label)})
	}
	return jobs, nil
}
