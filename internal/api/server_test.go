package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	lastReq RunRequest
	result  RunResult
	jobs    []JobInfo
}

func (f *fakeRunner) RunJob(ctx context.Context, req RunRequest) RunResult {
	f.lastReq = req
	res := f.result
	res.RunID = req.RunID
	res.Label = req.Label
	return res
}

func (f *fakeRunner) ListJobs() ([]JobInfo, error) {
	return f.jobs, nil
}

func TestHandleRunJob(t *testing.T) {
	runner := &fakeRunner{result: RunResult{Status: "succeeded"}}
	srv := New(Config{Listen: ":0"}, runner)

	body := strings.NewReader(`{"positional": ["a", "b"], "dry_run": true}`)
	req := httptest.NewRequest(http.MethodPost, "/jobs/build", body)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "build", runner.lastReq.Label)
	assert.Equal(t, []string{"a", "b"}, runner.lastReq.Positional)
	assert.True(t, runner.lastReq.DryRun)
	assert.NotEmpty(t, runner.lastReq.RunID)

	var result RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "succeeded", result.Status)
	assert.Equal(t, "build", result.Label)
}

func TestHandleRunJobFailureStatus(t *testing.T) {
	runner := &fakeRunner{result: RunResult{Status: "failed", ExitCode: 2}}
	srv := New(Config{Listen: ":0"}, runner)

	req := httptest.NewRequest(http.MethodPost, "/jobs/build", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleListJobs(t *testing.T) {
	runner := &fakeRunner{jobs: []JobInfo{
		{Label: "build", Aliases: []string{"b"}},
		{Label: "test"},
	}}
	srv := New(Config{Listen: ":0"}, runner)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var jobs []JobInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 2)
	assert.Equal(t, "build", jobs[0].Label)
}

func TestHandleHealthz(t *testing.T) {
	srv := New(Config{Listen: ":0"}, &fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
