package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/shell"
)

func testContext(t *testing.T, doc string) *Context {
	t.Helper()
	m, err := config.ParseDocument([]byte(doc))
	require.NoError(t, err)
	engine := shell.New(false, nil, "")
	return NewContext(context.Background(), config.NewTree(m), engine, nil, nil)
}

func TestResolveClassification(t *testing.T) {
	ctx := testContext(t, `
build:
  command: make
all:
  pipeline: [build]
`)

	j, err := Resolve(ctx, "build")
	require.NoError(t, err)
	assert.IsType(t, &CommandJob{}, j)

	j, err = Resolve(ctx, "all")
	require.NoError(t, err)
	assert.IsType(t, &Pipeline{}, j)

	j, err = Resolve(ctx, "_ping")
	require.NoError(t, err)
	assert.IsType(t, &BuiltinJob{}, j)
	assert.Equal(t, "ping", j.Label())
}

func TestResolveNotFound(t *testing.T) {
	ctx := testContext(t, `build: {command: make}`)

	_, err := Resolve(ctx, "deploy")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "deploy", nf.Label)

	_, err = Resolve(ctx, "_bogus")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "_bogus", nf.Label)
}

func TestResolveAlias(t *testing.T) {
	ctx := testContext(t, `
build:
  command: make
  aliases: [b]
`)
	j, err := Resolve(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "build", j.Label())

	// idempotent: resolving again lands on the same canonical label
	j2, err := Resolve(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, j.Label(), j2.Label())
}

func TestResolvePrefix(t *testing.T) {
	ctx := testContext(t, `
deploy:
  command: ship it
build:
  command: make
`)
	j, err := Resolve(ctx, "dep")
	require.NoError(t, err)
	assert.Equal(t, "deploy", j.Label())
}

func TestResolveAmbiguousPrefixFails(t *testing.T) {
	ctx := testContext(t, `
build-frontend:
  command: make fe
build-backend:
  command: make be
`)
	_, err := Resolve(ctx, "build")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestResolveBaseInheritance(t *testing.T) {
	ctx := testContext(t, `
common:
  command: make
  environment:
    CC: gcc
build:
  base: common
  environment:
    CFLAGS: -O2
`)
	j, err := Resolve(ctx, "build")
	require.NoError(t, err)

	cj, ok := j.(*CommandJob)
	require.True(t, ok)
	assert.Equal(t, "gcc", cj.env["CC"])
	assert.Equal(t, "-O2", cj.env["CFLAGS"])
}

func TestResolveBaseOnCanonicalLabelViaAlias(t *testing.T) {
	ctx := testContext(t, `
common:
  command: make
build:
  base: common
  aliases: [b]
`)
	j, err := Resolve(ctx, "b")
	require.NoError(t, err)
	cmd, _ := j.Settings().GetString("command")
	assert.Equal(t, "make", cmd)
}

func TestResolveCommandJobWithoutCommand(t *testing.T) {
	ctx := testContext(t, `build: {options: {v: true}}`)
	_, err := Resolve(ctx, "build")
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Contains(t, cfg.Error(), "no command")
}

func TestResolveUndefinedBase(t *testing.T) {
	ctx := testContext(t, `build: {base: ghost, command: make}`)
	_, err := Resolve(ctx, "build")
	var cfg *ConfigError
	require.ErrorAs(t, err, &cfg)
}

func TestResolvePipelineCycle(t *testing.T) {
	ctx := testContext(t, `
loop:
  pipeline: [loop]
`)
	_, err := Resolve(ctx, "loop")
	var cyc *CycleError
	require.ErrorAs(t, err, &cyc)
}
