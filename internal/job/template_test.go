package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L3viathan/crun/internal/config"
)

func settingsFrom(t *testing.T, doc string) *config.Map {
	t.Helper()
	m, err := config.ParseDocument([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestRenderTemplate(t *testing.T) {
	settings := settingsFrom(t, `
target: all
options:
  jobs: 4
`)
	env := map[string]string{"HOME": "/home/u", "ENV": "prod"}
	positional := []string{"first", "second"}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{name: "plain text", tmpl: "make all", want: "make all"},
		{name: "settings field", tmpl: "make {target}", want: "make all"},
		{name: "nested settings field", tmpl: "make -j{options.jobs}", want: "make -j4"},
		{name: "env with dollar ref", tmpl: "ls {$HOME}", want: "ls /home/u"},
		{name: "env with dollar brace", tmpl: "deploy --env=${ENV}", want: "deploy --env=prod"},
		{name: "first positional", tmpl: "cp {#1} {#2}", want: "cp first second"},
		{name: "all positionals", tmpl: "run {#0}", want: "run first second"},
		{name: "escaped braces", tmpl: "awk '{{print}}'", want: "awk '{print}'"},
		{name: "bare dollar stays literal", tmpl: "echo $HOME", want: "echo $HOME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderTemplate("j", tt.tmpl, settings, env, positional)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderTemplateErrors(t *testing.T) {
	settings := settingsFrom(t, `target: all`)
	env := map[string]string{"HOME": "/home/u"}
	positional := []string{"one"}

	tests := []struct {
		name      string
		tmpl      string
		ref       string
		malformed bool
	}{
		{name: "unknown settings key", tmpl: "make {missing}", ref: "missing"},
		{name: "unknown env var", tmpl: "deploy --env=${ENV}", ref: "ENV"},
		{name: "unknown env var dollar ref", tmpl: "deploy {$ENV}", ref: "ENV"},
		{name: "positional out of range", tmpl: "cp {#2}", ref: "#2"},
		{name: "empty placeholder", tmpl: "echo {}", malformed: true},
		{name: "numeric placeholder", tmpl: "echo {0}", malformed: true},
		{name: "unclosed placeholder", tmpl: "echo {target", malformed: true},
		{name: "stray closing brace", tmpl: "echo }", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderTemplate("j", tt.tmpl, settings, env, positional)
			require.Error(t, err)
			var ierr *InterpolationError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.malformed, ierr.Malformed)
			if !tt.malformed {
				assert.Equal(t, tt.ref, ierr.Ref)
			}
			assert.Equal(t, "j", ierr.Label)
		})
	}
}

func TestBakeOptions(t *testing.T) {
	opts := settingsFrom(t, `
verbose: true
level: 3
quiet: false
`)
	assert.Equal(t, " --verbose --level=3", bakeOptions(opts))
	assert.Equal(t, "", bakeOptions(config.NewMap()))
}
