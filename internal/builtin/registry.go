// Package builtin holds the in-process routines that run in place of a
// shell command when a job label carries the underscore prefix.
package builtin

import (
	"github.com/L3viathan/crun/internal/config"
)

// Func is the uniform call signature every builtin implements. label is the
// builtin name with the prefix stripped; options and settings are the
// calling job's working copies; global carries the root job's CLI overrides.
type Func func(label string, options, settings, global *config.Map) error

// registry is the closed mapping from builtin name to routine, populated at
// startup. No reflection, no dynamic lookup.
var registry = map[string]Func{
	"ping":        Ping,
	"versionbump": VersionBump,
	"history":     History,
}

// Lookup returns the builtin routine registered under name.
func Lookup(name string) (Func, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Names returns every registered builtin name.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

// stringOption reads key from options first, then settings, with a default.
func stringOption(options, settings *config.Map, key, fallback string) string {
	if v, ok := options.GetString(key); ok {
		return v
	}
	if v, ok := settings.GetString(key); ok {
		return v
	}
	return fallback
}

// boolOption reads a flag from options first, then global options.
func boolOption(options, global *config.Map, key string) bool {
	if options.Bool(key) {
		return true
	}
	return global.Bool(key)
}
