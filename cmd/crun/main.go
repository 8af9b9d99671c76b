// Command crun runs jobs and pipelines according to configuration files.
//
// Usage: crun [flags] [label] [--key=value | --flag | --] [positional...]
//
// Without a label, the configured default_job runs; without that, the
// available jobs are listed. Tokens after the label become settings
// overrides (dotted keys nest) and positional arguments for template
// interpolation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/L3viathan/crun/internal/api"
	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/history"
	"github.com/L3viathan/crun/internal/job"
	"github.com/L3viathan/crun/internal/log"
	"github.com/L3viathan/crun/internal/shell"
	"github.com/L3viathan/crun/internal/ui"
)

// Exit codes, part of the CLI contract.
const (
	exitOK            = 0
	exitJobFailed     = 1
	exitConfigProblem = 2
	exitNotFound      = 3
	exitBadInterp     = 4
	exitBadTemplate   = 5
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

// counter is a repeatable boolean flag: each occurrence increments it.
type counter int

func (c *counter) String() string { return strconv.Itoa(int(*c)) }

func (c *counter) Set(string) error { *c++; return nil }

func (c *counter) IsBoolFlag() bool { return true }

func runCLI(args []string) int {
	fs := flag.NewFlagSet("crun", flag.ContinueOnError)
	var (
		configPath = fs.String("config", config.DefaultFilename, "configuration file, searched for upward from the working directory")
		colorMode  = fs.String("color", "auto", "color output: always, auto or never")
		dryRun     = fs.Bool("dry-run", false, "report what would run without spawning anything")
		logFormat  = fs.String("log-format", "text", "log output format: text or json")
		serve      = fs.Bool("serve", false, "start the HTTP trigger server instead of running a job")
		listen     = fs.String("listen", "127.0.0.1:8320", "listen address for --serve")
		verbose    counter
		quiet      counter
	)
	fs.Var(&verbose, "v", "more verbose logging (repeatable)")
	fs.Var(&quiet, "q", "quieter logging (repeatable)")
	fs.StringVar(configPath, "c", *configPath, "shorthand for -config")
	if err := fs.Parse(args); err != nil {
		return exitConfigProblem
	}

	ui.SetColorMode(*colorMode)
	log.Setup("INFO", *logFormat)
	log.Adjust(int(quiet) - int(verbose))
	theme := ui.NewDefaultTheme()

	log.Debug("loading config")
	tree, resolvedPath, err := config.Load(*configPath)
	if err != nil {
		return fatal(theme, err, exitConfigProblem)
	}

	if *serve {
		return runServe(theme, resolvedPath, *listen)
	}

	label := fs.Arg(0)
	rest := fs.Args()
	if len(rest) > 0 {
		rest = rest[1:]
	}
	if label == "" {
		label = tree.DefaultJob()
	}
	if label == "" {
		listJobs(theme, tree)
		return exitOK
	}
	overrides, positional := parseTokens(rest)

	store, fingerprint := openHistory(resolvedPath)
	if store != nil {
		defer store.Close()
	}

	engine := shell.New(*dryRun, store, fingerprint)
	jctx := job.NewContext(context.Background(), tree, engine, positional, overrides)

	j, err := job.Resolve(jctx, label)
	if err != nil {
		return fatal(theme, err, exitCodeFor(err))
	}

	log.Debug("applying overrides from options")
	j.Override(overrides)

	if err := j.Run(); err != nil {
		return fatal(theme, err, exitCodeFor(err))
	}
	return exitOK
}

// openHistory opens the run-history store next to the config document. Both
// the store and the fingerprint are best effort: a failure downgrades to a
// warning and the run proceeds unrecorded.
func openHistory(resolvedPath string) (*history.Store, string) {
	fingerprint, err := config.Fingerprint(resolvedPath)
	if err != nil {
		log.Warn("failed to fingerprint config", "error", err)
	}
	store, err := history.Open(context.Background(), history.DefaultPath(resolvedPath))
	if err != nil {
		log.Warn("failed to open run history", "error", err)
		return nil, fingerprint
	}
	return store, fingerprint
}

func listJobs(theme ui.Theme, tree *config.Tree) {
	fmt.Println(theme.Heading.Render("Available jobs:"))
	for _, label := range tree.Labels() {
		line := "\t" + theme.Label.Render(label)
		if aliases := tree.AliasesOf(label); len(aliases) > 0 {
			line += theme.Alias.Render(" (" + strings.Join(aliases, ", ") + ")")
		}
		fmt.Println(line)
	}
}

func runServe(theme ui.Theme, resolvedPath, listen string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := api.New(api.Config{Listen: listen}, &jobRunner{configPath: resolvedPath})
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fatal(theme, err, exitJobFailed)
	}
	return exitOK
}

// fatal reports err on the single diagnostic channel and returns code.
func fatal(theme ui.Theme, err error, code int) int {
	fmt.Fprintln(os.Stderr, theme.Fatal.Render(err.Error()))
	return code
}

// exitCodeFor maps the error taxonomy onto the CLI exit codes.
func exitCodeFor(err error) int {
	var (
		notFound *job.NotFoundError
		interp   *job.InterpolationError
		exit     *job.ExitError
		cfg      *job.ConfigError
		cycle    *job.CycleError
	)
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &exit):
		return exitJobFailed
	case errors.As(err, &notFound):
		return exitNotFound
	case errors.As(err, &interp):
		if interp.Malformed {
			return exitBadTemplate
		}
		return exitBadInterp
	case errors.As(err, &cfg), errors.As(err, &cycle):
		return exitConfigProblem
	default:
		return exitJobFailed
	}
}
