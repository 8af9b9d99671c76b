package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/L3viathan/crun/internal/config"
	"github.com/L3viathan/crun/internal/history"
)

// History prints the most recent command runs recorded in the run log. The
// database lives under .crun next to the config document, which is the
// working directory by the time any job runs; a `db` option or setting
// overrides the path, a `limit` option caps the rows.
func History(label string, options, settings, global *config.Map) error {
	path := stringOption(options, settings, "db", filepath.Join(".crun", "history.db"))
	if _, err := os.Stat(path); err != nil {
		fmt.Println("no run history yet")
		return nil
	}

	limit := 10
	if v, ok := options.Get("limit"); ok {
		switch t := v.(type) {
		case int:
			limit = t
		case string:
			if n, err := strconv.Atoi(t); err == nil {
				limit = n
			}
		}
	}

	ctx := context.Background()
	store, err := history.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer store.Close()

	recs, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if len(recs) == 0 {
		fmt.Println("no run history yet")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tJOB\tEXIT\tTOOK\tCOMMAND")
	for _, rec := range recs {
		mark := strconv.Itoa(rec.ExitCode)
		if rec.DryRun {
			mark = "dry"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Label, mark, rec.Duration, rec.Command)
	}
	return w.Flush()
}
