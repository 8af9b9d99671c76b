package builtin

import (
	"fmt"

	"github.com/L3viathan/crun/internal/config"
)

// Ping prints a configurable message followed by a fixed acknowledgement.
// It exists as a diagnostic to check that resolution, overrides and the
// builtin plumbing work end to end.
func Ping(label string, options, settings, global *config.Map) error {
	msg := stringOption(options, settings, "msg", "ping")
	fmt.Println(msg, "pong!")
	return nil
}
