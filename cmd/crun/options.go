package main

import (
	"strings"

	"github.com/L3viathan/crun/internal/config"
)

// parseTokens splits the tokens after the label into settings overrides and
// positional arguments. A --dotted.key nests by dots; --key=value and the
// two-token form --key value carry a value; a bare --flag becomes true.
// Everything after a lone -- is positional.
func parseTokens(tokens []string) (*config.Map, []string) {
	overrides := config.NewMap()
	var positional []string

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if tok == "--" {
			positional = append(positional, tokens[i+1:]...)
			break
		}
		if !strings.HasPrefix(tok, "--") {
			positional = append(positional, tok)
			i++
			continue
		}
		key := tok[2:]
		if k, v, found := strings.Cut(key, "="); found {
			overrides.SetPath(k, v)
			i++
			continue
		}
		if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "--") {
			overrides.SetPath(key, tokens[i+1])
			i += 2
			continue
		}
		// no next value, or the next token is another option: a flag
		overrides.SetPath(key, true)
		i++
	}
	return overrides, positional
}
