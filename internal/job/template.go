package job

import (
	"fmt"
	"strings"

	"github.com/L3viathan/crun/internal/config"
)

// renderTemplate renders a command template against three namespaces:
// settings fields by name (nested mappings addressable with dots),
// environment variables prefixed with $, and positional arguments prefixed
// with # (1-based; #0 is all of them joined by spaces). ${NAME} is accepted
// as a spelling of {$NAME}. Doubled braces escape literal braces.
func renderTemplate(label, tmpl string, settings *config.Map, env map[string]string, positional []string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(tmpl); {
		switch tmpl[i] {
		case '$':
			// ${NAME} addresses the environment namespace.
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				ref, next, err := readPlaceholder(label, tmpl, i+1)
				if err != nil {
					return "", err
				}
				if ref != "" && !strings.HasPrefix(ref, "$") && !strings.HasPrefix(ref, "#") && !allDigits(ref) {
					ref = "$" + ref
				}
				val, err := resolveRef(label, ref, settings, env, positional)
				if err != nil {
					return "", err
				}
				b.WriteString(val)
				i = next
				continue
			}
			b.WriteByte('$')
			i++
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			ref, next, err := readPlaceholder(label, tmpl, i)
			if err != nil {
				return "", err
			}
			val, err := resolveRef(label, ref, settings, env, positional)
			if err != nil {
				return "", err
			}
			b.WriteString(val)
			i = next
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return "", &InterpolationError{Label: label, Malformed: true}
		default:
			b.WriteByte(tmpl[i])
			i++
		}
	}
	return b.String(), nil
}

// readPlaceholder reads {ref} starting at the opening brace and returns the
// ref and the index just past the closing brace.
func readPlaceholder(label, tmpl string, start int) (string, int, error) {
	end := strings.IndexByte(tmpl[start+1:], '}')
	if end < 0 {
		return "", 0, &InterpolationError{Label: label, Malformed: true}
	}
	return tmpl[start+1 : start+1+end], start + end + 2, nil
}

// resolveRef resolves one placeholder reference to its rendered value.
func resolveRef(label, ref string, settings *config.Map, env map[string]string, positional []string) (string, error) {
	// Empty or purely numeric placeholders belong to no namespace and are
	// rejected outright.
	if ref == "" || allDigits(ref) {
		return "", &InterpolationError{Label: label, Malformed: true}
	}
	switch ref[0] {
	case '$':
		if val, ok := env[ref[1:]]; ok {
			return val, nil
		}
		return "", &InterpolationError{Label: label, Ref: ref[1:]}
	case '#':
		idx := ref[1:]
		if !allDigits(idx) || idx == "" {
			return "", &InterpolationError{Label: label, Ref: ref}
		}
		n := 0
		for _, c := range idx {
			n = n*10 + int(c-'0')
		}
		if n == 0 {
			return strings.Join(positional, " "), nil
		}
		if n > len(positional) {
			return "", &InterpolationError{Label: label, Ref: ref}
		}
		return positional[n-1], nil
	default:
		val, ok := settings.GetPath(ref)
		if !ok {
			return "", &InterpolationError{Label: label, Ref: ref}
		}
		return formatValue(val), nil
	}
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *config.Map:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
