package builtin

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/L3viathan/crun/internal/config"
)

var versionPattern = regexp.MustCompile(`version="([^"]+)"`)

// VersionBump rewrites the quoted major.minor.bugfix literal in a packaging
// metadata file (default setup.py, overridable via the `file` setting). The
// component to bump comes from a major/minor flag in the job's options or
// the global CLI options; without either, the bugfix component is bumped.
// Bumping a component zeroes everything below it.
func VersionBump(label string, options, settings, global *config.Map) error {
	level := "bugfix"
	if boolOption(options, global, "major") {
		level = "major"
	} else if boolOption(options, global, "minor") {
		level = "minor"
	}

	file := stringOption(options, settings, "file", "setup.py")
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("versionbump: %w", err)
	}

	var bumpErr error
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if !strings.Contains(line, "version") {
			continue
		}
		lines[i] = versionPattern.ReplaceAllStringFunc(line, func(match string) string {
			literal := versionPattern.FindStringSubmatch(match)[1]
			bumped, err := bump(literal, level)
			if err != nil {
				bumpErr = err
				return match
			}
			return fmt.Sprintf("version=%q", bumped)
		})
	}
	if bumpErr != nil {
		return fmt.Errorf("versionbump: %w", bumpErr)
	}

	if err := os.WriteFile(file, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return fmt.Errorf("versionbump: %w", err)
	}
	return nil
}

func bump(literal, level string) (string, error) {
	parts := strings.Split(literal, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("version %q is not major.minor.bugfix", literal)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return "", fmt.Errorf("version %q is not major.minor.bugfix", literal)
		}
		nums[i] = n
	}
	switch level {
	case "major":
		nums[0]++
		nums[1], nums[2] = 0, 0
	case "minor":
		nums[1]++
		nums[2] = 0
	default:
		nums[2]++
	}
	return fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]), nil
}
