package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFilename is the document searched for when --config is not given.
const DefaultFilename = "project.yaml"

// Load locates and parses the job document. A bare filename is searched for
// upward from the current working directory; the search stops at the
// filesystem root. A root-level `base` key names another document, resolved
// relative to the including document's directory and deep-merged underneath
// it. Once resolved, the process working directory is changed to the
// document's directory so job commands run relative to it.
func Load(path string) (*Tree, string, error) {
	resolved, err := discover(path)
	if err != nil {
		return nil, "", err
	}
	doc, err := loadDocument(resolved, map[string]bool{})
	if err != nil {
		return nil, "", err
	}
	if err := os.Chdir(filepath.Dir(resolved)); err != nil {
		return nil, "", fmt.Errorf("failed to enter config directory: %w", err)
	}
	return NewTree(doc), resolved, nil
}

// discover walks parent directories until path exists. Absolute paths are
// taken as-is.
func discover(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("configuration file %s not found", path)
		}
		return path, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // stop at the root
		}
		dir = parent
	}
	return "", fmt.Errorf("configuration file %s not found", path)
}

// loadDocument parses one document and folds in its base chain. visited
// guards against base cycles.
func loadDocument(path string, visited map[string]bool) (*Map, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", path, err)
	}
	if visited[abs] {
		return nil, fmt.Errorf("circular base reference: %s", abs)
	}
	visited[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("configuration file %s not found", abs)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}

	basePath, ok := doc.GetString(KeyBase)
	if !ok {
		return doc, nil
	}
	if !filepath.IsAbs(basePath) {
		basePath = filepath.Join(filepath.Dir(abs), basePath)
	}
	baseDoc, err := loadDocument(basePath, visited)
	if err != nil {
		return nil, fmt.Errorf("base of %s: %w", abs, err)
	}
	doc.MergeUnder(baseDoc)
	return doc, nil
}
