package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultFiles embed.FS

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrDuplicateKey     = errors.New("duplicate override key")
)

// Catalog holds text templates keyed by dotted path, e.g. "status.turn".
type Catalog struct {
	mu   sync.RWMutex
	data map[string]string
}

// New loads the embedded messages and applies the yaml files of overrideDir on top.
func New(overrideDir string) (*Catalog, error) {
	catalog := &Catalog{data: make(map[string]string)}

	raw, err := fs.ReadFile(defaultFiles, "messages.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded messages: %w", err)
	}

	if err = catalog.apply(raw); err != nil {
		return nil, fmt.Errorf("failed to parse embedded messages: %w", err)
	}

	if strings.TrimSpace(overrideDir) != "" {
		if err = catalog.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

func (that *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read messages dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	seen := make(map[string]string)
	for _, name := range files {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}

		flat, err := parseFlat(raw)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}

		for key := range flat {
			if prev, ok := seen[key]; ok {
				return fmt.Errorf("%w: %q in %s and %s", ErrDuplicateKey, key, prev, name)
			}
			seen[key] = name
		}

		that.merge(flat)
	}

	return nil
}

func (that *Catalog) apply(raw []byte) error {
	flat, err := parseFlat(raw)
	if err != nil {
		return err
	}

	that.merge(flat)

	return nil
}

func (that *Catalog) merge(flat map[string]string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for key, value := range flat {
		that.data[key] = value
	}
}

func parseFlat(raw []byte) (map[string]string, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}

	flat := make(map[string]string)
	if err := flatten(tree, "", flat); err != nil {
		return nil, err
	}

	return flat, nil
}

func flatten(src any, prefix string, out map[string]string) error {
	switch value := src.(type) {
	case map[string]any:
		for key, child := range value {
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flatten(child, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key")
		}
		out[prefix] = value
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, value)
	}
}

// Render executes the template stored under key. Missing keys in data are errors.
func (that *Catalog) Render(key string, data any) (string, error) {
	that.mu.RLock()
	text, ok := that.data[key]
	that.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, key)
	}

	tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", key, err)
	}

	var out strings.Builder
	if err = tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", key, err)
	}

	return out.String(), nil
}
