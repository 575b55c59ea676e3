package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type overlayFile struct {
	Components map[string]ComponentType `json:"components" yaml:"components"`
}

// LoadFS walks fsys and parses JSON/YAML overlay files of the form
// `components: {<type>: {category, description, props, children}}`. A type
// defined in two files is an error. A nil fsys yields no overlays.
func LoadFS(fsys fs.FS) ([]ComponentType, error) {
	if fsys == nil {
		return nil, nil
	}

	seen := make(map[string]string)
	var overlays []ComponentType

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isOverlayFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := parseOverlay(data, path)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(doc.Components))
		for name := range doc.Components {
			names = append(names, name)
		}
		slices.Sort(names)

		for _, raw := range names {
			name := normalizeType(raw)
			if name == "" {
				return fmt.Errorf("schema: file %s defines an empty component type", path)
			}
			if prev, exists := seen[name]; exists {
				return fmt.Errorf("schema: duplicate component %q (files %s and %s)", name, prev, path)
			}
			seen[name] = path

			entry := doc.Components[raw]
			entry.Type = name
			if entry.Children.Mode == "" {
				entry.Children = AllowAll()
			}
			for propName, def := range entry.Props {
				def.Default = normalizeValue(def.Default)
				entry.Props[propName] = def
			}
			overlays = append(overlays, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return overlays, nil
}

// LoadCatalogue merges overlays from fsys over base.
func LoadCatalogue(base *Catalogue, fsys fs.FS) (*Catalogue, error) {
	overlays, err := LoadFS(fsys)
	if err != nil {
		return nil, err
	}
	if len(overlays) == 0 && base != nil {
		return base, nil
	}
	return Merge(base, overlays...)
}

func parseOverlay(data []byte, source string) (overlayFile, error) {
	var doc overlayFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return overlayFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return overlayFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return overlayFile{}, fmt.Errorf("schema: parse %s: %w", source, err)
	}
	return doc, nil
}

func isOverlayFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
