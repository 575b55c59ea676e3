package designer

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// manifestFile is the on-disk YAML shape of a theme manifest.
type manifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version,omitempty"`
	Tokens    map[string]string      `yaml:"tokens,omitempty"`
	Templates map[string]string      `yaml:"templates,omitempty"`
	Assets    assetsFile             `yaml:"assets,omitempty"`
	Variants  map[string]variantFile `yaml:"variants,omitempty"`
}

type assetsFile struct {
	Prefix string            `yaml:"prefix,omitempty"`
	Files  map[string]string `yaml:"files,omitempty"`
}

type variantFile struct {
	Tokens    map[string]string `yaml:"tokens,omitempty"`
	Templates map[string]string `yaml:"templates,omitempty"`
	Assets    assetsFile        `yaml:"assets,omitempty"`
}

// EncodeManifest writes manifest as YAML suitable for LoadDir.
func EncodeManifest(manifest *theme.Manifest) ([]byte, error) {
	if manifest == nil {
		return nil, fmt.Errorf("designer: manifest is required")
	}
	doc := manifestFile{
		Name:      manifest.Name,
		Version:   manifest.Version,
		Tokens:    manifest.Tokens,
		Templates: manifest.Templates,
		Assets:    assetsFile{Prefix: manifest.Assets.Prefix, Files: manifest.Assets.Files},
	}
	if len(manifest.Variants) > 0 {
		doc.Variants = make(map[string]variantFile, len(manifest.Variants))
		for name, variant := range manifest.Variants {
			doc.Variants[name] = variantFile{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    assetsFile{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
			}
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("designer: encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("designer: encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeManifest parses one YAML manifest.
func DecodeManifest(data []byte) (*theme.Manifest, error) {
	var doc manifestFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("designer: decode manifest: %w", err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return nil, fmt.Errorf("designer: manifest name is required")
	}
	manifest := &theme.Manifest{
		Name:      doc.Name,
		Version:   doc.Version,
		Tokens:    doc.Tokens,
		Templates: doc.Templates,
		Assets:    theme.Assets{Prefix: doc.Assets.Prefix, Files: doc.Assets.Files},
	}
	if len(doc.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(doc.Variants))
		for name, variant := range doc.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    theme.Assets{Prefix: variant.Assets.Prefix, Files: variant.Assets.Files},
			}
		}
	}
	return manifest, nil
}

// LoadDir reads every *.yaml and *.yml manifest in dir, sorted by file name.
func LoadDir(dir string) ([]*theme.Manifest, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS reads manifests from root inside fsys.
func LoadFS(fsys fs.FS, root string) ([]*theme.Manifest, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("designer: read themes: %w", err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch path.Ext(entry.Name()) {
		case ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	manifests := make([]*theme.Manifest, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, path.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("designer: read %s: %w", name, err)
		}
		manifest, err := DecodeManifest(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}
