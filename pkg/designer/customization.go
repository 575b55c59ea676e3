package designer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DarkVariant is the variant name produced for Customization.Dark.
const DarkVariant = "dark"

// Widget positions accepted by Customization.Position.
var Positions = []string{"bottom-right", "bottom-left", "top-right", "top-left"}

var (
	namePattern   = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	colorPattern  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	radiusPattern = regexp.MustCompile(`^(?:0|\d+(?:\.\d+)?(?:px|rem|em|%))$`)
)

// ErrInvalidCustomization wraps every validation failure.
var ErrInvalidCustomization = errors.New("designer: invalid customization")

// Customization describes the appearance of the chat widget that hosts
// generated components.
type Customization struct {
	Name         string         `yaml:"name" json:"name"`
	Version      string         `yaml:"version,omitempty" json:"version,omitempty"`
	PrimaryColor string         `yaml:"primaryColor,omitempty" json:"primaryColor,omitempty"`
	AccentColor  string         `yaml:"accentColor,omitempty" json:"accentColor,omitempty"`
	Background   string         `yaml:"background,omitempty" json:"background,omitempty"`
	Foreground   string         `yaml:"foreground,omitempty" json:"foreground,omitempty"`
	Radius       string         `yaml:"radius,omitempty" json:"radius,omitempty"`
	FontFamily   string         `yaml:"fontFamily,omitempty" json:"fontFamily,omitempty"`
	Position     string         `yaml:"position,omitempty" json:"position,omitempty"`
	Greeting     string         `yaml:"greeting,omitempty" json:"greeting,omitempty"`
	Dark         *Customization `yaml:"dark,omitempty" json:"dark,omitempty"`
}

// Default returns the stock light widget with a dark variant.
func Default() Customization {
	return Customization{
		Name:         "default",
		Version:      "1.0.0",
		PrimaryColor: "#2563eb",
		AccentColor:  "#f59e0b",
		Background:   "#ffffff",
		Foreground:   "#111827",
		Radius:       "8px",
		FontFamily:   "system-ui, sans-serif",
		Position:     "bottom-right",
		Greeting:     "Hi! What would you like to see?",
		Dark: &Customization{
			PrimaryColor: "#60a5fa",
			Background:   "#111827",
			Foreground:   "#f9fafb",
		},
	}
}

// Validate reports every problem found, joined into one error.
func (c Customization) Validate() error {
	var errs []error
	if !namePattern.MatchString(c.Name) {
		errs = append(errs, fmt.Errorf("name %q must be lowercase letters, digits, or dashes", c.Name))
	}
	errs = append(errs, c.validateAppearance("")...)
	if c.Position != "" && !contains(Positions, c.Position) {
		errs = append(errs, fmt.Errorf("position %q must be one of %s", c.Position, strings.Join(Positions, ", ")))
	}
	if strings.ContainsAny(c.Greeting, "\r\n") {
		errs = append(errs, fmt.Errorf("greeting must be a single line"))
	}
	if c.Dark != nil {
		if c.Dark.Dark != nil {
			errs = append(errs, fmt.Errorf("dark: nested variants are not supported"))
		}
		errs = append(errs, c.Dark.validateAppearance("dark.")...)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidCustomization, errors.Join(errs...))
}

func (c Customization) validateAppearance(prefix string) []error {
	var errs []error
	for _, field := range []struct{ name, value string }{
		{"primaryColor", c.PrimaryColor},
		{"accentColor", c.AccentColor},
		{"background", c.Background},
		{"foreground", c.Foreground},
	} {
		if field.value != "" && !colorPattern.MatchString(field.value) {
			errs = append(errs, fmt.Errorf("%s%s %q is not a hex color", prefix, field.name, field.value))
		}
	}
	if c.Radius != "" && !radiusPattern.MatchString(c.Radius) {
		errs = append(errs, fmt.Errorf("%sradius %q must be a length such as 8px", prefix, c.Radius))
	}
	if strings.ContainsAny(c.FontFamily, ";{}<>") {
		errs = append(errs, fmt.Errorf("%sfontFamily contains forbidden characters", prefix))
	}
	return errs
}

// Tokens maps the customization onto theme token names. Empty fields are
// omitted so variants only override what they set.
func (c Customization) Tokens() map[string]string {
	tokens := map[string]string{}
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			tokens[key] = value
		}
	}
	set("primary", c.PrimaryColor)
	set("accent", c.AccentColor)
	set("background", c.Background)
	set("foreground", c.Foreground)
	set("radius", c.Radius)
	set("font-family", c.FontFamily)
	set("position", c.Position)
	if greeting := strings.TrimSpace(c.Greeting); greeting != "" {
		tokens["greeting"] = cssString(greeting)
	}
	return tokens
}

// Manifest validates the customization and converts it into a go-theme
// manifest with an optional dark variant.
func (c Customization) Manifest() (*theme.Manifest, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	version := c.Version
	if version == "" {
		version = "1.0.0"
	}
	manifest := &theme.Manifest{
		Name:    c.Name,
		Version: version,
		Tokens:  c.Tokens(),
	}
	if c.Dark != nil {
		manifest.Variants = map[string]theme.Variant{
			DarkVariant: {Tokens: c.Dark.Tokens()},
		}
	}
	return manifest, nil
}

func cssString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return `"` + value + `"`
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
