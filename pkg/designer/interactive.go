package designer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted signals the user interrupted the designer (Ctrl+C).
var ErrAborted = errors.New("designer: aborted")

// InputConfig configures a single-line prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
}

// SelectConfig configures a single-choice prompt.
type SelectConfig struct {
	Message string
	Options []string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so the designer flow can be tested
// without one.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Select(ctx context.Context, cfg SelectConfig) (string, error)
	Confirm(ctx context.Context, message string, def bool) (bool, error)
}

// SurveyDriver prompts on a terminal through survey.
type SurveyDriver struct {
	in     terminal.FileReader
	out    terminal.FileWriter
	errOut io.Writer
}

// NewSurveyDriver uses the process stdio.
func NewSurveyDriver() *SurveyDriver {
	return &SurveyDriver{in: os.Stdin, out: os.Stderr, errOut: os.Stderr}
}

func (d *SurveyDriver) opts(validator func(string) error) []survey.AskOpt {
	opts := []survey.AskOpt{survey.WithStdio(d.in, d.out, d.errOut)}
	if validator != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			value, _ := ans.(string)
			return validator(value)
		}))
	}
	return opts
}

func (d *SurveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: cfg.Message, Default: cfg.Default, Help: cfg.Help}
	if err := survey.AskOne(prompt, &out, d.opts(cfg.Validator)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *SurveyDriver) Select(ctx context.Context, cfg SelectConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help}
	if contains(cfg.Options, cfg.Default) {
		prompt.Default = cfg.Default
	}
	if err := survey.AskOne(prompt, &out, d.opts(nil)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *SurveyDriver) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out, d.opts(nil)...); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// Interactive walks the user through every Customization field, starting
// from base, and returns the validated result.
func Interactive(ctx context.Context, driver PromptDriver, base Customization) (Customization, error) {
	if driver == nil {
		return Customization{}, fmt.Errorf("designer: prompt driver is required")
	}
	out := base
	out.Dark = nil

	name, err := driver.Input(ctx, InputConfig{
		Message:   "Theme name",
		Default:   base.Name,
		Validator: validName,
	})
	if err != nil {
		return Customization{}, err
	}
	out.Name = strings.TrimSpace(name)

	if err := askAppearance(ctx, driver, &out, base, ""); err != nil {
		return Customization{}, err
	}

	position, err := driver.Select(ctx, SelectConfig{
		Message: "Widget position",
		Options: Positions,
		Default: base.Position,
	})
	if err != nil {
		return Customization{}, err
	}
	out.Position = position

	greeting, err := driver.Input(ctx, InputConfig{Message: "Greeting", Default: base.Greeting})
	if err != nil {
		return Customization{}, err
	}
	out.Greeting = strings.TrimSpace(greeting)

	wantDark, err := driver.Confirm(ctx, "Add a dark variant?", base.Dark != nil)
	if err != nil {
		return Customization{}, err
	}
	if wantDark {
		darkBase := Customization{}
		if base.Dark != nil {
			darkBase = *base.Dark
		}
		dark := Customization{}
		if err := askAppearance(ctx, driver, &dark, darkBase, "Dark "); err != nil {
			return Customization{}, err
		}
		out.Dark = &dark
	}

	if err := out.Validate(); err != nil {
		return Customization{}, err
	}
	return out, nil
}

func askAppearance(ctx context.Context, driver PromptDriver, out *Customization, base Customization, label string) error {
	fields := []struct {
		message   string
		def       string
		target    *string
		validator func(string) error
	}{
		{"primary color", base.PrimaryColor, &out.PrimaryColor, validColor},
		{"accent color", base.AccentColor, &out.AccentColor, validColor},
		{"background", base.Background, &out.Background, validColor},
		{"foreground", base.Foreground, &out.Foreground, validColor},
		{"corner radius", base.Radius, &out.Radius, validRadius},
		{"font family", base.FontFamily, &out.FontFamily, nil},
	}
	for _, field := range fields {
		message := label + field.message
		if label == "" {
			message = strings.ToUpper(message[:1]) + message[1:]
		}
		value, err := driver.Input(ctx, InputConfig{Message: message, Default: field.def, Validator: field.validator})
		if err != nil {
			return err
		}
		*field.target = strings.TrimSpace(value)
	}
	return nil
}

func validName(value string) error {
	if !namePattern.MatchString(strings.TrimSpace(value)) {
		return fmt.Errorf("use lowercase letters, digits, or dashes")
	}
	return nil
}

func validColor(value string) error {
	if value = strings.TrimSpace(value); value != "" && !colorPattern.MatchString(value) {
		return fmt.Errorf("expected a hex color such as #2563eb")
	}
	return nil
}

func validRadius(value string) error {
	if value = strings.TrimSpace(value); value != "" && !radiusPattern.MatchString(value) {
		return fmt.Errorf("expected a length such as 8px")
	}
	return nil
}
