package components

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-genui/pkg/model"
)

func propString(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64, bool:
		return model.LiteralText(v)
	default:
		return ""
	}
}

func propNumber(props map[string]any, key string, fallback float64) float64 {
	switch v := props[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return v
	case int:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func propBool(props map[string]any, key string) bool {
	v, _ := props[key].(bool)
	return v
}

func propList(props map[string]any, key string) []any {
	switch v := props[key].(type) {
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for idx, item := range v {
			out[idx] = item
		}
		return out
	default:
		return nil
	}
}

// propObjects normalises a list prop into objects. Scalar entries become
// {fallbackKey: value} so templates can address fields uniformly.
func propObjects(props map[string]any, key, fallbackKey string) []map[string]any {
	list := propList(props, key)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			out = append(out, v)
		case nil:
			continue
		default:
			out = append(out, map[string]any{fallbackKey: model.LiteralText(v)})
		}
	}
	return out
}

func clampInt(value float64, low, high int) int {
	n := int(math.Round(value))
	if n < low {
		return low
	}
	if n > high {
		return high
	}
	return n
}

func textOr(data ComponentData, key string) string {
	if data.Text != "" {
		return data.Text
	}
	return propString(data.Props, key)
}

var tokenPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// modifier returns a safe class suffix for an enum-like prop value.
func modifier(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || !tokenPattern.MatchString(value) {
		return fallback
	}
	return value
}

func esc(value string) string {
	return html.EscapeString(value)
}

// safeURL permits http(s), mailto, root-relative, and fragment URLs.
func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "mailto:"), strings.HasPrefix(raw, "#"):
		return raw
	case strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//"):
		return raw
	default:
		return ""
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// textOf is model.LiteralText with nil mapped to the empty string.
func textOf(value any) string {
	if value == nil {
		return ""
	}
	return model.LiteralText(value)
}
