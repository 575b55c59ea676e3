package text

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/renderers/html/components"
)

func (o *outline) format(b *strings.Builder, indent, typ string, props map[string]any, text string) error {
	s := o.r.styles
	str := func(key string) string { return propText(props, key) }
	textOr := func(key string) string {
		if text != "" {
			return text
		}
		return str(key)
	}

	switch typ {
	case "container", "stack", "tabs":
		o.line(b, indent, o.r.style(s.muted, typ))
	case "grid":
		o.line(b, indent, o.r.style(s.muted, fmt.Sprintf("grid (%s columns)", number(props["columns"]))))
	case "card":
		if title := str("title"); title != "" {
			o.line(b, indent, o.r.style(s.strong, title))
		}
		if description := str("description"); description != "" {
			o.line(b, indent, o.r.style(s.muted, description))
		}
		if footer := str("footer"); footer != "" {
			o.line(b, indent, o.r.style(s.muted, footer))
		}
		if text != "" {
			o.line(b, indent, text)
		}
	case "tab":
		o.line(b, indent, "» "+str("label"))
	case "divider":
		if label := str("label"); label != "" {
			o.line(b, indent, "── "+label+" ──")
		} else {
			o.line(b, indent, strings.Repeat("─", 24))
		}
	case "heading":
		level := int(math.Max(1, math.Min(6, numberValue(props["level"], 2))))
		o.line(b, indent, o.r.style(s.heading, strings.Repeat("#", level)+" "+textOr("text")))
	case "text":
		o.line(b, indent, textOr("content"))
	case "markdown":
		converted, err := markdownText(textOr("content"))
		if err != nil {
			return err
		}
		o.line(b, indent, converted)
	case "code-block":
		if title := str("title"); title != "" {
			o.line(b, indent, o.r.style(s.muted, title))
		}
		o.line(b, indent, "```"+str("language"))
		o.line(b, indent, textOr("code"))
		o.line(b, indent, "```")
	case "button":
		label := "[ " + textOr("label") + " ]"
		if href := str("href"); href != "" {
			label += " -> " + href
		}
		o.line(b, indent, label)
	case "text-input":
		value := str("value")
		if value == "" {
			value = str("placeholder")
		}
		o.line(b, indent, labelled(str("label"), str("name"))+": ["+value+"]")
	case "select":
		selected := str("value")
		var options []string
		for _, opt := range listOf(props["options"]) {
			label, value := optionText(opt)
			if value == selected && selected != "" {
				label = "*" + label + "*"
			}
			options = append(options, label)
		}
		o.line(b, indent, labelled(str("label"), str("name"))+": "+strings.Join(options, " / "))
	case "checkbox":
		box := "[ ]"
		if checked, _ := props["checked"].(bool); checked {
			box = "[x]"
		}
		o.line(b, indent, box+" "+labelled(str("label"), str("name")))
	case "badge":
		o.line(b, indent, "("+textOr("label")+")")
	case "icon":
		o.line(b, indent, ":"+str("name")+":")
	case "image":
		o.line(b, indent, fmt.Sprintf("[image: %s] %s", labelled(str("alt"), "untitled"), str("src")))
		if caption := str("caption"); caption != "" {
			o.line(b, indent, o.r.style(s.muted, caption))
		}
	case "list":
		ordered, _ := props["ordered"].(bool)
		for idx, item := range listOf(props["items"]) {
			bullet := "-"
			if ordered {
				bullet = strconv.Itoa(idx+1) + "."
			}
			o.line(b, indent, bullet+" "+cellText(item))
		}
	case "table":
		o.line(b, indent, tableText(props))
	case "progress":
		value := numberValue(props["value"], 0)
		maximum := numberValue(props["max"], 100)
		o.line(b, indent, progressBar(str("label"), value, maximum))
	case "avatar":
		o.line(b, indent, "@"+str("name"))
	case "chart-card":
		o.line(b, indent, o.r.style(s.strong, str("title")))
		o.line(b, indent, chartText(str("chartType"), components.ChartPoints(listOf(props["data"]))))
	case "sparkline":
		o.line(b, indent, sparkline(components.ChartPoints(listOf(props["values"]))))
	case "kpi-card":
		line := o.r.style(s.muted, str("title")+":") + " " + o.r.style(s.strong, humanValue(props["value"]))
		if change := str("change"); change != "" {
			line += " (" + change + ")"
		}
		o.line(b, indent, line)
		if description := str("description"); description != "" {
			o.line(b, indent, o.r.style(s.muted, description))
		}
	case "info-card":
		head := "[" + strings.ToUpper(labelled(str("variant"), "info")) + "]"
		if title := str("title"); title != "" {
			head += " " + title
		}
		if message := textOr("message"); message != "" {
			head += ": " + message
		}
		style := s.muted
		if str("variant") == "error" || str("variant") == "warning" {
			style = s.warn
		}
		o.line(b, indent, o.r.style(style, head))
	case "stat-group":
		if title := str("title"); title != "" {
			o.line(b, indent, o.r.style(s.strong, title))
		}
		for _, stat := range listOf(props["stats"]) {
			entry, ok := stat.(map[string]any)
			if !ok {
				o.line(b, indent, "- "+cellText(stat))
				continue
			}
			line := "- " + propText(entry, "label") + ": " + humanValue(entry["value"])
			if change := propText(entry, "change"); change != "" {
				line += " (" + change + ")"
			}
			o.line(b, indent, line)
		}
	case "timeline":
		if title := str("title"); title != "" {
			o.line(b, indent, o.r.style(s.strong, title))
		}
		for _, event := range listOf(props["events"]) {
			entry, ok := event.(map[string]any)
			if !ok {
				o.line(b, indent, "• "+cellText(event))
				continue
			}
			line := "• "
			if when := propText(entry, "time"); when != "" {
				line += when + " "
			}
			line += propText(entry, "title")
			if description := propText(entry, "description"); description != "" {
				line += " - " + description
			}
			o.line(b, indent, line)
		}
	default:
		// catalogue overlays may add types this renderer has no layout for
		if label := textOr("label"); label != "" {
			o.line(b, indent, typ+": "+label)
		} else {
			o.line(b, indent, o.r.style(s.muted, typ))
		}
	}
	return nil
}

func markdownText(source string) (string, error) {
	rendered, err := components.RenderMarkdown(source)
	if err != nil {
		return "", err
	}
	converted, err := htmltomarkdown.ConvertString(rendered)
	if err != nil {
		return "", fmt.Errorf("text: convert markdown: %w", err)
	}
	return strings.TrimSpace(converted), nil
}

func tableText(props map[string]any) string {
	var columns []string
	for _, column := range listOf(props["columns"]) {
		columns = append(columns, cellText(column))
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if caption := propText(props, "caption"); caption != "" {
		t.SetTitle(caption)
	}
	if len(columns) > 0 {
		header := make(table.Row, len(columns))
		for idx, column := range columns {
			header[idx] = column
		}
		t.AppendHeader(header)
	}
	for _, cells := range components.TableRows(columns, listOf(props["rows"])) {
		row := make(table.Row, len(cells))
		for idx, cell := range cells {
			row[idx] = cell
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func progressBar(label string, value, maximum float64) string {
	if maximum <= 0 {
		maximum = 100
	}
	pct := math.Max(0, math.Min(1, value/maximum))
	filled := int(math.Round(pct * 20))
	bar := "[" + strings.Repeat("#", filled) + strings.Repeat("-", 20-filled) + "] " + strconv.Itoa(int(math.Round(pct*100))) + "%"
	if label != "" {
		return label + " " + bar
	}
	return bar
}

func chartText(kind string, points []components.Point) string {
	if len(points) == 0 {
		return "(no data)"
	}
	if kind == "line" || kind == "area" {
		return sparkline(points)
	}

	scale, width := 0.0, 0
	for _, point := range points {
		if kind == "pie" {
			scale += math.Abs(point.Value)
		} else {
			scale = math.Max(scale, math.Abs(point.Value))
		}
		width = max(width, len([]rune(point.Label)))
	}
	lines := make([]string, len(points))
	for idx, point := range points {
		n := 0
		if scale > 0 {
			n = int(math.Round(math.Abs(point.Value) / scale * 20))
		}
		label := point.Label + strings.Repeat(" ", width-len([]rune(point.Label)))
		lines[idx] = label + " " + strings.Repeat("█", n) + " " + humanize.Commaf(point.Value)
	}
	return strings.Join(lines, "\n")
}

var ticks = []rune("▁▂▃▄▅▆▇█")

func sparkline(points []components.Point) string {
	if len(points) == 0 {
		return ""
	}
	values := make([]float64, len(points))
	for idx, point := range points {
		values[idx] = point.Value
	}
	low, high := components.Bounds(values)
	top := len(ticks) - 1
	out := make([]rune, len(values))
	for idx, v := range values {
		level := 0
		if high > low {
			level = min(top, max(0, int(math.Round(components.Scale(v, low, high)*float64(top)))))
		}
		out[idx] = ticks[level]
	}
	return string(out)
}

// humanValue adds thousands separators to numeric values; other strings such
// as "$1.2M" pass through.
func humanValue(value any) string {
	switch v := value.(type) {
	case float64:
		return humanize.Commaf(v)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return humanize.Commaf(parsed)
		}
		return v
	default:
		return cellText(v)
	}
}

func number(value any) string {
	return humanize.Ftoa(numberValue(value, 0))
}

func numberValue(value any, fallback float64) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func propText(props map[string]any, key string) string {
	return strings.TrimSpace(cellText(props[key]))
}

func cellText(value any) string {
	if value == nil {
		return ""
	}
	return model.LiteralText(value)
}

func listOf(value any) []any {
	list, _ := value.([]any)
	return list
}

func optionText(option any) (label, value string) {
	entry, ok := option.(map[string]any)
	if !ok {
		text := cellText(option)
		return text, text
	}
	label, value = cellText(entry["label"]), cellText(entry["value"])
	if label == "" {
		label = value
	}
	if value == "" {
		value = label
	}
	return label, value
}

func labelled(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}
