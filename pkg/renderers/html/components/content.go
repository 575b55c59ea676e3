package components

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/goliatone/go-genui/pkg/model"
)

func headingRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	level := clampInt(propNumber(data.Props, "level", 2), 1, 6)
	fmt.Fprintf(buf, `<h%d class="genui-heading">%s</h%d>`, level, esc(textOr(data, "text")), level)
	return nil
}

func markdownRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	rendered, err := RenderMarkdown(textOr(data, "content"))
	if err != nil {
		return fmt.Errorf("components: markdown: %w", err)
	}
	buf.WriteString(`<div class="genui-markdown">`)
	buf.WriteString(rendered)
	buf.WriteString(`</div>`)
	return nil
}

type option struct {
	Label string
	Value string
}

func selectOptions(props map[string]any) []option {
	var out []option
	for _, item := range propList(props, "options") {
		switch v := item.(type) {
		case nil:
			continue
		case map[string]any:
			value := textOf(v["value"])
			label := textOf(v["label"])
			if label == "" {
				label = value
			}
			if value == "" {
				value = label
			}
			out = append(out, option{Label: label, Value: value})
		default:
			text := textOf(v)
			out = append(out, option{Label: text, Value: text})
		}
	}
	return out
}

func selectRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	name := propString(data.Props, "name")
	selected := propString(data.Props, "value")

	buf.WriteString(`<label class="genui-field">`)
	if label := propString(data.Props, "label"); label != "" {
		fmt.Fprintf(buf, `<span class="genui-field-label">%s</span>`, esc(label))
	}
	fmt.Fprintf(buf, `<select class="genui-select" name="%s"`, esc(name))
	if action := propString(data.Props, "onChange"); action != "" {
		fmt.Fprintf(buf, ` data-action="%s"`, esc(action))
	}
	buf.WriteString(`>`)
	for _, opt := range selectOptions(data.Props) {
		attr := ""
		if selected != "" && opt.Value == selected {
			attr = " selected"
		}
		fmt.Fprintf(buf, `<option value="%s"%s>%s</option>`, esc(opt.Value), attr, esc(opt.Label))
	}
	buf.WriteString(`</select></label>`)
	return nil
}

func iconRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	name := propString(data.Props, "name")
	size := modifier(propString(data.Props, "size"), "md")
	label := propString(data.Props, "label")

	aria := ` aria-hidden="true"`
	if label != "" {
		aria = fmt.Sprintf(` role="img" aria-label="%s"`, esc(label))
	}
	fmt.Fprintf(buf, `<span class="genui-icon genui-icon-%s" data-icon="%s"%s>`, size, esc(name), aria)
	if svg := SanitizeIcon(propString(data.Props, "svg")); svg != "" {
		buf.WriteString(svg)
	}
	buf.WriteString(`</span>`)
	return nil
}

func tableRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	columns := make([]string, 0)
	for _, column := range propList(data.Props, "columns") {
		columns = append(columns, textOf(column))
	}

	class := "genui-table"
	if propBool(data.Props, "striped") {
		class += " genui-table-striped"
	}
	fmt.Fprintf(buf, `<div class="genui-table-wrap"><table class="%s">`, class)
	if caption := propString(data.Props, "caption"); caption != "" {
		fmt.Fprintf(buf, `<caption>%s</caption>`, esc(caption))
	}
	if len(columns) > 0 {
		buf.WriteString(`<thead><tr>`)
		for _, column := range columns {
			fmt.Fprintf(buf, `<th scope="col">%s</th>`, esc(column))
		}
		buf.WriteString(`</tr></thead>`)
	}
	buf.WriteString(`<tbody>`)
	for _, row := range TableRows(columns, propList(data.Props, "rows")) {
		buf.WriteString(`<tr>`)
		for _, cell := range row {
			fmt.Fprintf(buf, `<td>%s</td>`, esc(cell))
		}
		buf.WriteString(`</tr>`)
	}
	buf.WriteString(`</tbody></table></div>`)
	return nil
}

// TableRows flattens rows given as arrays or objects keyed by column into
// string cells. Object rows are padded to len(columns).
func TableRows(columns []string, rows []any) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		switch v := row.(type) {
		case []any:
			cells := make([]string, len(v))
			for idx, cell := range v {
				cells[idx] = textOf(cell)
			}
			out = append(out, cells)
		case map[string]any:
			cells := make([]string, len(columns))
			for idx, column := range columns {
				cells[idx] = textOf(v[column])
			}
			out = append(out, cells)
		case nil:
			continue
		default:
			out = append(out, []string{textOf(v)})
		}
	}
	return out
}

// Point is one labelled chart value.
type Point struct {
	Label string
	Value float64
}

// ChartPoints reads {label, value} objects or bare numbers from a data list.
func ChartPoints(list []any) []Point {
	points := make([]Point, 0, len(list))
	for idx, item := range list {
		switch v := item.(type) {
		case map[string]any:
			label := textOf(v["label"])
			if label == "" {
				label = fmt.Sprintf("#%d", idx+1)
			}
			points = append(points, Point{Label: label, Value: propNumber(v, "value", 0)})
		case float64, int, string:
			points = append(points, Point{
				Label: fmt.Sprintf("#%d", idx+1),
				Value: propNumber(map[string]any{"v": v}, "v", 0),
			})
		}
	}
	return points
}

func chartCardRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	kind := modifier(propString(data.Props, "chartType"), "bar")
	height := clampInt(propNumber(data.Props, "height", 240), 40, 1200)
	points := ChartPoints(propList(data.Props, "data"))

	fmt.Fprintf(buf, `<figure class="genui-chart genui-chart-%s">`, kind)
	fmt.Fprintf(buf, `<figcaption class="genui-chart-title">%s</figcaption>`, esc(propString(data.Props, "title")))
	if len(points) == 0 {
		buf.WriteString(`<p class="genui-chart-empty">No data</p></figure>`)
		return nil
	}

	switch kind {
	case "line", "area":
		values := make([]float64, len(points))
		for idx, point := range points {
			values[idx] = point.Value
		}
		fmt.Fprintf(buf, `<svg class="genui-chart-plot" viewBox="0 0 300 %d" preserveAspectRatio="none" role="img" aria-label="%s">`,
			height, esc(propString(data.Props, "title")))
		coords := polyline(values, 300, float64(height))
		if kind == "area" {
			fmt.Fprintf(buf, `<polygon class="genui-chart-area" points="0,%d %s 300,%d"/>`, height, coords, height)
		}
		fmt.Fprintf(buf, `<polyline class="genui-chart-line" fill="none" points="%s"/>`, coords)
		buf.WriteString(`</svg><ul class="genui-chart-legend">`)
		for _, point := range points {
			fmt.Fprintf(buf, `<li>%s: %s</li>`, esc(point.Label), formatNumber(point.Value))
		}
		buf.WriteString(`</ul>`)
	default:
		// bar and pie both render as proportional bars; pie shows share of total.
		scale := 0.0
		for _, point := range points {
			if kind == "pie" {
				scale += math.Abs(point.Value)
			} else {
				scale = math.Max(scale, math.Abs(point.Value))
			}
		}
		fmt.Fprintf(buf, `<ul class="genui-chart-bars" style="min-height:%dpx">`, height)
		for _, point := range points {
			pct := 0.0
			if scale > 0 {
				pct = math.Abs(point.Value) / scale * 100
			}
			fmt.Fprintf(buf,
				`<li class="genui-chart-bar"><span class="genui-chart-label">%s</span><span class="genui-chart-fill" style="width:%.1f%%"></span><span class="genui-chart-value">%s</span></li>`,
				esc(point.Label), pct, formatNumber(point.Value))
		}
		buf.WriteString(`</ul>`)
	}
	buf.WriteString(`</figure>`)
	return nil
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20}|var\(--[a-z0-9-]+\))$`)

func sparklineRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	width := clampInt(propNumber(data.Props, "width", 120), 16, 1200)
	height := clampInt(propNumber(data.Props, "height", 32), 8, 400)
	color := propString(data.Props, "color")
	if !colorPattern.MatchString(color) {
		color = "currentColor"
	}

	points := ChartPoints(propList(data.Props, "values"))
	values := make([]float64, len(points))
	for idx, point := range points {
		values[idx] = point.Value
	}

	fmt.Fprintf(buf, `<svg class="genui-sparkline" width="%d" height="%d" viewBox="0 0 %d %d" aria-hidden="true">`,
		width, height, width, height)
	if len(values) > 0 {
		fmt.Fprintf(buf, `<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"/>`,
			color, polyline(values, float64(width), float64(height)))
	}
	buf.WriteString(`</svg>`)
	return nil
}

// polyline maps values onto a width x height box, highest value at the top.
func polyline(values []float64, width, height float64) string {
	if len(values) == 0 {
		return ""
	}
	low, high := Bounds(values)

	coords := make([]string, len(values))
	for idx, v := range values {
		x := 0.0
		if len(values) > 1 {
			x = float64(idx) / float64(len(values)-1) * width
		}
		y := height - Scale(v, low, high)*height
		coords[idx] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(coords, " ")
}

// Bounds returns the smallest and largest of values.
func Bounds(values []float64) (low, high float64) {
	if len(values) == 0 {
		return 0, 0
	}
	low, high = values[0], values[0]
	for _, v := range values[1:] {
		low = math.Min(low, v)
		high = math.Max(high, v)
	}
	return low, high
}

// Scale maps v into [0, 1] relative to low..high. A flat or non-finite range
// maps to the midpoint. Both terms are halved so the span stays finite near
// the float64 limits.
func Scale(v, low, high float64) float64 {
	if !(high > low) {
		return 0.5
	}
	ratio := (v/2 - low/2) / (high/2 - low/2)
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0.5
	}
	return math.Min(1, math.Max(0, ratio))
}
