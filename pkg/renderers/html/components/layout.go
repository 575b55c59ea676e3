package components

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goliatone/go-genui/pkg/model"
)

var tabsScript = Script{
	Inline: `document.addEventListener("click",function(e){var t=e.target.closest("[data-genui-tab]");if(!t)return;var r=t.closest(".genui-tabs");var i=t.getAttribute("data-genui-tab");r.querySelectorAll("[data-genui-tab]").forEach(function(b){b.setAttribute("aria-selected",b===t?"true":"false")});r.querySelectorAll(":scope>.genui-tab-panels>*").forEach(function(p,n){p.hidden=String(n)!==i})});`,
}

func containerRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	fmt.Fprintf(buf, `<div class="genui-container genui-pad-%s genui-max-%s">`,
		modifier(propString(data.Props, "padding"), "md"),
		modifier(propString(data.Props, "maxWidth"), "full"),
	)
	if err := writeChildren(buf, data); err != nil {
		return err
	}
	buf.WriteString(`</div>`)
	return nil
}

func gridRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	columns := clampInt(propNumber(data.Props, "columns", 2), 1, 12)
	fmt.Fprintf(buf, `<div class="genui-grid genui-gap-%s" style="--genui-columns:%d">`,
		modifier(propString(data.Props, "gap"), "md"),
		columns,
	)
	if err := writeChildren(buf, data); err != nil {
		return err
	}
	buf.WriteString(`</div>`)
	return nil
}

func stackRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	fmt.Fprintf(buf, `<div class="genui-stack genui-stack-%s genui-gap-%s genui-align-%s">`,
		modifier(propString(data.Props, "direction"), "vertical"),
		modifier(propString(data.Props, "gap"), "md"),
		modifier(propString(data.Props, "align"), "stretch"),
	)
	if err := writeChildren(buf, data); err != nil {
		return err
	}
	buf.WriteString(`</div>`)
	return nil
}

func tabsRenderer(buf *bytes.Buffer, _ model.Node, data ComponentData) error {
	active := clampInt(propNumber(data.Props, "defaultTab", 0), 0, max(len(data.Children)-1, 0))

	buf.WriteString(`<div class="genui-tabs"><div class="genui-tab-list" role="tablist">`)
	panels := 0
	for _, child := range data.Children {
		if child.Node == nil {
			continue
		}
		label := propString(child.Node.Props, "label")
		if label == "" {
			label = "Tab " + strconv.Itoa(panels+1)
		}
		fmt.Fprintf(buf, `<button type="button" role="tab" class="genui-tab-trigger" data-genui-tab="%d" aria-selected="%t">%s</button>`,
			panels, panels == active, esc(label))
		panels++
	}
	buf.WriteString(`</div><div class="genui-tab-panels">`)
	panels = 0
	for _, child := range data.Children {
		if child.Node == nil {
			continue
		}
		hidden := ""
		if panels != active {
			hidden = " hidden"
		}
		fmt.Fprintf(buf, `<div class="genui-tab-slot"%s>`, hidden)
		out, err := renderChild(data, child)
		if err != nil {
			return err
		}
		buf.WriteString(out)
		buf.WriteString(`</div>`)
		panels++
	}
	buf.WriteString(`</div></div>`)
	return nil
}

// writeChildren emits pre-rendered children, single-string text, then any
// extra "items" through RenderChild so descriptors, rendered units, and
// literals are handled per element.
func writeChildren(buf *bytes.Buffer, data ComponentData) error {
	for _, child := range data.Children {
		out, err := renderChild(data, child)
		if err != nil {
			return err
		}
		buf.WriteString(out)
	}
	if data.Text != "" {
		buf.WriteString(esc(data.Text))
	}
	for _, item := range propList(data.Props, "items") {
		out, err := renderChild(data, item)
		if err != nil {
			return err
		}
		buf.WriteString(out)
	}
	return nil
}

func renderChild(data ComponentData, value any) (string, error) {
	if data.RenderChild != nil {
		return data.RenderChild(value)
	}
	switch v := value.(type) {
	case Rendered:
		return v.HTML, nil
	case string:
		return esc(v), nil
	case nil:
		return "", nil
	default:
		return esc(model.LiteralText(v)), nil
	}
}
