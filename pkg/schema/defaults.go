package schema

import "sync"

var (
	defaultOnce      sync.Once
	defaultCatalogue *Catalogue
)

// DefaultCatalogue returns the built-in component vocabulary. The returned
// catalogue is shared; it is immutable so callers may hold on to it.
func DefaultCatalogue() *Catalogue {
	defaultOnce.Do(func() {
		defaultCatalogue = MustCatalogue(DefaultTypes()...)
	})
	return defaultCatalogue
}

func str(description string) PropDef {
	return PropDef{Kind: KindString, Description: description}
}

func requiredStr(description string) PropDef {
	return PropDef{Kind: KindString, Required: true, Description: description}
}

func num(description string, def any) PropDef {
	return PropDef{Kind: KindNumber, Default: def, Description: description}
}

func boolean(description string, def bool) PropDef {
	return PropDef{Kind: KindBoolean, Default: def, Description: description}
}

func enum(description string, def string, options ...string) PropDef {
	return PropDef{Kind: KindEnum, Options: options, Default: def, Description: description}
}

func array(description string, required bool) PropDef {
	return PropDef{Kind: KindArray, Required: required, Description: description}
}

func object(description string) PropDef {
	return PropDef{Kind: KindObject, Description: description}
}

func action(description string) PropDef {
	return PropDef{Kind: KindFunction, Description: description}
}

// DefaultTypes lists the built-in component types. It returns fresh values on
// every call so callers can tweak entries before building a catalogue.
func DefaultTypes() []ComponentType {
	return []ComponentType{
		// layout
		{
			Type:        "container",
			Category:    CategoryLayout,
			Description: "Generic wrapper that stacks its children vertically.",
			Props: map[string]PropDef{
				"padding":  enum("Inner spacing", "md", "none", "sm", "md", "lg"),
				"maxWidth": enum("Maximum content width", "full", "sm", "md", "lg", "xl", "full"),
				"items":    array("Extra descriptors or strings rendered after children", false),
			},
			Children: AllowAll(),
		},
		{
			Type:        "grid",
			Category:    CategoryLayout,
			Description: "Responsive grid; children flow into columns.",
			Props: map[string]PropDef{
				"columns": num("Column count on wide screens", float64(2)),
				"gap":     enum("Gap between cells", "md", "sm", "md", "lg"),
				"items":   array("Extra descriptors or strings rendered after children", false),
			},
			Children: AllowAll(),
		},
		{
			Type:        "stack",
			Category:    CategoryLayout,
			Description: "Flex row or column of children.",
			Props: map[string]PropDef{
				"direction": enum("Main axis", "vertical", "vertical", "horizontal"),
				"gap":       enum("Gap between items", "md", "sm", "md", "lg"),
				"align":     enum("Cross axis alignment", "stretch", "start", "center", "end", "stretch"),
				"items":     array("Extra descriptors or strings rendered after children", false),
			},
			Children: AllowAll(),
		},
		{
			Type:        "card",
			Category:    CategoryLayout,
			Description: "Bordered surface with optional title and footer.",
			Props: map[string]PropDef{
				"title":       str("Card title"),
				"description": str("Subtitle under the title"),
				"footer":      str("Footer text"),
			},
			Children: AllowAll(),
		},
		{
			Type:        "tabs",
			Category:    CategoryLayout,
			Description: "Tabbed panels; each child tab becomes one panel.",
			Props: map[string]PropDef{
				"defaultTab": num("Index of the initially selected tab", float64(0)),
			},
			Children: AllowList("tab"),
		},
		{
			Type:        "tab",
			Category:    CategoryLayout,
			Description: "Single panel inside tabs.",
			Props: map[string]PropDef{
				"label": requiredStr("Tab label"),
			},
			Children: AllowAll(),
		},
		{
			Type:        "divider",
			Category:    CategoryLayout,
			Description: "Horizontal rule.",
			Props: map[string]PropDef{
				"label": str("Optional centered label"),
			},
			Children: AllowNone(),
		},

		// typography
		{
			Type:        "heading",
			Category:    CategoryTypography,
			Description: "Section heading; children hold the heading text.",
			Props: map[string]PropDef{
				"level": num("Heading level 1-6", float64(2)),
				"text":  str("Heading text when children are omitted"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "text",
			Category:    CategoryTypography,
			Description: "Paragraph of plain text.",
			Props: map[string]PropDef{
				"content": str("Text when children are omitted"),
				"size":    enum("Font size", "md", "sm", "md", "lg"),
				"tone":    enum("Text color", "default", "default", "muted", "accent", "danger"),
				"weight":  enum("Font weight", "normal", "normal", "medium", "bold"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "markdown",
			Category:    CategoryTypography,
			Description: "Markdown or simple HTML content, sanitised before display.",
			Props: map[string]PropDef{
				"content": requiredStr("Markdown source"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "code-block",
			Category:    CategoryTypography,
			Description: "Preformatted code.",
			Props: map[string]PropDef{
				"code":     requiredStr("Source code"),
				"language": str("Language hint"),
				"title":    str("Caption above the block"),
			},
			Children: AllowNone(),
		},

		// input
		{
			Type:        "button",
			Category:    CategoryInput,
			Description: "Clickable action; onClick names an action identifier.",
			Props: map[string]PropDef{
				"label":    requiredStr("Button label"),
				"variant":  enum("Visual style", "primary", "primary", "secondary", "outline", "ghost", "danger"),
				"size":     enum("Button size", "md", "sm", "md", "lg"),
				"disabled": boolean("Disable the button", false),
				"href":     str("Navigate to this URL instead of firing an action"),
				"onClick":  action("Action identifier dispatched on click"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "text-input",
			Category:    CategoryInput,
			Description: "Single-line text field.",
			Props: map[string]PropDef{
				"name":        requiredStr("Field name"),
				"label":       str("Field label"),
				"placeholder": str("Placeholder text"),
				"value":       str("Initial value"),
				"inputType":   enum("HTML input type", "text", "text", "email", "number", "password", "search", "url"),
				"required":    boolean("Mark the field required", false),
				"onChange":    action("Action identifier dispatched on change"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "select",
			Category:    CategoryInput,
			Description: "Dropdown of string options.",
			Props: map[string]PropDef{
				"name":     requiredStr("Field name"),
				"label":    str("Field label"),
				"options":  array("Options as strings or {label, value} objects", true),
				"value":    str("Selected value"),
				"onChange": action("Action identifier dispatched on change"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "checkbox",
			Category:    CategoryInput,
			Description: "Boolean toggle.",
			Props: map[string]PropDef{
				"name":     requiredStr("Field name"),
				"label":    str("Label next to the box"),
				"checked":  boolean("Initial state", false),
				"onChange": action("Action identifier dispatched on change"),
			},
			Children: AllowNone(),
		},

		// display
		{
			Type:        "badge",
			Category:    CategoryDisplay,
			Description: "Small status pill.",
			Props: map[string]PropDef{
				"label":   str("Badge text when children are omitted"),
				"variant": enum("Color", "default", "default", "success", "warning", "error", "info"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "icon",
			Category:    CategoryDisplay,
			Description: "Named icon or inline SVG.",
			Props: map[string]PropDef{
				"name":  requiredStr("Icon name"),
				"svg":   str("Inline SVG markup, sanitised"),
				"size":  enum("Icon size", "md", "sm", "md", "lg"),
				"label": str("Accessible label"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "image",
			Category:    CategoryDisplay,
			Description: "Image with alt text.",
			Props: map[string]PropDef{
				"src":     requiredStr("Image URL"),
				"alt":     str("Alternative text"),
				"caption": str("Caption under the image"),
				"rounded": boolean("Round the corners", false),
			},
			Children: AllowNone(),
		},
		{
			Type:        "list",
			Category:    CategoryDisplay,
			Description: "Bulleted or numbered list; items come from props or children.",
			Props: map[string]PropDef{
				"items":   array("List entries as strings", false),
				"ordered": boolean("Render a numbered list", false),
			},
			Children: AllowAll(),
		},
		{
			Type:        "table",
			Category:    CategoryDisplay,
			Description: "Tabular data; rows are arrays or objects keyed by column.",
			Props: map[string]PropDef{
				"columns": array("Column headers", true),
				"rows":    array("Row values", true),
				"caption": str("Table caption"),
				"striped": boolean("Alternate row shading", false),
			},
			Children: AllowNone(),
		},
		{
			Type:        "progress",
			Category:    CategoryDisplay,
			Description: "Progress bar.",
			Props: map[string]PropDef{
				"value":   PropDef{Kind: KindNumber, Required: true, Description: "Current value"},
				"max":     num("Maximum value", float64(100)),
				"label":   str("Label above the bar"),
				"variant": enum("Bar color", "default", "default", "success", "warning", "error"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "avatar",
			Category:    CategoryDisplay,
			Description: "User avatar image or initials.",
			Props: map[string]PropDef{
				"name": requiredStr("Display name used for initials"),
				"src":  str("Image URL"),
				"size": enum("Avatar size", "md", "sm", "md", "lg"),
			},
			Children: AllowNone(),
		},

		// chart
		{
			Type:        "chart-card",
			Category:    CategoryChart,
			Description: "Titled chart; data is a list of {label, value} points.",
			Props: map[string]PropDef{
				"title":     requiredStr("Chart title"),
				"chartType": enum("Chart kind", "bar", "bar", "line", "area", "pie"),
				"data":      array("Data points", true),
				"config":    object("Renderer-specific chart options"),
				"height":    num("Chart height in pixels", float64(240)),
			},
			Children: AllowNone(),
		},
		{
			Type:        "sparkline",
			Category:    CategoryChart,
			Description: "Tiny inline trend line.",
			Props: map[string]PropDef{
				"values": array("Numeric series", true),
				"color":  str("Stroke color"),
				"width":  num("Width in pixels", float64(120)),
				"height": num("Height in pixels", float64(32)),
			},
			Children: AllowNone(),
		},

		// specialized
		{
			Type:        "kpi-card",
			Category:    CategorySpecialized,
			Description: "Single key metric with optional trend.",
			Props: map[string]PropDef{
				"title":       requiredStr("Metric name"),
				"value":       PropDef{Kind: KindString, Required: true, Description: "Formatted metric value"},
				"change":      str("Change label such as +12%"),
				"trend":       enum("Trend direction", "neutral", "up", "down", "neutral"),
				"description": str("Supporting text"),
				"icon":        str("Icon name"),
			},
			Children: AllowNone(),
		},
		{
			Type:        "info-card",
			Category:    CategorySpecialized,
			Description: "Callout box for notices and errors.",
			Props: map[string]PropDef{
				"title":   str("Callout title"),
				"message": str("Callout body when children are omitted"),
				"variant": enum("Severity", "info", "info", "success", "warning", "error"),
			},
			Children: AllowAll(),
		},
		{
			Type:        "stat-group",
			Category:    CategorySpecialized,
			Description: "Row of small labelled statistics.",
			Props: map[string]PropDef{
				"stats": array("Entries of {label, value, change}", true),
				"title": str("Group title"),
			},
			Children: AllowList("kpi-card", "badge", "text"),
		},
		{
			Type:        "timeline",
			Category:    CategorySpecialized,
			Description: "Chronological list of events.",
			Props: map[string]PropDef{
				"events": array("Entries of {title, time, description, status}", true),
				"title":  str("Timeline title"),
			},
			Children: AllowNone(),
		},
	}
}
