package extract

import (
	"encoding/json"
	"log/slog"

	"github.com/goliatone/go-genui/pkg/model"
	"github.com/goliatone/go-genui/pkg/schema"
)

// DefaultMaxSpan bounds how far a single bracket scan may walk before the
// opener is treated as unbalanced.
const DefaultMaxSpan = 1 << 20

// Report summarises one extraction pass.
type Report struct {
	// Candidates counts balanced spans handed to the JSON parser.
	Candidates int `json:"candidates"`
	// Malformed counts candidates that failed to parse.
	Malformed int `json:"malformed"`
	// Unbalanced counts openers with no matching close.
	Unbalanced int `json:"unbalanced"`
	// Parsed counts values produced by successful parses, after flattening.
	Parsed int `json:"parsed"`
	// Dropped counts parsed values rejected by the descriptor filter.
	Dropped int `json:"dropped"`
	// Accepted counts returned nodes.
	Accepted int `json:"accepted"`
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger routes diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxSpan caps the length of a single candidate span. Values <= 0 remove
// the cap.
func WithMaxSpan(n int) Option {
	return func(e *Extractor) {
		e.maxSpan = n
	}
}

// WithObserver registers a callback invoked with the report of every pass.
func WithObserver(fn func(Report)) Option {
	return func(e *Extractor) {
		e.observer = fn
	}
}

// Extractor recovers component descriptors embedded in free-form text. The
// zero value is not usable; construct with New. An Extractor holds no
// per-call state and is safe for concurrent use.
type Extractor struct {
	logger   *slog.Logger
	maxSpan  int
	observer func(Report)
}

// New constructs an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger:  slog.Default(),
		maxSpan: DefaultMaxSpan,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Extract runs a default Extractor over text.
func Extract(text string) []model.Node {
	return New().Extract(text)
}

// Extract returns the descriptors found in text in document order. It never
// fails; malformed fragments are skipped.
func (e *Extractor) Extract(text string) []model.Node {
	nodes, _ := e.ExtractWithReport(text)
	return nodes
}

// ExtractWithReport is Extract plus scan statistics.
func (e *Extractor) ExtractWithReport(text string) ([]model.Node, Report) {
	var (
		report Report
		nodes  = []model.Node{}
	)

	cursor := 0
	for cursor < len(text) {
		start := nextOpener(text, cursor)
		if start < 0 {
			break
		}

		end := e.matchClose(text, start)
		if end < 0 {
			report.Unbalanced++
			cursor = start + 1
			continue
		}

		report.Candidates++
		var value any
		if err := json.Unmarshal([]byte(text[start:end+1]), &value); err != nil {
			report.Malformed++
			e.logger.Debug("extract: skipping malformed span",
				slog.Int("offset", start),
				slog.String("error", err.Error()),
			)
			cursor = start + 1
			continue
		}

		values := []any{value}
		if list, ok := value.([]any); ok {
			values = list
		}
		for _, candidate := range values {
			report.Parsed++
			node, reason, ok := descriptor(candidate)
			if !ok {
				report.Dropped++
				e.logger.Warn("extract: dropping non-component value",
					slog.Int("offset", start),
					slog.String("reason", reason),
				)
				continue
			}
			nodes = append(nodes, node)
		}
		cursor = end + 1
	}

	report.Accepted = len(nodes)
	if e.observer != nil {
		e.observer(report)
	}
	return nodes, report
}

// matchClose walks forward from start counting only the opener's own bracket
// species and returns the index of the balancing close, or -1.
func (e *Extractor) matchClose(text string, start int) int {
	open := text[start]
	closer := byte('}')
	if open == '[' {
		closer = ']'
	}

	limit := len(text)
	if e.maxSpan > 0 && start+e.maxSpan < limit {
		limit = start + e.maxSpan
	}

	depth := 0
	for idx := start; idx < limit; idx++ {
		switch text[idx] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return idx
			}
		}
	}
	return -1
}

func nextOpener(text string, from int) int {
	for idx := from; idx < len(text); idx++ {
		if text[idx] == '{' || text[idx] == '[' {
			return idx
		}
	}
	return -1
}

func descriptor(value any) (model.Node, string, bool) {
	obj, ok := value.(map[string]any)
	if !ok || obj == nil {
		return model.Node{}, "value is not an object", false
	}
	raw, present := obj["type"]
	if !present {
		return model.Node{}, "missing type", false
	}
	typ, ok := raw.(string)
	if !ok {
		return model.Node{}, "type is not a string", false
	}
	if !schema.ValidTypeName(typ) {
		return model.Node{}, "type " + quote(typ) + " is not lowercase-hyphen", false
	}
	return model.FromMap(obj), "", true
}

func quote(value string) string {
	if len(value) > 40 {
		value = value[:40] + "..."
	}
	payload, _ := json.Marshal(value)
	return string(payload)
}
