package render

import "slices"

// Stats counts notable events during one render pass. A Stats value is owned
// by a single render call and is not safe for concurrent use.
type Stats struct {
	Nodes        int      `json:"nodes"`
	Unknown      int      `json:"unknown"`
	UnknownTypes []string `json:"unknownTypes,omitempty"`
	Truncated    int      `json:"truncated"`
	Disallowed   int      `json:"disallowed"`
	Malformed    int      `json:"malformed"`
	Failed       int      `json:"failed"`
	DroppedProps int      `json:"droppedProps"`
	PropIssues   int      `json:"propIssues"`
}

// AddUnknown records an unknown component type once per distinct name.
func (s *Stats) AddUnknown(typ string) {
	if s == nil {
		return
	}
	s.Unknown++
	if !slices.Contains(s.UnknownTypes, typ) {
		s.UnknownTypes = append(s.UnknownTypes, typ)
	}
}

// Degraded reports whether anything rendered as a placeholder.
func (s *Stats) Degraded() bool {
	if s == nil {
		return false
	}
	return s.Unknown+s.Truncated+s.Disallowed+s.Malformed+s.Failed > 0
}
