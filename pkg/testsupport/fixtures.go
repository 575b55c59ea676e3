// Package testsupport holds helpers shared by renderer and pipeline tests.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-genui/pkg/model"
)

// MustParseNodes decodes a JSON array of nodes.
func MustParseNodes(t *testing.T, payload string) []model.Node {
	t.Helper()

	var nodes []model.Node
	if err := json.Unmarshal([]byte(payload), &nodes); err != nil {
		t.Fatalf("parse nodes: %v", err)
	}
	return nodes
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

// AssertContainsInOrder fails unless every fragment appears in output, each
// after the previous one.
func AssertContainsInOrder(t *testing.T, output string, fragments ...string) {
	t.Helper()

	offset := 0
	for _, fragment := range fragments {
		idx := strings.Index(output[offset:], fragment)
		if idx < 0 {
			t.Fatalf("expected %q after offset %d in output:\n%s", fragment, offset, output)
		}
		offset += idx + len(fragment)
	}
}
