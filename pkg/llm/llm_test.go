package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStaticRecordsRequests(t *testing.T) {
	gen := NewStatic(`{"type":"text"}`)

	out, err := gen.Generate(context.Background(), Request{System: "sys", User: "hi"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != `{"type":"text"}` {
		t.Fatalf("unexpected text %q", out)
	}
	if diff := cmp.Diff([]Request{{System: "sys", User: "hi"}}, gen.Requests()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestStaticEmpty(t *testing.T) {
	_, err := NewStatic("  ").Generate(context.Background(), Request{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestStaticHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStatic("x").Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFuncAdapter(t *testing.T) {
	var gen Generator = Func(func(_ context.Context, req Request) (string, error) {
		return "echo:" + req.User, nil
	})
	out, err := gen.Generate(context.Background(), Request{User: "ping"})
	if err != nil || out != "echo:ping" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}
}
