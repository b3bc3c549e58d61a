package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"scriptdna/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrParse, "analyze", "decode", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"analyze", "decode", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err       error
		kind      string
		retryable bool
	}{
		{services.Wrap(services.ErrValidation, "config", "", "bad parts", nil), services.KindValidation, false},
		{services.Wrap(services.ErrPrerequisite, "dna", "", "analysis required", nil), services.KindPrerequisite, false},
		{fmt.Errorf("outer: %w", services.ErrBusy), services.KindBusy, false},
		{services.Wrap(services.ErrNoContent, "script", "", "", nil), services.KindNoContent, true},
		{services.Wrap(services.ErrParse, "analyze", "", "", nil), services.KindParse, true},
		{errors.New("network down"), services.KindTransient, true},
	}
	for _, tc := range cases {
		if got := services.Classify(tc.err); got != tc.kind {
			t.Fatalf("Classify(%v) = %q, want %q", tc.err, got, tc.kind)
		}
		if got := services.Retryable(tc.err); got != tc.retryable {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.retryable)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithStage(ctx, "script")
	ctx = services.WithPart(ctx, 3)
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "script" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if part, ok := services.PartFromContext(ctx); !ok || part != 3 {
		t.Fatalf("unexpected part: %v %v", part, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithPart(ctx, 0)
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.PartFromContext(ctx); ok {
		t.Fatal("expected no part value")
	}
}
