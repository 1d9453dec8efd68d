package view

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestRenderAndGet(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), FallbackSample, WidgetSummary)

	if _, ok := r.Get(WidgetSummary); ok {
		t.Fatalf("nothing rendered yet")
	}

	r.Render(WidgetSummary, SourceLive, map[string]int{"total": 5})
	snap, ok := r.Get(WidgetSummary)
	if !ok {
		t.Fatalf("snapshot missing after render")
	}
	if snap.Widget != WidgetSummary || snap.Source != SourceLive || snap.ProducedAt.IsZero() {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestRenderReplacesWholesale(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), FallbackSample, WidgetSummary)
	r.RenderError(WidgetSummary, "backend down")
	r.Render(WidgetSummary, SourceLive, "fresh")

	snap, _ := r.Get(WidgetSummary)
	if snap.Error != "" {
		t.Fatalf("old error fragment survived the re-render: %+v", snap)
	}
	if snap.Payload != "fresh" {
		t.Fatalf("payload = %v", snap.Payload)
	}
}

func TestRenderUnknownWidgetIsNoop(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), FallbackSample, WidgetSummary)
	r.Render("mystery", SourceLive, "data")
	if _, ok := r.Get("mystery"); ok {
		t.Fatalf("unknown widget should not be stored")
	}
}

func TestFallbackDefaultsToSample(t *testing.T) {
	r := NewRegistry(zerolog.Nop(), "", WidgetSummary)
	if r.Fallback() != FallbackSample {
		t.Fatalf("default fallback = %q", r.Fallback())
	}
}
