// Package view holds the rendered widget snapshots the browser polls.
// Rendering replaces a widget's snapshot wholesale, so repeated renders of
// the same payload are idempotent and no stale fragments survive a cycle.
package view

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Source tags where a snapshot's data came from so the UI can flag
// staleness.
type Source string

const (
	SourceLive   Source = "live"
	SourceCache  Source = "cache"
	SourceSample Source = "sample"
)

// FallbackMode is the registry-level policy for what a refresh renders when
// upstream data cannot be fetched.
type FallbackMode string

const (
	FallbackSample FallbackMode = "sample"
	FallbackCache  FallbackMode = "cache"
	FallbackError  FallbackMode = "error"
)

// Widget names; a render against any other name is a logged no-op.
const (
	WidgetSummary     = "summary"
	WidgetZones       = "zones"
	WidgetTeams       = "teams"
	WidgetTickets     = "tickets"
	WidgetPerformance = "performance"
	WidgetMap         = "map"
	WidgetMaterials   = "materials"
)

type Snapshot struct {
	Widget     string    `json:"widget"`
	Source     Source    `json:"source"`
	ProducedAt time.Time `json:"produced_at"`
	Error      string    `json:"error,omitempty"`
	Payload    any       `json:"payload"`
}

type Registry struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
	known     map[string]bool
	fallback  FallbackMode
	logger    zerolog.Logger
	now       func() time.Time
}

func NewRegistry(logger zerolog.Logger, fallback FallbackMode, widgets ...string) *Registry {
	known := make(map[string]bool, len(widgets))
	for _, w := range widgets {
		known[w] = true
	}
	if fallback == "" {
		fallback = FallbackSample
	}
	return &Registry{
		snapshots: map[string]Snapshot{},
		known:     known,
		fallback:  fallback,
		logger:    logger,
		now:       time.Now,
	}
}

// Render replaces the widget's snapshot. Unknown widgets are skipped with a
// warning rather than failing the refresh cycle that reached them.
func (r *Registry) Render(widget string, source Source, payload any) {
	r.renderSnapshot(widget, Snapshot{Source: source, Payload: payload})
}

// RenderError records a failed refresh for widgets under FallbackError
// policy.
func (r *Registry) RenderError(widget string, message string) {
	r.renderSnapshot(widget, Snapshot{Source: SourceLive, Error: message})
}

func (r *Registry) renderSnapshot(widget string, snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.known[widget] {
		r.logger.Warn().Str("widget", widget).Msg("render target not registered, skipping")
		return
	}
	snap.Widget = widget
	snap.ProducedAt = r.now().UTC()
	r.snapshots[widget] = snap
}

func (r *Registry) Get(widget string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[widget]
	return snap, ok
}

func (r *Registry) Fallback() FallbackMode {
	return r.fallback
}
