package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldops/opsboard/internal/cache"
	"github.com/fieldops/opsboard/internal/models"
	"github.com/fieldops/opsboard/internal/upstream"
	"github.com/fieldops/opsboard/internal/view"
)

type fakeUpstream struct {
	page       upstream.TicketV2Page
	pageErr    error
	tickets    []models.Ticket
	teams      []models.FieldTeam
	legacyErr  error
	perf       models.PerformanceReport
	perfErr    error
	pageCalls  int
	legacyHits int
}

func (f *fakeUpstream) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	f.legacyHits++
	return f.tickets, f.legacyErr
}

func (f *fakeUpstream) FetchTeams(ctx context.Context) ([]models.FieldTeam, error) {
	return f.teams, f.legacyErr
}

func (f *fakeUpstream) FetchAssignments(ctx context.Context) ([]models.Assignment, error) {
	return nil, f.legacyErr
}

func (f *fakeUpstream) FetchTicketV2(ctx context.Context, limit, offset int) (upstream.TicketV2Page, error) {
	f.pageCalls++
	return f.page, f.pageErr
}

func (f *fakeUpstream) FetchPerformance(ctx context.Context) (models.PerformanceReport, error) {
	return f.perf, f.perfErr
}

func (f *fakeUpstream) AssignTicket(ctx context.Context, ticketID string, req upstream.AssignRequest) (models.Assignment, error) {
	return models.Assignment{}, nil
}

func (f *fakeUpstream) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status string) (models.Assignment, error) {
	return models.Assignment{}, nil
}

func newTestRegistry(mode view.FallbackMode) *view.Registry {
	return view.NewRegistry(zerolog.Nop(), mode,
		view.WidgetSummary, view.WidgetZones, view.WidgetTeams, view.WidgetTickets,
		view.WidgetPerformance, view.WidgetMap, view.WidgetMaterials,
	)
}

func newTestRefresher(client upstream.Client, views *view.Registry) *Refresher {
	return &Refresher{
		Upstream: client,
		Gate:     cache.NewMemory(),
		Views:    views,
		Logger:   zerolog.Nop(),
		TTL:      time.Minute,
	}
}

var boardWidgets = []string{
	view.WidgetTickets, view.WidgetTeams, view.WidgetZones,
	view.WidgetSummary, view.WidgetMap, view.WidgetMaterials,
}

func TestRefreshBoardRendersAllWidgets(t *testing.T) {
	client := &fakeUpstream{
		page: upstream.TicketV2Page{
			Tickets: []models.Ticket{{ID: "t1", Zone: "Central Zone", Status: models.StatusOpen}},
			Teams:   []models.FieldTeam{{ID: "team-1", Zone: "Central Zone", Active: true}},
			Total:   1,
		},
	}
	views := newTestRegistry(view.FallbackSample)
	r := newTestRefresher(client, views)

	if err := r.RefreshBoard(context.Background()); err != nil {
		t.Fatalf("RefreshBoard: %v", err)
	}
	for _, w := range boardWidgets {
		snap, ok := views.Get(w)
		if !ok {
			t.Fatalf("widget %s not rendered", w)
		}
		if snap.Source != view.SourceLive {
			t.Errorf("widget %s source = %q, want live", w, snap.Source)
		}
	}
}

func TestRefreshBoardSampleFallback(t *testing.T) {
	client := &fakeUpstream{pageErr: errors.New("backend down"), legacyErr: errors.New("backend down")}
	views := newTestRegistry(view.FallbackSample)
	r := newTestRefresher(client, views)

	if err := r.RefreshBoard(context.Background()); err != nil {
		t.Fatalf("sample fallback should not surface the error, got %v", err)
	}
	for _, w := range boardWidgets {
		snap, ok := views.Get(w)
		if !ok {
			t.Fatalf("widget %s not rendered despite fallback", w)
		}
		if snap.Source != view.SourceSample {
			t.Errorf("widget %s source = %q, want sample", w, snap.Source)
		}
	}
	snap, _ := views.Get(view.WidgetTickets)
	if tickets, ok := snap.Payload.([]models.Ticket); !ok || len(tickets) == 0 {
		t.Fatalf("sample tickets missing from snapshot")
	}
}

func TestRefreshBoardServesStaleOnFailure(t *testing.T) {
	client := &fakeUpstream{
		page: upstream.TicketV2Page{
			Tickets: []models.Ticket{{ID: "t1", Status: models.StatusOpen}},
			Total:   1,
		},
	}
	views := newTestRegistry(view.FallbackSample)
	r := newTestRefresher(client, views)
	r.TTL = 0 // every refresh goes upstream

	if err := r.RefreshBoard(context.Background()); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	client.pageErr = errors.New("backend down")
	err := r.RefreshBoard(context.Background())
	if err == nil {
		t.Fatalf("stale serve should still report the fetch error")
	}
	snap, _ := views.Get(view.WidgetTickets)
	if snap.Source != view.SourceCache {
		t.Fatalf("source = %q, want cache", snap.Source)
	}
	if tickets, ok := snap.Payload.([]models.Ticket); !ok || len(tickets) != 1 || tickets[0].ID != "t1" {
		t.Fatalf("stale payload lost: %+v", snap.Payload)
	}
}

func TestRefreshBoardErrorMode(t *testing.T) {
	client := &fakeUpstream{pageErr: errors.New("backend down"), legacyErr: errors.New("backend down")}
	views := newTestRegistry(view.FallbackError)
	r := newTestRefresher(client, views)

	if err := r.RefreshBoard(context.Background()); err == nil {
		t.Fatalf("error mode should surface the failure")
	}
	snap, ok := views.Get(view.WidgetTickets)
	if !ok || snap.Error == "" {
		t.Fatalf("error mode should render an error snapshot, got %+v", snap)
	}
}

func TestRefreshBoardLegacyFallback(t *testing.T) {
	client := &fakeUpstream{
		pageErr: upstream.ErrNotFound,
		tickets: []models.Ticket{{ID: "t1", Status: models.StatusOpen}},
		teams:   []models.FieldTeam{{ID: "team-1", Zone: "Central Zone"}},
	}
	views := newTestRegistry(view.FallbackSample)
	r := newTestRefresher(client, views)

	if err := r.RefreshBoard(context.Background()); err != nil {
		t.Fatalf("RefreshBoard: %v", err)
	}
	if client.legacyHits == 0 {
		t.Fatalf("missing ticketv2 endpoint should fall back to legacy endpoints")
	}
	snap, _ := views.Get(view.WidgetTickets)
	if snap.Source != view.SourceLive {
		t.Fatalf("legacy data is still live data, source = %q", snap.Source)
	}
}

func TestRefreshPerformanceSampleFallback(t *testing.T) {
	client := &fakeUpstream{perfErr: errors.New("backend down")}
	views := newTestRegistry(view.FallbackSample)
	r := newTestRefresher(client, views)

	if err := r.RefreshPerformance(context.Background()); err != nil {
		t.Fatalf("sample fallback should not surface the error, got %v", err)
	}
	snap, ok := views.Get(view.WidgetPerformance)
	if !ok || snap.Source != view.SourceSample {
		t.Fatalf("performance snapshot: %+v", snap)
	}
}

func TestAttachAssignments(t *testing.T) {
	teamID := "team-existing"
	now := time.Now()
	tickets := []models.Ticket{
		{ID: "t1"},
		{ID: "t2", TeamID: &teamID},
		{ID: "t3"},
	}
	assignments := []models.Assignment{
		{TicketID: "t1", TeamID: "team-old", Status: models.AssignmentAssigned, AssignedAt: now.Add(-time.Hour)},
		{TicketID: "t1", TeamID: "team-new", Status: models.AssignmentAccepted, AssignedAt: now},
		{TicketID: "t3", TeamID: "team-done", Status: models.AssignmentCompleted, AssignedAt: now},
	}
	attachAssignments(tickets, assignments)

	if tickets[0].TeamID == nil || *tickets[0].TeamID != "team-new" {
		t.Fatalf("t1 should take the latest active assignment, got %v", tickets[0].TeamID)
	}
	if *tickets[1].TeamID != "team-existing" {
		t.Fatalf("existing team reference must not be overwritten")
	}
	if tickets[2].TeamID != nil {
		t.Fatalf("completed assignments must not attach, got %v", tickets[2].TeamID)
	}
}
