package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldops/opsboard/internal/models"
)

func TestExtractListEnvelopeShapes(t *testing.T) {
	// The same logical list has shipped in three shapes over the API's
	// lifetime; all of them must decode identically.
	shapes := map[string]string{
		"bare":    `[{"id":"t1"},{"id":"t2"}]`,
		"wrapped": `{"tickets":[{"id":"t1"},{"id":"t2"}]}`,
		"nested":  `{"tickets":{"tickets":[{"id":"t1"},{"id":"t2"}]}}`,
	}
	for name, body := range shapes {
		list, err := extractList([]byte(body), "tickets")
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if len(list) != 2 {
			t.Errorf("%s: got %d items, want 2", name, len(list))
		}
	}
}

func TestExtractListRejectsMissingKey(t *testing.T) {
	if _, err := extractList([]byte(`{"teams":[]}`), "tickets"); err == nil {
		t.Fatalf("missing entity key should error")
	}
	if _, err := extractList([]byte(`"nope"`), "tickets"); err == nil {
		t.Fatalf("non-object body should error")
	}
}

func TestRawTicketNormalize(t *testing.T) {
	raw := rawTicket{
		MongoID:         "abc123",
		TicketNumberAlt: "CTT_042",
		Status:          "Assigned",
		Priority:        "CRITICAL",
		Category:        " Installation ",
		Location:        &rawLocation{State: "Selangor"},
		CreatedAtAlt:    "2025-06-02T10:00:00Z",
	}
	ticket := raw.normalize()
	if ticket.ID != "abc123" {
		t.Errorf("ID = %q", ticket.ID)
	}
	if ticket.TicketNumber != "CTT_042" {
		t.Errorf("TicketNumber = %q", ticket.TicketNumber)
	}
	if ticket.Status != models.StatusInProgress {
		t.Errorf("Status = %q", ticket.Status)
	}
	if ticket.Priority != models.PriorityEmergency {
		t.Errorf("Priority = %q", ticket.Priority)
	}
	if ticket.Category != "installation" {
		t.Errorf("Category = %q", ticket.Category)
	}
	if ticket.State != "Selangor" {
		t.Errorf("State = %q", ticket.State)
	}
	if ticket.CreatedAt.IsZero() {
		t.Errorf("CreatedAt not parsed")
	}
}

func TestRawTicketNormalizeSynthesizesNumber(t *testing.T) {
	ticket := rawTicket{ID: "no-number"}.normalize()
	if ticket.TicketNumber != models.SynthesizeTicketNumber("no-number") {
		t.Fatalf("TicketNumber = %q", ticket.TicketNumber)
	}
}

func TestRawTeamNormalizeDefaults(t *testing.T) {
	team := rawTeam{ID: "team-1", State: "Penang", Status: "BUSY"}.normalize()
	if team.Zone != "Northern Zone" {
		t.Errorf("Zone = %q, want Northern Zone from state", team.Zone)
	}
	if !team.Active {
		t.Errorf("busy teams count as active")
	}
	// Missing productivity block becomes zeros, never nil surprises.
	if team.Productivity != (models.Productivity{}) {
		t.Errorf("Productivity = %+v", team.Productivity)
	}
}

func TestFetchTicketsWrappedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tickets" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tickets":[{"_id":"t1","status":"resolved","priority":"high"}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	tickets, err := client.FetchTickets(context.Background())
	if err != nil {
		t.Fatalf("FetchTickets: %v", err)
	}
	if len(tickets) != 1 || tickets[0].ID != "t1" || tickets[0].Status != models.StatusCompleted {
		t.Fatalf("unexpected tickets: %+v", tickets)
	}
}

func TestFetchTicketV2NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.FetchTicketV2(context.Background(), 10, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchTicketV2Page(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "10" || r.URL.Query().Get("offset") != "20" {
			t.Errorf("pagination not forwarded: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"tickets":[{"id":"t1","status":"open"}],
			"teams":[{"id":"team-1","zone":"Central Zone","status":"active"}],
			"assignments":[{"id":"a1","ticket_id":"t1","team_id":"team-1","status":"assigned"}],
			"total":41
		}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	page, err := client.FetchTicketV2(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("FetchTicketV2: %v", err)
	}
	if len(page.Tickets) != 1 || len(page.Teams) != 1 || len(page.Assignments) != 1 || page.Total != 41 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Assignments[0].Status != models.AssignmentAssigned {
		t.Fatalf("assignment status = %q", page.Assignments[0].Status)
	}
}

func TestAssignTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tickets/t1/assign" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req AssignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TeamID != "team-1" {
			t.Errorf("bad payload: %+v, %v", req, err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"a1","ticket_id":"t1","team_id":"team-1","status":"assigned","assigned_at":"2025-06-02T10:00:00Z"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	a, err := client.AssignTicket(context.Background(), "t1", AssignRequest{TeamID: "team-1", Type: "manual"})
	if err != nil {
		t.Fatalf("AssignTicket: %v", err)
	}
	if a.ID != "a1" || a.Status != models.AssignmentAssigned || a.AssignedAt.IsZero() {
		t.Fatalf("unexpected assignment: %+v", a)
	}
}

func TestUpdateAssignmentStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/assignments/a1/status" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"a1","status":"completed"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	a, err := client.UpdateAssignmentStatus(context.Background(), "a1", "completed")
	if err != nil {
		t.Fatalf("UpdateAssignmentStatus: %v", err)
	}
	if a.Status != models.AssignmentCompleted {
		t.Fatalf("status = %q", a.Status)
	}
}

func TestMockDeterminism(t *testing.T) {
	a := Mock{Seed: "s1"}
	b := Mock{Seed: "s1"}
	ta, _ := a.FetchTickets(context.Background())
	tb, _ := b.FetchTickets(context.Background())
	if len(ta) != len(tb) {
		t.Fatalf("lengths differ")
	}
	for i := range ta {
		if ta[i].Status != tb[i].Status {
			t.Fatalf("same seed must yield same statuses at %d", i)
		}
	}
}
