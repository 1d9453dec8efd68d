package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/opsboard/internal/models"
	"github.com/fieldops/opsboard/internal/sample"
)

// Mock serves the sample datasets with deterministic hash-seeded variation,
// for dev mode and tests. No network access.
type Mock struct {
	Seed string
}

func (m Mock) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets := sample.Tickets()
	h := models.HashID(m.Seed)
	statuses := []models.TicketStatus{models.StatusOpen, models.StatusInProgress, models.StatusCompleted}
	for i := range tickets {
		if tickets[i].Status == models.StatusOpen {
			tickets[i].Status = statuses[(h+uint64(i))%uint64(len(statuses))]
		}
	}
	return tickets, nil
}

func (m Mock) FetchTeams(ctx context.Context) ([]models.FieldTeam, error) {
	return sample.Teams(), nil
}

func (m Mock) FetchAssignments(ctx context.Context) ([]models.Assignment, error) {
	return sample.Assignments(), nil
}

func (m Mock) FetchTicketV2(ctx context.Context, limit, offset int) (TicketV2Page, error) {
	tickets, _ := m.FetchTickets(ctx)
	if offset > len(tickets) {
		offset = len(tickets)
	}
	end := len(tickets)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return TicketV2Page{
		Tickets:     tickets[offset:end],
		Teams:       sample.Teams(),
		Assignments: sample.Assignments(),
		Total:       len(tickets),
	}, nil
}

func (m Mock) FetchPerformance(ctx context.Context) (models.PerformanceReport, error) {
	return sample.Performance(), nil
}

func (m Mock) AssignTicket(ctx context.Context, ticketID string, req AssignRequest) (models.Assignment, error) {
	kind := req.Type
	if kind == "" {
		kind = "manual"
	}
	return models.Assignment{
		ID:         fmt.Sprintf("mock-%d", models.HashID(ticketID+req.TeamID)%100000),
		TicketID:   ticketID,
		TeamID:     req.TeamID,
		Status:     models.AssignmentAssigned,
		Type:       kind,
		Score:      0.5 + float64(models.HashID(ticketID)%50)/100,
		AssignedAt: time.Now().UTC(),
	}, nil
}

func (m Mock) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status string) (models.Assignment, error) {
	normalized := models.NormalizeAssignmentStatus(status)
	if normalized == models.AssignmentUnknown {
		return models.Assignment{}, fmt.Errorf("unknown assignment status %q", status)
	}
	return models.Assignment{
		ID:         assignmentID,
		Status:     normalized,
		AssignedAt: time.Now().UTC(),
	}, nil
}
