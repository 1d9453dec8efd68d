// Package upstream talks to the backend ticketing API. It owns the wire
// quirks: the three historical response envelopes, inconsistent status and
// priority spellings, and optional productivity blocks all get normalized
// here so the rest of the service only sees canonical records.
package upstream

import (
	"context"
	"errors"

	"github.com/fieldops/opsboard/internal/models"
)

var ErrNotFound = errors.New("upstream: not found")

// TicketV2Page is one page of the pre-joined /ticketv2 response.
type TicketV2Page struct {
	Tickets     []models.Ticket     `json:"tickets"`
	Teams       []models.FieldTeam  `json:"teams"`
	Assignments []models.Assignment `json:"assignments"`
	Total       int                 `json:"total"`
}

type AssignRequest struct {
	TeamID string `json:"team_id" validate:"required"`
	Type   string `json:"type" validate:"omitempty,oneof=auto manual"`
}

type Client interface {
	FetchTickets(ctx context.Context) ([]models.Ticket, error)
	FetchTeams(ctx context.Context) ([]models.FieldTeam, error)
	FetchAssignments(ctx context.Context) ([]models.Assignment, error)
	FetchTicketV2(ctx context.Context, limit, offset int) (TicketV2Page, error)
	FetchPerformance(ctx context.Context) (models.PerformanceReport, error)
	AssignTicket(ctx context.Context, ticketID string, req AssignRequest) (models.Assignment, error)
	UpdateAssignmentStatus(ctx context.Context, assignmentID string, status string) (models.Assignment, error)
}
