package models

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
)

// TicketStatus is the canonical status vocabulary. Upstream endpoints send
// several spellings per status; everything goes through NormalizeStatus at
// the boundary and compares against these tags only.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusCompleted  TicketStatus = "completed"
	StatusCancelled  TicketStatus = "cancelled"
	StatusUnknown    TicketStatus = "unknown"
)

type TicketPriority string

const (
	PriorityLow       TicketPriority = "low"
	PriorityMedium    TicketPriority = "medium"
	PriorityHigh      TicketPriority = "high"
	PriorityUrgent    TicketPriority = "urgent"
	PriorityEmergency TicketPriority = "emergency"
	PriorityUnknown   TicketPriority = "unknown"
)

type AssignmentStatus string

const (
	AssignmentAssigned   AssignmentStatus = "assigned"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
	AssignmentUnknown    AssignmentStatus = "unknown"
)

type Ticket struct {
	ID           string         `json:"id"`
	TicketNumber string         `json:"ticket_number"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Status       TicketStatus   `json:"status"`
	Priority     TicketPriority `json:"priority"`
	Category     string         `json:"category"`
	Zone         string         `json:"zone"`
	State        string         `json:"state"`
	CustomerID   string         `json:"customer_id"`
	TeamID       *string        `json:"team_id"`
	Lat          *float64       `json:"lat,omitempty"`
	Lon          *float64       `json:"lon,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// Productivity holds the per-team scoring block. Upstream may omit it
// entirely; the normalizer fills zero values so consumers never see nil.
type Productivity struct {
	EfficiencyScore   float64 `json:"efficiency_score"`
	ProductivityScore float64 `json:"productivity_score"`
	CustomerRating    float64 `json:"customer_rating"`
	TicketsCompleted  int     `json:"tickets_completed"`
	ResponseTimeMin   float64 `json:"response_time_min"`
}

type FieldTeam struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Zone         string       `json:"zone"`
	State        string       `json:"state"`
	Status       string       `json:"status"`
	Active       bool         `json:"active"`
	Lat          *float64     `json:"lat,omitempty"`
	Lon          *float64     `json:"lon,omitempty"`
	Productivity Productivity `json:"productivity"`
}

type Assignment struct {
	ID         string           `json:"id"`
	TicketID   string           `json:"ticket_id"`
	TeamID     string           `json:"team_id"`
	Status     AssignmentStatus `json:"status"`
	Type       string           `json:"type"`
	Score      float64          `json:"score"`
	AssignedAt time.Time        `json:"assigned_at"`
}

// ZoneAggregate is derived per refresh cycle from the current ticket and
// team lists. It is never persisted.
type ZoneAggregate struct {
	Zone                   string  `json:"zone"`
	TotalTeams             int     `json:"total_teams"`
	ActiveTeams            int     `json:"active_teams"`
	OpenTickets            int     `json:"open_tickets"`
	ClosedTickets          int     `json:"closed_tickets"`
	TicketsCompleted       int     `json:"tickets_completed"`
	AvgEfficiencyScore     float64 `json:"avg_efficiency_score"`
	AvgProductivityScore   float64 `json:"avg_productivity_score"`
	AvgRating              float64 `json:"avg_rating"`
	AvgResponseTimeMin     float64 `json:"avg_response_time_min"`
	ProductivityPercentage float64 `json:"productivity_percentage"`
}

func NormalizeStatus(value string) TicketStatus {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, "-", "_")
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case "open", "new", "reopened", "on_hold", "onhold":
		return StatusOpen
	case "in_progress", "inprogress", "assigned", "pending", "working":
		return StatusInProgress
	case "completed", "complete", "resolved", "closed", "done":
		return StatusCompleted
	case "cancelled", "canceled", "rejected":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

func NormalizePriority(value string) TicketPriority {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "low", "minor":
		return PriorityLow
	case "medium", "normal", "standard":
		return PriorityMedium
	case "high", "major":
		return PriorityHigh
	case "urgent":
		return PriorityUrgent
	case "emergency", "critical":
		return PriorityEmergency
	default:
		return PriorityUnknown
	}
}

func NormalizeAssignmentStatus(value string) AssignmentStatus {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, "-", "_")
	switch v {
	case "assigned":
		return AssignmentAssigned
	case "accepted":
		return AssignmentAccepted
	case "in_progress":
		return AssignmentInProgress
	case "completed", "done":
		return AssignmentCompleted
	default:
		return AssignmentUnknown
	}
}

// IsOpen reports whether a ticket counts toward a zone's open bucket.
// Unknown statuses count as open so they stay visible on the board.
func (s TicketStatus) IsOpen() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusUnknown
}

func (s TicketStatus) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// SynthesizeTicketNumber builds the CTT_### display identifier for tickets
// that arrive without a backend-assigned number. Derived from a stable hash
// of the ID so repeated fetches agree.
func SynthesizeTicketNumber(id string) string {
	return fmt.Sprintf("CTT_%03d", HashID(id)%1000)
}

// HashID is the stable hash used for ticket-number synthesis and
// deterministic mock data generation.
func HashID(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
