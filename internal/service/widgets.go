package service

import (
	"github.com/fieldops/opsboard/internal/models"
)

// Summary is the KPI card payload.
type Summary struct {
	TotalTickets     int     `json:"total_tickets"`
	OpenTickets      int     `json:"open_tickets"`
	InProgress       int     `json:"in_progress"`
	Completed        int     `json:"completed"`
	Cancelled        int     `json:"cancelled"`
	EmergencyTickets int     `json:"emergency_tickets"`
	TotalTeams       int     `json:"total_teams"`
	ActiveTeams      int     `json:"active_teams"`
	AvgRating        float64 `json:"avg_rating"`
	AvgProductivity  float64 `json:"avg_productivity"`
}

func BuildSummary(tickets []models.Ticket, teams []models.FieldTeam, aggregates []models.ZoneAggregate) Summary {
	s := Summary{TotalTickets: len(tickets), TotalTeams: len(teams)}
	for _, t := range tickets {
		switch t.Status {
		case models.StatusOpen, models.StatusUnknown:
			s.OpenTickets++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusCancelled:
			s.Cancelled++
		}
		if t.Priority == models.PriorityEmergency {
			s.EmergencyTickets++
		}
	}
	var ratingSum float64
	for _, team := range teams {
		if team.Active {
			s.ActiveTeams++
		}
		ratingSum += team.Productivity.CustomerRating
	}
	if len(teams) > 0 {
		s.AvgRating = round2(ratingSum / float64(len(teams)))
	}
	// Zone-weighted productivity: weight each zone by its team count so a
	// one-team zone does not skew the board figure.
	var weighted float64
	var teamsCounted int
	for _, agg := range aggregates {
		weighted += agg.ProductivityPercentage * float64(agg.TotalTeams)
		teamsCounted += agg.TotalTeams
	}
	if teamsCounted > 0 {
		s.AvgProductivity = round1(weighted / float64(teamsCounted))
	}
	return s
}

// TeamEntry is one row of the team grid, the team plus its composite score.
type TeamEntry struct {
	models.FieldTeam
	Score float64 `json:"score"`
}

func BuildTeamEntries(teams []models.FieldTeam) []TeamEntry {
	out := make([]TeamEntry, 0, len(teams))
	for _, team := range teams {
		out = append(out, TeamEntry{FieldTeam: team, Score: TeamScore(team)})
	}
	return out
}

// MapPoint is a live-map marker for a coordinates-bearing ticket.
type MapPoint struct {
	TicketID     string                `json:"ticket_id"`
	TicketNumber string                `json:"ticket_number"`
	Status       models.TicketStatus   `json:"status"`
	Priority     models.TicketPriority `json:"priority"`
	Zone         string                `json:"zone"`
	Lat          float64               `json:"lat"`
	Lon          float64               `json:"lon"`
}

func BuildMapPoints(tickets []models.Ticket, teams []models.FieldTeam) []MapPoint {
	teamZones := make([]string, 0, len(teams))
	seen := map[string]bool{}
	for _, team := range teams {
		if team.Zone != "" && !seen[team.Zone] {
			seen[team.Zone] = true
			teamZones = append(teamZones, team.Zone)
		}
	}

	out := []MapPoint{}
	for _, t := range tickets {
		if t.Lat == nil || t.Lon == nil {
			continue
		}
		out = append(out, MapPoint{
			TicketID:     t.ID,
			TicketNumber: t.TicketNumber,
			Status:       t.Status,
			Priority:     t.Priority,
			Zone:         models.ResolveTicketZone(t, teamZones),
			Lat:          *t.Lat,
			Lon:          *t.Lon,
		})
	}
	return out
}

// Per-completed-ticket material coefficients from the planning view.
const (
	unitsPerTicket      = 2.0
	fiberPerTicket      = 1.5
	cpePerTicket        = 0.4
	connectorsPerTicket = 1.2
	splittersPerTicket  = 0.3
)

// MaterialUsage estimates per-zone material consumption from completed
// ticket volume. These are planning figures, not inventory truth.
type MaterialUsage struct {
	Zone       string  `json:"zone"`
	TotalUsage float64 `json:"total_usage"`
	Fiber      float64 `json:"fiber"`
	CPE        float64 `json:"cpe"`
	Connectors float64 `json:"connectors"`
	Splitters  float64 `json:"splitters"`
}

func EstimateMaterials(aggregates []models.ZoneAggregate) []MaterialUsage {
	out := make([]MaterialUsage, 0, len(aggregates))
	for _, agg := range aggregates {
		completed := float64(agg.TicketsCompleted)
		out = append(out, MaterialUsage{
			Zone:       agg.Zone,
			TotalUsage: round1(completed * unitsPerTicket),
			Fiber:      round1(completed * fiberPerTicket),
			CPE:        round1(completed * cpePerTicket),
			Connectors: round1(completed * connectorsPerTicket),
			Splitters:  round1(completed * splittersPerTicket),
		})
	}
	return out
}
