package service

import (
	"math"
	"sort"

	"github.com/fieldops/opsboard/internal/models"
)

// Productivity composite weights: 40% efficiency, 40% productivity, 20%
// customer rating normalized to a 0-100 scale.
const (
	weightEfficiency   = 0.4
	weightProductivity = 0.4
	weightRating       = 0.2
)

type zoneAccum struct {
	teams         int
	active        int
	efficiency    float64
	productivity  float64
	rating        float64
	responseTime  float64
	completed     int
	openTickets   int
	closedTickets int
}

// AggregateByZone groups the current team and ticket lists into per-zone
// aggregates. Buckets come from team zones; tickets that resolve to a zone
// with no team, or to nothing at all, land in the Unknown bucket.
func AggregateByZone(tickets []models.Ticket, teams []models.FieldTeam) []models.ZoneAggregate {
	buckets := map[string]*zoneAccum{}
	var teamZones []string

	for _, team := range teams {
		zone := team.Zone
		if zone == "" {
			zone = models.ZoneUnknown
		}
		acc, ok := buckets[zone]
		if !ok {
			acc = &zoneAccum{}
			buckets[zone] = acc
			teamZones = append(teamZones, zone)
		}
		acc.teams++
		if team.Active {
			acc.active++
		}
		acc.efficiency += team.Productivity.EfficiencyScore
		acc.productivity += team.Productivity.ProductivityScore
		acc.rating += team.Productivity.CustomerRating
		acc.responseTime += team.Productivity.ResponseTimeMin
		acc.completed += team.Productivity.TicketsCompleted
	}

	for _, t := range tickets {
		zone := models.ResolveTicketZone(t, teamZones)
		acc, ok := buckets[zone]
		if !ok {
			// No team bucket matches; count it under Unknown rather than
			// inventing a zone the board has no teams for.
			acc, ok = buckets[models.ZoneUnknown]
			if !ok {
				acc = &zoneAccum{}
				buckets[models.ZoneUnknown] = acc
			}
		}
		switch {
		case t.Status.IsClosed():
			acc.closedTickets++
		case t.Status.IsOpen():
			acc.openTickets++
		}
	}

	out := make([]models.ZoneAggregate, 0, len(buckets))
	for zone, acc := range buckets {
		agg := models.ZoneAggregate{
			Zone:             zone,
			TotalTeams:       acc.teams,
			ActiveTeams:      acc.active,
			OpenTickets:      acc.openTickets,
			ClosedTickets:    acc.closedTickets,
			TicketsCompleted: acc.completed,
		}
		if acc.teams > 0 {
			n := float64(acc.teams)
			agg.AvgEfficiencyScore = round2(acc.efficiency / n)
			agg.AvgProductivityScore = round2(acc.productivity / n)
			agg.AvgRating = round2(acc.rating / n)
			agg.AvgResponseTimeMin = round2(acc.responseTime / n)
		}
		agg.ProductivityPercentage = CompositeScore(agg.AvgEfficiencyScore, agg.AvgProductivityScore, agg.AvgRating)
		out = append(out, agg)
	}

	// Productivity descending; zone name breaks ties so ranking is stable
	// across refreshes.
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductivityPercentage == out[j].ProductivityPercentage {
			return out[i].Zone < out[j].Zone
		}
		return out[i].ProductivityPercentage > out[j].ProductivityPercentage
	})
	return out
}

// CompositeScore computes the weighted productivity percentage, clamped to
// [0,100] and rounded to one decimal. Raw scores outside 0-100 (bad
// upstream data) cannot push the result out of range.
func CompositeScore(efficiency, productivity, rating float64) float64 {
	score := efficiency*weightEfficiency +
		productivity*weightProductivity +
		(rating/5.0)*100*weightRating
	return round1(clamp(score, 0, 100))
}

// TeamScore is the same composite applied to a single team's block.
func TeamScore(team models.FieldTeam) float64 {
	return CompositeScore(
		team.Productivity.EfficiencyScore,
		team.Productivity.ProductivityScore,
		team.Productivity.CustomerRating,
	)
}

// TopZones returns the first n aggregates; the input is already ranked.
func TopZones(aggregates []models.ZoneAggregate, n int) []models.ZoneAggregate {
	if n <= 0 || n >= len(aggregates) {
		return aggregates
	}
	return aggregates[:n]
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
