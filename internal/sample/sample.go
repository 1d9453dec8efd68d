// Package sample holds the hardcoded fallback datasets served when the
// backend API is unreachable and no cached copy exists. The dashboard must
// always render something.
package sample

import (
	"time"

	"github.com/fieldops/opsboard/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

var baseTime = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

func Teams() []models.FieldTeam {
	return []models.FieldTeam{
		{
			ID: "team-alpha", Name: "Team Alpha", Zone: "Central Zone", State: "Kuala Lumpur",
			Status: "active", Active: true,
			Lat: floatPtr(3.14), Lon: floatPtr(101.69),
			Productivity: models.Productivity{
				EfficiencyScore: 88, ProductivityScore: 74, CustomerRating: 4.8,
				TicketsCompleted: 45, ResponseTimeMin: 32,
			},
		},
		{
			ID: "team-beta", Name: "Team Beta", Zone: "Central Zone", State: "Selangor",
			Status: "active", Active: true,
			Lat: floatPtr(3.07), Lon: floatPtr(101.52),
			Productivity: models.Productivity{
				EfficiencyScore: 82, ProductivityScore: 69, CustomerRating: 4.6,
				TicketsCompleted: 38, ResponseTimeMin: 41,
			},
		},
		{
			ID: "team-gamma", Name: "Team Gamma", Zone: "Northern Zone", State: "Penang",
			Status: "active", Active: true,
			Lat: floatPtr(5.35), Lon: floatPtr(100.30),
			Productivity: models.Productivity{
				EfficiencyScore: 85, ProductivityScore: 71, CustomerRating: 4.7,
				TicketsCompleted: 32, ResponseTimeMin: 38,
			},
		},
		{
			ID: "team-delta", Name: "Team Delta", Zone: "Southern Zone", State: "Johor",
			Status: "busy", Active: true,
			Lat: floatPtr(1.49), Lon: floatPtr(103.74),
			Productivity: models.Productivity{
				EfficiencyScore: 79, ProductivityScore: 64, CustomerRating: 4.5,
				TicketsCompleted: 28, ResponseTimeMin: 47,
			},
		},
		{
			ID: "team-epsilon", Name: "Team Epsilon", Zone: "East Malaysia Zone", State: "Sabah",
			Status: "offline", Active: false,
			Lat: floatPtr(5.97), Lon: floatPtr(116.07),
			Productivity: models.Productivity{
				EfficiencyScore: 73, ProductivityScore: 58, CustomerRating: 4.2,
				TicketsCompleted: 19, ResponseTimeMin: 62,
			},
		},
	}
}

func Tickets() []models.Ticket {
	return []models.Ticket{
		{
			ID: "sample-t1", TicketNumber: "CTT_001",
			Title: "Fiber outage at Jalan Ampang", Description: "Complete loss of service, suspected cable cut.",
			Status: models.StatusOpen, Priority: models.PriorityEmergency,
			Category: "emergency", Zone: "Central Zone", State: "Kuala Lumpur",
			CustomerID: "cust-1001", TeamID: nil,
			Lat: floatPtr(3.16), Lon: floatPtr(101.71),
			CreatedAt: baseTime,
		},
		{
			ID: "sample-t2", TicketNumber: "CTT_002",
			Title: "CPE replacement", Description: "Router rebooting intermittently.",
			Status: models.StatusInProgress, Priority: models.PriorityMedium,
			Category: "maintenance", Zone: "Central Zone", State: "Selangor",
			CustomerID: "cust-1002", TeamID: strPtr("team-beta"),
			Lat: floatPtr(3.05), Lon: floatPtr(101.58),
			CreatedAt: baseTime.Add(2 * time.Hour),
		},
		{
			ID: "sample-t3", TicketNumber: "CTT_003",
			Title: "Splitter installation", Description: "New apartment block hookup.",
			Status: models.StatusCompleted, Priority: models.PriorityLow,
			Category: "general", Zone: "Northern Zone", State: "Penang",
			CustomerID: "cust-1003", TeamID: strPtr("team-gamma"),
			CreatedAt:   baseTime.Add(-24 * time.Hour),
			ResolvedAt:  timePtr(baseTime.Add(-20 * time.Hour)),
			CompletedAt: timePtr(baseTime.Add(-19 * time.Hour)),
		},
		{
			ID: "sample-t4", TicketNumber: "CTT_004",
			Title: "Port congestion", Description: "Slow speeds in evening hours.",
			Status: models.StatusOpen, Priority: models.PriorityHigh,
			Category: "general", Zone: "Southern Zone", State: "Johor",
			CustomerID: "cust-1004", TeamID: nil,
			Lat: floatPtr(1.46), Lon: floatPtr(103.76),
			CreatedAt: baseTime.Add(5 * time.Hour),
		},
		{
			ID: "sample-t5", TicketNumber: "CTT_005",
			Title: "Drop cable re-route", Description: "Cable damaged by construction work.",
			Status: models.StatusCancelled, Priority: models.PriorityMedium,
			Category: "maintenance", Zone: "East Malaysia Zone", State: "Sabah",
			CustomerID: "cust-1005", TeamID: strPtr("team-epsilon"),
			CreatedAt: baseTime.Add(-48 * time.Hour),
		},
	}
}

func Assignments() []models.Assignment {
	return []models.Assignment{
		{
			ID: "sample-a1", TicketID: "sample-t2", TeamID: "team-beta",
			Status: models.AssignmentInProgress, Type: "auto", Score: 0.91,
			AssignedAt: baseTime.Add(2*time.Hour + 10*time.Minute),
		},
		{
			ID: "sample-a2", TicketID: "sample-t3", TeamID: "team-gamma",
			Status: models.AssignmentCompleted, Type: "manual", Score: 0.84,
			AssignedAt: baseTime.Add(-23 * time.Hour),
		},
		{
			ID: "sample-a3", TicketID: "sample-t5", TeamID: "team-epsilon",
			Status: models.AssignmentAssigned, Type: "auto", Score: 0.67,
			AssignedAt: baseTime.Add(-47 * time.Hour),
		},
	}
}

// Performance mirrors the shape of GET /ticketv2/analytics/performance with
// six weeks of plausible history.
func Performance() models.PerformanceReport {
	return models.PerformanceReport{
		WeeklyTrends: []models.WeeklyTrend{
			{WeekLabel: "W23", Open: 34, InProgress: 21, Completed: 48, Cancelled: 4},
			{WeekLabel: "W24", Open: 31, InProgress: 24, Completed: 52, Cancelled: 3},
			{WeekLabel: "W25", Open: 29, InProgress: 22, Completed: 55, Cancelled: 5},
			{WeekLabel: "W26", Open: 33, InProgress: 19, Completed: 51, Cancelled: 2},
			{WeekLabel: "W27", Open: 27, InProgress: 23, Completed: 58, Cancelled: 4},
			{WeekLabel: "W28", Open: 25, InProgress: 20, Completed: 61, Cancelled: 3},
		},
		StatesWeekly: map[string][]models.WeeklyTrend{
			"Selangor": {
				{WeekLabel: "W27", Open: 9, InProgress: 7, Completed: 18, Cancelled: 1},
				{WeekLabel: "W28", Open: 8, InProgress: 6, Completed: 20, Cancelled: 1},
			},
			"Penang": {
				{WeekLabel: "W27", Open: 6, InProgress: 5, Completed: 14, Cancelled: 1},
				{WeekLabel: "W28", Open: 5, InProgress: 5, Completed: 15, Cancelled: 0},
			},
			"Johor": {
				{WeekLabel: "W27", Open: 7, InProgress: 6, Completed: 13, Cancelled: 1},
				{WeekLabel: "W28", Open: 7, InProgress: 5, Completed: 14, Cancelled: 1},
			},
		},
		Recommendations: []string{
			"Completion volume trending up for two consecutive weeks.",
			"Open backlog shrinking; current staffing level is adequate.",
		},
		Summary: models.PerformanceSummary{
			AvgProductivity: 71.4,
			AvgEfficiency:   81.2,
			TotalCompleted:  325,
		},
	}
}
