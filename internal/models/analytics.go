package models

// PerformanceReport is the pre-aggregated analytics payload from
// GET /ticketv2/analytics/performance. The backend owns the heavy
// computation; this service only reshapes it for charting.
type PerformanceReport struct {
	WeeklyTrends    []WeeklyTrend            `json:"weekly_trends"`
	Projections     []WeeklyTrend            `json:"projections"`
	StatesWeekly    map[string][]WeeklyTrend `json:"states_weekly"`
	Recommendations []string                 `json:"recommendations"`
	Summary         PerformanceSummary       `json:"summary"`
}

type WeeklyTrend struct {
	WeekLabel  string `json:"week_label"`
	Open       int    `json:"open"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
	Cancelled  int    `json:"cancelled"`
}

type PerformanceSummary struct {
	AvgProductivity float64 `json:"avg_productivity"`
	AvgEfficiency   float64 `json:"avg_efficiency"`
	TotalCompleted  int     `json:"total_completed"`
}
