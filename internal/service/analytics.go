package service

import (
	"fmt"
	"sort"

	"github.com/fieldops/opsboard/internal/models"
)

// projectionWeeks is how far the board extrapolates when the backend sends
// no projections of its own.
const projectionWeeks = 2

type ChartSeries struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

type ChartDataset struct {
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

// WeekDeltas are week-over-week percentage changes computed from the two
// most recent real weeks. No history means zero deltas; nothing is
// fabricated.
type WeekDeltas struct {
	Open       float64 `json:"open"`
	InProgress float64 `json:"in_progress"`
	Completed  float64 `json:"completed"`
	Cancelled  float64 `json:"cancelled"`
}

// PerformanceView is the chart-ready reshaping of the backend's analytics
// payload.
type PerformanceView struct {
	Weekly           ChartDataset              `json:"weekly"`
	Projections      ChartDataset              `json:"projections"`
	StatesOpenClosed ChartDataset              `json:"states_open_closed"`
	Deltas           WeekDeltas                `json:"deltas"`
	Recommendations  []string                  `json:"recommendations"`
	Summary          models.PerformanceSummary `json:"summary"`
}

func BuildPerformanceView(report models.PerformanceReport) PerformanceView {
	view := PerformanceView{
		Weekly:          trendsToDataset(report.WeeklyTrends),
		Recommendations: report.Recommendations,
		Summary:         report.Summary,
	}

	projections := report.Projections
	if len(projections) == 0 {
		projections = ProjectTrends(report.WeeklyTrends, projectionWeeks)
	}
	view.Projections = trendsToDataset(projections)
	view.Deltas = weekOverWeek(report.WeeklyTrends)
	view.StatesOpenClosed = statesOpenClosed(report.StatesWeekly)
	return view
}

func trendsToDataset(trends []models.WeeklyTrend) ChartDataset {
	labels := make([]string, 0, len(trends))
	open := make([]float64, 0, len(trends))
	inProgress := make([]float64, 0, len(trends))
	completed := make([]float64, 0, len(trends))
	cancelled := make([]float64, 0, len(trends))
	for _, w := range trends {
		labels = append(labels, w.WeekLabel)
		open = append(open, float64(w.Open))
		inProgress = append(inProgress, float64(w.InProgress))
		completed = append(completed, float64(w.Completed))
		cancelled = append(cancelled, float64(w.Cancelled))
	}
	return ChartDataset{
		Labels: labels,
		Series: []ChartSeries{
			{Label: "Open", Data: open},
			{Label: "In Progress", Data: inProgress},
			{Label: "Completed", Data: completed},
			{Label: "Cancelled", Data: cancelled},
		},
	}
}

// ProjectTrends extrapolates n future weeks linearly from the average
// week-over-week change across the recent window, floored at zero.
func ProjectTrends(history []models.WeeklyTrend, n int) []models.WeeklyTrend {
	if len(history) < 2 || n <= 0 {
		return nil
	}

	window := history
	if len(window) > 4 {
		window = window[len(window)-4:]
	}
	steps := float64(len(window) - 1)
	first, last := window[0], window[len(window)-1]
	dOpen := float64(last.Open-first.Open) / steps
	dProg := float64(last.InProgress-first.InProgress) / steps
	dComp := float64(last.Completed-first.Completed) / steps
	dCanc := float64(last.Cancelled-first.Cancelled) / steps

	out := make([]models.WeeklyTrend, 0, n)
	prev := last
	for i := 1; i <= n; i++ {
		next := models.WeeklyTrend{
			WeekLabel:  fmt.Sprintf("%s+%d", last.WeekLabel, i),
			Open:       floorZero(float64(prev.Open) + dOpen),
			InProgress: floorZero(float64(prev.InProgress) + dProg),
			Completed:  floorZero(float64(prev.Completed) + dComp),
			Cancelled:  floorZero(float64(prev.Cancelled) + dCanc),
		}
		out = append(out, next)
		prev = next
	}
	return out
}

func weekOverWeek(history []models.WeeklyTrend) WeekDeltas {
	if len(history) < 2 {
		return WeekDeltas{}
	}
	prev := history[len(history)-2]
	last := history[len(history)-1]
	return WeekDeltas{
		Open:       pctChange(prev.Open, last.Open),
		InProgress: pctChange(prev.InProgress, last.InProgress),
		Completed:  pctChange(prev.Completed, last.Completed),
		Cancelled:  pctChange(prev.Cancelled, last.Cancelled),
	}
}

// statesOpenClosed charts each state's latest-week open vs closed volume,
// ordered by state name.
func statesOpenClosed(states map[string][]models.WeeklyTrend) ChartDataset {
	names := make([]string, 0, len(states))
	for name, weeks := range states {
		if len(weeks) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	open := make([]float64, 0, len(names))
	closed := make([]float64, 0, len(names))
	for _, name := range names {
		weeks := states[name]
		latest := weeks[len(weeks)-1]
		open = append(open, float64(latest.Open+latest.InProgress))
		closed = append(closed, float64(latest.Completed+latest.Cancelled))
	}
	return ChartDataset{
		Labels: names,
		Series: []ChartSeries{
			{Label: "Open", Data: open},
			{Label: "Closed", Data: closed},
		},
	}
}

func pctChange(prev, cur int) float64 {
	if prev == 0 {
		return 0
	}
	return round1(float64(cur-prev) / float64(prev) * 100)
}

func floorZero(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}
