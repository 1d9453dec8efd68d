package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldops/opsboard/internal/cache"
	"github.com/fieldops/opsboard/internal/models"
	"github.com/fieldops/opsboard/internal/sample"
	"github.com/fieldops/opsboard/internal/upstream"
	"github.com/fieldops/opsboard/internal/view"
)

const (
	cacheKeyBoard       = "board"
	cacheKeyPerformance = "performance"

	defaultPageSize = 200
	maxPages        = 50
)

// Refresher runs the fetch → normalize → aggregate → render pipeline for
// each widget group. A cycle is strictly sequential; cycles for different
// tasks are independent.
type Refresher struct {
	Upstream upstream.Client
	Gate     cache.Gate
	Views    *view.Registry
	Logger   zerolog.Logger
	TTL      time.Duration
	PageSize int
}

// boardData is the joined dataset behind every board widget. It crosses
// the cache gate as one blob so all widgets of a cycle agree.
type boardData struct {
	Tickets     []models.Ticket     `json:"tickets"`
	Teams       []models.FieldTeam  `json:"teams"`
	Assignments []models.Assignment `json:"assignments"`
}

// RefreshBoard refreshes the ticket list, team grid, zone ranking, summary
// cards, live map, and material planning widgets from one joined fetch.
// Failures degrade: stale cache first, then the sample dataset, so a render
// always happens.
func (r *Refresher) RefreshBoard(ctx context.Context) error {
	start := time.Now()

	data, ok, err := cache.GetOrFetch(ctx, r.Gate, cacheKeyBoard, r.TTL, r.fetchBoard)
	source := view.SourceLive
	switch {
	case err == nil:
		// Fresh fetch or fresh cache hit.
	case ok:
		source = view.SourceCache
		r.Logger.Warn().Err(err).Msg("board refresh failed, serving cached copy")
	default:
		if r.Views.Fallback() == view.FallbackError {
			r.renderBoardError(err)
			return err
		}
		source = view.SourceSample
		data = boardData{
			Tickets:     sample.Tickets(),
			Teams:       sample.Teams(),
			Assignments: sample.Assignments(),
		}
		r.Logger.Warn().Err(err).Msg("board refresh failed with empty cache, serving sample data")
	}

	attachAssignments(data.Tickets, data.Assignments)
	aggregates := AggregateByZone(data.Tickets, data.Teams)

	r.Views.Render(view.WidgetTickets, source, data.Tickets)
	r.Views.Render(view.WidgetTeams, source, BuildTeamEntries(data.Teams))
	r.Views.Render(view.WidgetZones, source, aggregates)
	r.Views.Render(view.WidgetSummary, source, BuildSummary(data.Tickets, data.Teams, aggregates))
	r.Views.Render(view.WidgetMap, source, BuildMapPoints(data.Tickets, data.Teams))
	r.Views.Render(view.WidgetMaterials, source, EstimateMaterials(aggregates))

	r.Logger.Info().
		Str("source", string(source)).
		Int("tickets", len(data.Tickets)).
		Int("teams", len(data.Teams)).
		Int("assignments", len(data.Assignments)).
		Int("zones", len(aggregates)).
		Dur("elapsed", time.Since(start)).
		Msg("board refresh complete")

	if source == view.SourceCache {
		return err
	}
	return nil
}

// fetchBoard pages through /ticketv2; older backends without it get the
// three legacy list endpoints instead.
func (r *Refresher) fetchBoard(ctx context.Context) (boardData, error) {
	pageSize := r.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var data boardData
	for page := 0; page < maxPages; page++ {
		res, err := r.Upstream.FetchTicketV2(ctx, pageSize, page*pageSize)
		if err != nil {
			if errors.Is(err, upstream.ErrNotFound) && page == 0 {
				return r.fetchBoardLegacy(ctx)
			}
			return boardData{}, err
		}
		data.Tickets = append(data.Tickets, res.Tickets...)
		if page == 0 {
			data.Teams = res.Teams
			data.Assignments = res.Assignments
		}
		if len(res.Tickets) < pageSize || (res.Total > 0 && len(data.Tickets) >= res.Total) {
			break
		}
	}
	return data, nil
}

func (r *Refresher) fetchBoardLegacy(ctx context.Context) (boardData, error) {
	tickets, err := r.Upstream.FetchTickets(ctx)
	if err != nil {
		return boardData{}, err
	}
	teams, err := r.Upstream.FetchTeams(ctx)
	if err != nil {
		return boardData{}, err
	}
	assignments, err := r.Upstream.FetchAssignments(ctx)
	if err != nil {
		return boardData{}, err
	}
	return boardData{Tickets: tickets, Teams: teams, Assignments: assignments}, nil
}

// RefreshPerformance refreshes the analytics charts widget.
func (r *Refresher) RefreshPerformance(ctx context.Context) error {
	start := time.Now()

	report, ok, err := cache.GetOrFetch(ctx, r.Gate, cacheKeyPerformance, r.TTL, r.Upstream.FetchPerformance)
	source := view.SourceLive
	switch {
	case err == nil:
	case ok:
		source = view.SourceCache
		r.Logger.Warn().Err(err).Msg("performance refresh failed, serving cached copy")
	default:
		if r.Views.Fallback() == view.FallbackError {
			r.Views.RenderError(view.WidgetPerformance, err.Error())
			return err
		}
		source = view.SourceSample
		report = sample.Performance()
		r.Logger.Warn().Err(err).Msg("performance refresh failed with empty cache, serving sample data")
	}

	r.Views.Render(view.WidgetPerformance, source, BuildPerformanceView(report))

	r.Logger.Info().
		Str("source", string(source)).
		Int("weeks", len(report.WeeklyTrends)).
		Int("states", len(report.StatesWeekly)).
		Dur("elapsed", time.Since(start)).
		Msg("performance refresh complete")

	if source == view.SourceCache {
		return err
	}
	return nil
}

func (r *Refresher) renderBoardError(err error) {
	for _, widget := range []string{
		view.WidgetTickets, view.WidgetTeams, view.WidgetZones,
		view.WidgetSummary, view.WidgetMap, view.WidgetMaterials,
	} {
		r.Views.RenderError(widget, err.Error())
	}
}

// attachAssignments fills a ticket's team reference from its most recent
// non-terminal assignment when the ticket itself arrived without one.
func attachAssignments(tickets []models.Ticket, assignments []models.Assignment) {
	byTicket := map[string]models.Assignment{}
	for _, a := range assignments {
		if a.Status == models.AssignmentCompleted {
			continue
		}
		prev, ok := byTicket[a.TicketID]
		if !ok || a.AssignedAt.After(prev.AssignedAt) {
			byTicket[a.TicketID] = a
		}
	}
	for i := range tickets {
		if tickets[i].TeamID != nil {
			continue
		}
		if a, ok := byTicket[tickets[i].ID]; ok && a.TeamID != "" {
			teamID := a.TeamID
			tickets[i].TeamID = &teamID
		}
	}
}
