package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fieldops/opsboard/internal/models"
)

type HTTPClient struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: GET %s", ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream GET %s: %s", path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *HTTPClient) send(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream %s %s: %s", method, path, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// extractList unwraps the three envelope shapes the API has shipped over
// time: a bare array, {entity: [...]}, and the versioned-API artifact
// {entity: {entity: [...]}}. The logical list is identical in all three.
func extractList(data []byte, entity string) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", entity, err)
	}
	inner, ok := wrapped[entity]
	if !ok {
		return nil, fmt.Errorf("decode %s response: key %q missing", entity, entity)
	}

	if err := json.Unmarshal(inner, &list); err == nil {
		return list, nil
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(inner, &nested); err != nil {
		return nil, fmt.Errorf("decode %s response: unexpected shape", entity)
	}
	inner, ok = nested[entity]
	if !ok {
		return nil, fmt.Errorf("decode %s response: nested key %q missing", entity, entity)
	}
	if err := json.Unmarshal(inner, &list); err != nil {
		return nil, fmt.Errorf("decode %s response: unexpected nested shape", entity)
	}
	return list, nil
}

type rawLocation struct {
	Address   string   `json:"address"`
	State     string   `json:"state"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type rawTicket struct {
	ID              string       `json:"id"`
	MongoID         string       `json:"_id"`
	TicketNumber    string       `json:"ticket_number"`
	TicketNumberAlt string       `json:"ticketNumber"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Status          string       `json:"status"`
	Priority        string       `json:"priority"`
	Category        string       `json:"category"`
	Zone            string       `json:"zone"`
	State           string       `json:"state"`
	CustomerID      string       `json:"customer_id"`
	CustomerAlt     string       `json:"customer"`
	TeamID          *string      `json:"team_id"`
	AssignedTeam    *string      `json:"assigned_team"`
	Location        *rawLocation `json:"location"`
	CreatedAt       string       `json:"created_at"`
	CreatedAtAlt    string       `json:"createdAt"`
	ResolvedAt      string       `json:"resolved_at"`
	CompletedAt     string       `json:"completed_at"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func parseTimeOrZero(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseTimePtr(value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	t := parseTimeOrZero(value)
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r rawTicket) normalize() models.Ticket {
	t := models.Ticket{
		ID:          firstNonEmpty(r.ID, r.MongoID),
		Title:       r.Title,
		Description: r.Description,
		Status:      models.NormalizeStatus(r.Status),
		Priority:    models.NormalizePriority(r.Priority),
		Category:    strings.ToLower(strings.TrimSpace(r.Category)),
		Zone:        strings.TrimSpace(r.Zone),
		State:       strings.TrimSpace(r.State),
		CustomerID:  firstNonEmpty(r.CustomerID, r.CustomerAlt),
		CreatedAt:   parseTimeOrZero(firstNonEmpty(r.CreatedAt, r.CreatedAtAlt)),
		ResolvedAt:  parseTimePtr(r.ResolvedAt),
		CompletedAt: parseTimePtr(r.CompletedAt),
	}
	if r.TeamID != nil && *r.TeamID != "" {
		t.TeamID = r.TeamID
	} else if r.AssignedTeam != nil && *r.AssignedTeam != "" {
		t.TeamID = r.AssignedTeam
	}
	if r.Location != nil {
		if t.State == "" {
			t.State = strings.TrimSpace(r.Location.State)
		}
		t.Lat = r.Location.Latitude
		t.Lon = r.Location.Longitude
	}
	t.TicketNumber = firstNonEmpty(r.TicketNumber, r.TicketNumberAlt)
	if t.TicketNumber == "" {
		t.TicketNumber = models.SynthesizeTicketNumber(t.ID)
	}
	return t
}

type rawProductivity struct {
	EfficiencyScore    *float64 `json:"efficiency_score"`
	EfficiencyScoreAlt *float64 `json:"efficiencyScore"`
	ProductivityScore  *float64 `json:"productivity_score"`
	CustomerRating     *float64 `json:"customer_rating"`
	CustomerRatingAlt  *float64 `json:"customerRating"`
	TicketsCompleted   *int     `json:"tickets_completed"`
	TotalCompleted     *int     `json:"totalTicketsCompleted"`
	ResponseTimeMin    *float64 `json:"response_time_min"`
	AvgCompletionMin   *float64 `json:"averageCompletionTime"`
}

type rawTeam struct {
	ID           string           `json:"id"`
	MongoID      string           `json:"_id"`
	Name         string           `json:"name"`
	Zone         string           `json:"zone"`
	State        string           `json:"state"`
	Status       string           `json:"status"`
	Active       *bool            `json:"active"`
	Location     *rawLocation     `json:"currentLocation"`
	Lat          *float64         `json:"lat"`
	Lon          *float64         `json:"lon"`
	Productivity *rawProductivity `json:"productivity"`
}

func pickFloat(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func pickInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func (r rawTeam) normalize() models.FieldTeam {
	team := models.FieldTeam{
		ID:     firstNonEmpty(r.ID, r.MongoID),
		Name:   r.Name,
		Zone:   strings.TrimSpace(r.Zone),
		State:  strings.TrimSpace(r.State),
		Status: strings.ToLower(strings.TrimSpace(r.Status)),
		Lat:    r.Lat,
		Lon:    r.Lon,
	}
	if team.Zone == "" {
		team.Zone = models.ZoneForState(team.State)
	}
	if r.Active != nil {
		team.Active = *r.Active
	} else {
		team.Active = team.Status == "active" || team.Status == "busy"
	}
	if r.Location != nil {
		if team.Lat == nil {
			team.Lat = r.Location.Latitude
		}
		if team.Lon == nil {
			team.Lon = r.Location.Longitude
		}
	}
	// Absent productivity blocks become zero values, never nil.
	if r.Productivity != nil {
		team.Productivity = models.Productivity{
			EfficiencyScore:   pickFloat(r.Productivity.EfficiencyScore, r.Productivity.EfficiencyScoreAlt),
			ProductivityScore: pickFloat(r.Productivity.ProductivityScore),
			CustomerRating:    pickFloat(r.Productivity.CustomerRating, r.Productivity.CustomerRatingAlt),
			TicketsCompleted:  pickInt(r.Productivity.TicketsCompleted, r.Productivity.TotalCompleted),
			ResponseTimeMin:   pickFloat(r.Productivity.ResponseTimeMin, r.Productivity.AvgCompletionMin),
		}
	}
	return team
}

type rawAssignment struct {
	ID         string   `json:"id"`
	MongoID    string   `json:"_id"`
	TicketID   string   `json:"ticket_id"`
	TeamID     string   `json:"team_id"`
	Status     string   `json:"status"`
	Type       string   `json:"type"`
	TypeAlt    string   `json:"assignment_type"`
	Score      *float64 `json:"score"`
	AssignedAt string   `json:"assigned_at"`
}

func (r rawAssignment) normalize() models.Assignment {
	return models.Assignment{
		ID:         firstNonEmpty(r.ID, r.MongoID),
		TicketID:   r.TicketID,
		TeamID:     r.TeamID,
		Status:     models.NormalizeAssignmentStatus(r.Status),
		Type:       firstNonEmpty(r.Type, r.TypeAlt),
		Score:      pickFloat(r.Score),
		AssignedAt: parseTimeOrZero(r.AssignedAt),
	}
}

func decodeTickets(raws []json.RawMessage) ([]models.Ticket, error) {
	out := make([]models.Ticket, 0, len(raws))
	for _, raw := range raws {
		var rt rawTicket
		if err := json.Unmarshal(raw, &rt); err != nil {
			return nil, fmt.Errorf("decode ticket: %w", err)
		}
		out = append(out, rt.normalize())
	}
	return out, nil
}

func decodeTeams(raws []json.RawMessage) ([]models.FieldTeam, error) {
	out := make([]models.FieldTeam, 0, len(raws))
	for _, raw := range raws {
		var rt rawTeam
		if err := json.Unmarshal(raw, &rt); err != nil {
			return nil, fmt.Errorf("decode team: %w", err)
		}
		out = append(out, rt.normalize())
	}
	return out, nil
}

func decodeAssignments(raws []json.RawMessage) ([]models.Assignment, error) {
	out := make([]models.Assignment, 0, len(raws))
	for _, raw := range raws {
		var ra rawAssignment
		if err := json.Unmarshal(raw, &ra); err != nil {
			return nil, fmt.Errorf("decode assignment: %w", err)
		}
		out = append(out, ra.normalize())
	}
	return out, nil
}

func (c *HTTPClient) FetchTickets(ctx context.Context) ([]models.Ticket, error) {
	body, err := c.get(ctx, "/tickets")
	if err != nil {
		return nil, err
	}
	raws, err := extractList(body, "tickets")
	if err != nil {
		return nil, err
	}
	return decodeTickets(raws)
}

func (c *HTTPClient) FetchTeams(ctx context.Context) ([]models.FieldTeam, error) {
	body, err := c.get(ctx, "/teams")
	if err != nil {
		return nil, err
	}
	raws, err := extractList(body, "teams")
	if err != nil {
		return nil, err
	}
	return decodeTeams(raws)
}

func (c *HTTPClient) FetchAssignments(ctx context.Context) ([]models.Assignment, error) {
	body, err := c.get(ctx, "/assignments")
	if err != nil {
		return nil, err
	}
	raws, err := extractList(body, "assignments")
	if err != nil {
		return nil, err
	}
	return decodeAssignments(raws)
}

type rawTicketV2 struct {
	Tickets     json.RawMessage `json:"tickets"`
	Teams       json.RawMessage `json:"teams"`
	Assignments json.RawMessage `json:"assignments"`
	Total       int             `json:"total"`
}

func (c *HTTPClient) FetchTicketV2(ctx context.Context, limit, offset int) (TicketV2Page, error) {
	body, err := c.get(ctx, fmt.Sprintf("/ticketv2?limit=%d&offset=%d", limit, offset))
	if err != nil {
		return TicketV2Page{}, err
	}

	var raw rawTicketV2
	if err := json.Unmarshal(body, &raw); err != nil {
		return TicketV2Page{}, fmt.Errorf("decode ticketv2 response: %w", err)
	}
	// The versioned API sometimes wraps the page once more.
	if raw.Tickets == nil {
		var outer map[string]json.RawMessage
		if err := json.Unmarshal(body, &outer); err == nil {
			if inner, ok := outer["ticketv2"]; ok {
				if err := json.Unmarshal(inner, &raw); err != nil {
					return TicketV2Page{}, fmt.Errorf("decode ticketv2 response: %w", err)
				}
			}
		}
	}

	page := TicketV2Page{Total: raw.Total}
	if raw.Tickets != nil {
		raws, err := extractList(raw.Tickets, "tickets")
		if err != nil {
			return TicketV2Page{}, err
		}
		if page.Tickets, err = decodeTickets(raws); err != nil {
			return TicketV2Page{}, err
		}
	}
	if raw.Teams != nil {
		raws, err := extractList(raw.Teams, "teams")
		if err != nil {
			return TicketV2Page{}, err
		}
		if page.Teams, err = decodeTeams(raws); err != nil {
			return TicketV2Page{}, err
		}
	}
	if raw.Assignments != nil {
		raws, err := extractList(raw.Assignments, "assignments")
		if err != nil {
			return TicketV2Page{}, err
		}
		if page.Assignments, err = decodeAssignments(raws); err != nil {
			return TicketV2Page{}, err
		}
	}
	return page, nil
}

func (c *HTTPClient) FetchPerformance(ctx context.Context) (models.PerformanceReport, error) {
	body, err := c.get(ctx, "/ticketv2/analytics/performance")
	if err != nil {
		return models.PerformanceReport{}, err
	}
	var report models.PerformanceReport
	if err := json.Unmarshal(body, &report); err != nil {
		return models.PerformanceReport{}, fmt.Errorf("decode performance response: %w", err)
	}
	return report, nil
}

func (c *HTTPClient) AssignTicket(ctx context.Context, ticketID string, req AssignRequest) (models.Assignment, error) {
	body, err := c.send(ctx, http.MethodPost, "/tickets/"+ticketID+"/assign", req)
	if err != nil {
		return models.Assignment{}, err
	}
	var ra rawAssignment
	if err := json.Unmarshal(body, &ra); err != nil {
		return models.Assignment{}, fmt.Errorf("decode assign response: %w", err)
	}
	return ra.normalize(), nil
}

func (c *HTTPClient) UpdateAssignmentStatus(ctx context.Context, assignmentID string, status string) (models.Assignment, error) {
	body, err := c.send(ctx, http.MethodPatch, "/assignments/"+assignmentID+"/status", map[string]string{"status": status})
	if err != nil {
		return models.Assignment{}, err
	}
	var ra rawAssignment
	if err := json.Unmarshal(body, &ra); err != nil {
		return models.Assignment{}, fmt.Errorf("decode status response: %w", err)
	}
	return ra.normalize(), nil
}
