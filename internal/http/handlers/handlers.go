package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/fieldops/opsboard/internal/models"
	"github.com/fieldops/opsboard/internal/scheduler"
	"github.com/fieldops/opsboard/internal/upstream"
	"github.com/fieldops/opsboard/internal/view"
)

type Handler struct {
	Views     *view.Registry
	Upstream  upstream.Client
	Sched     *scheduler.Scheduler
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tasks":  h.Sched.Status(),
	})
}

// @Summary Dashboard summary cards
// @Tags dashboard
// @Produce json
// @Success 200 {object} view.Snapshot
// @Router /api/dashboard/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	h.serveSnapshot(c, view.WidgetSummary)
}

// @Summary Zone productivity ranking
// @Description Ranked zone aggregates, optionally limited to the top N.
// @Tags dashboard
// @Produce json
// @Param top query int false "Limit to top N zones"
// @Success 200 {object} view.Snapshot
// @Router /api/dashboard/zones [get]
func (h *Handler) Zones(c *gin.Context) {
	snap, ok := h.Views.Get(view.WidgetZones)
	if !ok {
		writeError(c, http.StatusServiceUnavailable, "NOT_READY", "Zone ranking not rendered yet", nil)
		return
	}
	if topStr := c.Query("top"); topStr != "" {
		top, err := strconv.Atoi(topStr)
		if err != nil || top < 1 {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "top must be a positive integer", nil)
			return
		}
		if aggs, ok := snap.Payload.([]models.ZoneAggregate); ok && top < len(aggs) {
			snap.Payload = aggs[:top]
		}
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Team grid
// @Tags dashboard
// @Produce json
// @Success 200 {object} view.Snapshot
// @Router /api/dashboard/teams [get]
func (h *Handler) Teams(c *gin.Context) {
	h.serveSnapshot(c, view.WidgetTeams)
}

// @Summary Ticket list
// @Description Current tickets with optional status, priority, and zone
// @Description filters applied against the rendered snapshot.
// @Tags dashboard
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param zone query string false "Filter by zone (substring match)"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} map[string]any
// @Router /api/dashboard/tickets [get]
func (h *Handler) Tickets(c *gin.Context) {
	snap, ok := h.Views.Get(view.WidgetTickets)
	if !ok {
		writeError(c, http.StatusServiceUnavailable, "NOT_READY", "Ticket list not rendered yet", nil)
		return
	}

	tickets, _ := snap.Payload.([]models.Ticket)
	status := models.NormalizeStatus(c.Query("status"))
	priority := models.NormalizePriority(c.Query("priority"))
	zone := strings.TrimSpace(c.Query("zone"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	filtered := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if c.Query("status") != "" && t.Status != status {
			continue
		}
		if c.Query("priority") != "" && t.Priority != priority {
			continue
		}
		if zone != "" && !strings.Contains(strings.ToLower(t.Zone), strings.ToLower(zone)) {
			continue
		}
		filtered = append(filtered, t)
	}

	total := len(filtered)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"widget":      snap.Widget,
		"source":      snap.Source,
		"produced_at": snap.ProducedAt,
		"items":       filtered[offset:end],
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// @Summary Performance analytics
// @Tags dashboard
// @Produce json
// @Success 200 {object} view.Snapshot
// @Router /api/dashboard/performance [get]
func (h *Handler) Performance(c *gin.Context) {
	h.serveSnapshot(c, view.WidgetPerformance)
}

// @Summary Live map markers
// @Tags dashboard
// @Produce json
// @Success 200 {object} view.Snapshot
// @Router /api/dashboard/map [get]
func (h *Handler) Map(c *gin.Context) {
	h.serveSnapshot(c, view.WidgetMap)
}

// @Summary Material usage estimates
// @Tags dashboard
// @Produce json
// @Success 200 {object} view.Snapshot
// @Router /api/dashboard/materials [get]
func (h *Handler) Materials(c *gin.Context) {
	h.serveSnapshot(c, view.WidgetMaterials)
}

func (h *Handler) serveSnapshot(c *gin.Context, widget string) {
	snap, ok := h.Views.Get(widget)
	if !ok {
		writeError(c, http.StatusServiceUnavailable, "NOT_READY", "Widget not rendered yet", nil)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary Assign a ticket to a team
// @Description Passes the assignment through to the backend and refreshes
// @Description the board on success.
// @Tags actions
// @Accept json
// @Produce json
// @Param id path string true "Ticket ID"
// @Param request body upstream.AssignRequest true "Assignment"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} map[string]any
// @Router /api/tickets/{id}/assign [post]
func (h *Handler) AssignTicket(c *gin.Context) {
	id := c.Param("id")
	var req upstream.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	assignment, err := h.Upstream.AssignTicket(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		h.Logger.Error().Err(err).Str("ticket_id", id).Msg("assign failed")
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Assignment failed", err.Error())
		return
	}

	// Mutations invalidate the board; refresh in the background so the
	// response is not held hostage by a slow backend.
	go h.Sched.RunNow("board")

	c.JSON(http.StatusOK, assignment)
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// @Summary Update assignment status
// @Tags actions
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} models.Assignment
// @Failure 400 {object} map[string]any
// @Router /api/assignments/{id}/status [patch]
func (h *Handler) UpdateAssignmentStatus(c *gin.Context) {
	id := c.Param("id")
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if models.NormalizeAssignmentStatus(req.Status) == models.AssignmentUnknown {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown assignment status", req.Status)
		return
	}

	assignment, err := h.Upstream.UpdateAssignmentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Assignment not found", nil)
			return
		}
		h.Logger.Error().Err(err).Str("assignment_id", id).Msg("status update failed")
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Status update failed", err.Error())
		return
	}

	go h.Sched.RunNow("board")

	c.JSON(http.StatusOK, assignment)
}

// @Summary Trigger a refresh
// @Description Runs the named refresh task immediately. Returns 409 when a
// @Description run is already in flight.
// @Tags actions
// @Produce json
// @Param task path string true "Task name (board or performance)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/refresh/{task} [post]
func (h *Handler) Refresh(c *gin.Context) {
	task := c.Param("task")
	if !h.Sched.RunNow(task) {
		for _, st := range h.Sched.Status() {
			if st.Name == task {
				writeError(c, http.StatusConflict, "IN_FLIGHT", "Refresh already running", nil)
				return
			}
		}
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Unknown refresh task", task)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "task": task})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
