package adminapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kestrelnet/vcdn/internal/hoststats"
)

type handler struct {
	deps      Deps
	startTime time.Time
	logger    *slog.Logger
}

// statusResponse is the /health payload.
type statusResponse struct {
	Status string `json:"status"`
}

// statsResponse is the /stats payload: host resource usage plus whichever
// service snapshot (proxy or nameserver) this binary wired in.
type statsResponse struct {
	UptimeSeconds int64              `json:"uptime_seconds"`
	Host          hoststats.Snapshot `json:"host"`
	Proxy         any                `json:"proxy,omitempty"`
	Nameserver    any                `json:"nameserver,omitempty"`
}

// Health godoc
// @Summary Health check
// @Description Returns admin API liveness
// @Tags system
// @Produce json
// @Success 200 {object} statusResponse
// @Router /api/v1/health [get]
func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// Stats godoc
// @Summary Service statistics
// @Description Returns host resource usage plus proxy or nameserver state
// @Tags system
// @Produce json
// @Success 200 {object} statsResponse
// @Router /api/v1/stats [get]
func (h *handler) stats(c *gin.Context) {
	resp := statsResponse{
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Host:          hoststats.Collect(),
	}
	if h.deps.ProxyStats != nil {
		resp.Proxy = h.deps.ProxyStats()
	}
	if h.deps.NameserverStats != nil {
		resp.Nameserver = h.deps.NameserverStats()
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary Fragment delivery history
// @Description Returns the most recently recorded fragment deliveries
// @Tags proxy
// @Produce json
// @Param limit query int false "max rows to return"
// @Success 200 {array} metrics.FragmentMetric
// @Failure 404 {object} statusResponse
// @Router /api/v1/stats/history [get]
func (h *handler) history(c *gin.Context) {
	if h.deps.History == nil {
		c.JSON(http.StatusNotFound, statusResponse{Status: "history not enabled"})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	rows, err := h.deps.History.History(limit)
	if err != nil {
		h.logger.Warn("failed to query fragment history", "error", err)
		c.JSON(http.StatusInternalServerError, statusResponse{Status: "history query failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
