package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

type healthHandler struct {
	started time.Time
	storage map[string]Pinger
}

func newHealthHandler(storage map[string]Pinger) *healthHandler {
	return &healthHandler{started: time.Now(), storage: storage}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Started time.Time         `json:"started"`
	Uptime  string            `json:"uptime"`
	Storage map[string]string `json:"storage"`
}

// Health reports 503 when any storage dependency fails its ping.
func (h *healthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.storage))
	for name := range h.storage {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := healthResponse{
		Status:  "ok",
		Started: h.started,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Storage: make(map[string]string, len(names)),
	}
	status := http.StatusOK
	for _, name := range names {
		if err := h.storage[name].Ping(ctx); err != nil {
			resp.Storage[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Storage[name] = "ok"
	}
	c.JSON(status, resp)
}
