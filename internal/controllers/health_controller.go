package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"aisd/internal/ingest"
	"aisd/internal/providers"
)

type statusSource interface {
	Status() ingest.Status
}

type HealthController struct {
	ingester  statusSource
	startTime time.Time
}

type healthResponse struct {
	Status        string        `json:"status"`
	Uptime        string        `json:"uptime"`
	UptimeSeconds float64       `json:"uptime_seconds"`
	Stream        ingest.Status `json:"stream"`
}

// Health reports "degraded" while the stream is disconnected; queries keep
// working from stored data, so the status code stays 200.
func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		providers.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	uptime := time.Since(hc.startTime)
	st := hc.ingester.Status()
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Stream:        st,
	}
	if !st.Connected {
		resp.Status = "degraded"
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		providers.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	providers.WriteJSON(w, http.StatusOK, gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(ingester ingest.IngesterInterface) *HealthController {
	return &HealthController{
		ingester:  ingester,
		startTime: time.Now(),
	}
}
