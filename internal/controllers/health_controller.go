package controllers

import (
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"translit/internal/models"
	"translit/internal/services"
	"time"
)

type HealthController struct {
	history   services.HistoryServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	View          string  `json:"view"`
	Records       int     `json:"records"`
	Fetching      bool    `json:"fetching"`
	PendingDelete int64   `json:"pending_delete"`
	DeleteRunning bool    `json:"delete_running"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	snap := hc.history.Snapshot()
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		View:          snap.View.String(),
		Records:       len(snap.Records),
		Fetching:      snap.IsFetching,
		PendingDelete: snap.UI.PendingDeleteID,
		DeleteRunning: snap.DeletePending,
	}
	if snap.View == models.ViewError {
		resp.Status = "degraded"
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(history services.HistoryServiceInterface) *HealthController {
	return &HealthController{
		history:   history,
		startTime: time.Now(),
	}
}
