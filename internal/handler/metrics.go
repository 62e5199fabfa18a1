package handler

import (
	"fmt"
	"net/http"

	"github.com/adwall/adwall/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "adwall_ads_created_total %d\n", snap.AdsCreated)
	writeMetric(w, "adwall_ads_copied_total %d\n", snap.AdsCopied)
	writeMetric(w, "adwall_ads_updated_total %d\n", snap.AdsUpdated)
	writeMetric(w, "adwall_ads_deleted_total %d\n", snap.AdsDeleted)

	writeMetric(w, "adwall_clicks_recorded_total %d\n", snap.ClicksRecorded)

	writeMetric(w, "adwall_videos_stored_total %d\n", snap.VideosStored)
	writeMetric(w, "adwall_videos_detached_total %d\n", snap.VideosDetached)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
