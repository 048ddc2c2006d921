package fleet

import (
	"net/http"

	"github.com/todatrack/todatrack/core/dispatch"
)

// NewQueueHandler returns the waiting line in dispatch order.
func NewQueueHandler(c *dispatch.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		out := struct {
			Waiting []string `json:"waiting"`
		}{Waiting: c.Waiting()}
		writeJSON(w, out)
	})
}

// NewOverviewHandler returns the stand counters and fare statistics.
func NewOverviewHandler(c *dispatch.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, c.Overview())
	})
}

// NewBroadcastHandler returns the current stand announcement. Changing
// it goes through the admin surface.
func NewBroadcastHandler(c *dispatch.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		out := struct {
			Message string `json:"message"`
		}{Message: c.Broadcast()}
		writeJSON(w, out)
	})
}
