// Package admin exposes the guarded stand operations: day close,
// broadcast changes, snapshot saves and the audit journal. Requests
// must include an Authorization header with "Bearer <token>"; an empty
// configured token disables the whole surface.
package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/todatrack/todatrack/core/dispatch"
	"github.com/todatrack/todatrack/core/ledger"
	"github.com/todatrack/todatrack/core/snapshot"
)

func authorized(w http.ResponseWriter, r *http.Request, token string) bool {
	if token == "" {
		http.Error(w, "admin endpoints disabled", http.StatusForbidden)
		return false
	}
	if auth := r.Header.Get("Authorization"); auth != "Bearer "+token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewEndOfDayHandler closes the ledger day via POST and returns the
// summary together with its printable report.
func NewEndOfDayHandler(c *dispatch.Coordinator, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r, token) {
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		sum := c.CloseDay()
		out := struct {
			Summary ledger.DaySummary `json:"summary"`
			Report  string            `json:"report"`
		}{Summary: sum, Report: sum.Report()}
		writeJSON(w, out)
	})
}

// NewBroadcastHandler replaces the stand announcement via PUT. A blank
// message restores the default one.
func NewBroadcastHandler(c *dispatch.Coordinator, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r, token) {
			return
		}
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := struct {
			Message string `json:"message"`
		}{Message: c.SetBroadcast(req.Message)}
		writeJSON(w, out)
	})
}

// NewSnapshotHandler saves the current coordinator state via POST. The
// label defaults to today's date and may be overridden in the body.
func NewSnapshotHandler(c *dispatch.Coordinator, store snapshot.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r, token) {
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Label string `json:"label"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		label := req.Label
		if label == "" {
			label = snapshot.DayLabel(time.Now())
		}
		snap := c.Snapshot()
		if err := store.Save(r.Context(), label, snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out := struct {
			Label   string    `json:"label"`
			SavedAt time.Time `json:"saved_at"`
		}{Label: label, SavedAt: snap.SavedAt}
		writeJSON(w, out)
	})
}
