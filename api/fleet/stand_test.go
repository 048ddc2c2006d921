package fleet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/todatrack/todatrack/core/dispatch"
)

func TestQueueHandler(t *testing.T) {
	c := newCoordinator(t)
	onDuty(t, c, "TRI-002", "TRI-001")
	h := NewQueueHandler(c)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/fleet/queue", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out struct {
		Waiting []string `json:"waiting"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Waiting) != 2 || out.Waiting[0] != "TRI-002" {
		t.Fatalf("unexpected queue %v", out.Waiting)
	}
}

func TestOverviewHandler(t *testing.T) {
	c := newCoordinator(t)
	onDuty(t, c, "TRI-001")
	if _, err := c.StartTrip("TRI-001", dispatch.TripRequest{Passengers: 2, From: "A", Destination: "B"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	h := NewOverviewHandler(c)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/fleet/overview", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out dispatch.Overview
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Vehicles != 2 || out.ActiveTrips != 1 || out.Broadcast != dispatch.DefaultBroadcast {
		t.Fatalf("unexpected overview %#v", out)
	}
}

func TestBroadcastHandler_ReadOnly(t *testing.T) {
	c := newCoordinator(t)
	h := NewBroadcastHandler(c)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/fleet/broadcast", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Message != dispatch.DefaultBroadcast {
		t.Fatalf("unexpected message %q", out.Message)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("PUT", "/api/fleet/broadcast", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}
