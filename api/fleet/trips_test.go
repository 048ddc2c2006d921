package fleet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/todatrack/todatrack/core/dispatch"
	"github.com/todatrack/todatrack/core/model"
)

func onDuty(t *testing.T, c *dispatch.Coordinator, plates ...string) {
	t.Helper()
	for _, p := range plates {
		if err := c.SetOnDuty(p); err != nil {
			t.Fatalf("on duty %s: %v", p, err)
		}
	}
}

func TestTripsHandler_StartFromQueue(t *testing.T) {
	c := newCoordinator(t)
	onDuty(t, c, "TRI-001")
	h := NewTripsHandler(c)
	body := `{"plate":"TRI-001","passengers":2,"from":"Terminal","destination":"Market"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/fleet/trips", strings.NewReader(body))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Trip    model.Trip `json:"trip"`
		Warning string     `json:"warning"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Trip.ID != 1 || out.Trip.TotalFare != 24 {
		t.Fatalf("unexpected trip %#v", out.Trip)
	}
	if out.Warning != "" {
		t.Fatalf("unexpected warning %q", out.Warning)
	}
}

func TestTripsHandler_StartOffQueueWarns(t *testing.T) {
	c := newCoordinator(t)
	h := NewTripsHandler(c)
	body := `{"plate":"TRI-002","passengers":1,"from":"Terminal","destination":"School"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/fleet/trips", strings.NewReader(body))
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Trip    model.Trip `json:"trip"`
		Warning string     `json:"warning"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Warning == "" {
		t.Fatalf("expected a consistency warning")
	}
}

func TestTripsHandler_StartErrors(t *testing.T) {
	c := newCoordinator(t)
	onDuty(t, c, "TRI-001")
	h := NewTripsHandler(c)
	cases := []struct {
		name string
		body string
		want int
	}{
		{"unknown plate", `{"plate":"TRI-099","passengers":1,"from":"A","destination":"B"}`, http.StatusNotFound},
		{"no passengers", `{"plate":"TRI-001","passengers":0,"from":"A","destination":"B"}`, http.StatusBadRequest},
		{"blank origin", `{"plate":"TRI-001","passengers":1,"from":" ","destination":"B"}`, http.StatusBadRequest},
		{"bad json", `{"plate":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/fleet/trips", strings.NewReader(tc.body))
		h.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s: status %d", tc.name, rr.Code)
		}
	}
}

func TestTripsHandler_ListAndComplete(t *testing.T) {
	c := newCoordinator(t)
	onDuty(t, c, "TRI-001")
	res, err := c.StartTrip("TRI-001", dispatch.TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	h := NewTripsHandler(c)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/fleet/trips", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var trips []model.Trip
	if err := json.Unmarshal(rr.Body.Bytes(), &trips); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != res.Trip.ID {
		t.Fatalf("unexpected trips %#v", trips)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/fleet/trips/1/complete", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete status %d: %s", rr.Code, rr.Body.String())
	}
	var done struct {
		Trip             model.Trip `json:"trip"`
		AlreadyCompleted bool       `json:"already_completed"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &done); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if done.Trip.Active || done.AlreadyCompleted {
		t.Fatalf("unexpected completion %#v", done)
	}

	// completing again reports the flag
	rr = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/fleet/trips/1/complete", nil)
	h.ServeHTTP(rr, req)
	if err := json.Unmarshal(rr.Body.Bytes(), &done); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !done.AlreadyCompleted {
		t.Fatalf("expected already_completed")
	}
}

func TestTripsHandler_CompleteErrors(t *testing.T) {
	h := NewTripsHandler(newCoordinator(t))
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/fleet/trips/9/complete", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/fleet/trips/abc/complete", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestTripsHandler_Archive(t *testing.T) {
	c := newCoordinator(t)
	onDuty(t, c, "TRI-001")
	if _, err := c.StartTrip("TRI-001", dispatch.TripRequest{Passengers: 1, From: "A", Destination: "B"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.CompleteTrip(1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	c.CloseDay()

	h := NewTripsHandler(c)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/fleet/trips/archive", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var archived []model.Trip
	if err := json.Unmarshal(rr.Body.Bytes(), &archived); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(archived) != 1 || archived[0].Active {
		t.Fatalf("unexpected archive %#v", archived)
	}
}
