package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/todatrack/todatrack/core/audit"
)

type memStore struct{ recs []audit.Record }

func (m *memStore) Append(ctx context.Context, r audit.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q audit.Query) ([]audit.Record, error) {
	var res []audit.Record
	for _, r := range m.recs {
		if q.Op != "" && r.Op != q.Op {
			continue
		}
		if q.Plate != "" && r.Plate != q.Plate {
			continue
		}
		if !q.Start.IsZero() && r.Time.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && r.Time.After(q.End) {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestAuditHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	base := time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC)
	for i, op := range []string{"register_vehicle", "start_trip", "complete_trip"} {
		if err := store.Append(context.Background(), audit.Record{
			ID:    "r" + op,
			Time:  base.Add(time.Duration(i) * time.Minute),
			Op:    op,
			Plate: "TRI-001",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewAuditHandler(store, "tok")

	req := httptest.NewRequest("GET", "/api/admin/audit?op=start_trip", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []audit.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Op != "start_trip" {
		t.Fatalf("unexpected records %#v", out)
	}

	// time window keeps the first two
	req = httptest.NewRequest("GET", "/api/admin/audit?end=2025-03-09T08:01:00Z", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records got %d", len(out))
	}

	// unauthorized
	req = httptest.NewRequest("GET", "/api/admin/audit", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
