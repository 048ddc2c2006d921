package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/todatrack/todatrack/core/model"
	coresnapshot "github.com/todatrack/todatrack/core/snapshot"
)

func sampleSnapshot(next int) coresnapshot.Snapshot {
	return coresnapshot.Snapshot{
		SchemaVersion: coresnapshot.SchemaVersion,
		SavedAt:       time.Now().UTC(),
		Broadcast:     "Meeting at 5 PM",
		NextTripID:    next,
		Vehicles: []model.Vehicle{
			{Plate: "TRI-001", Operator: model.Operator{Name: "Mang Ramon", Available: true}, Status: model.StatusWaiting, FareRate: 20},
		},
		Waiting: []string{"TRI-001"},
	}
}

func TestFileStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "toda_data")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "2025-03-09", sampleSnapshot(4)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "toda_data-2025-03-09.json")); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}

	snap, err := store.Load(ctx, "2025-03-09")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.NextTripID != 4 {
		t.Errorf("expected next trip id 4, got %d", snap.NextTripID)
	}
	if snap.Broadcast != "Meeting at 5 PM" {
		t.Errorf("unexpected broadcast %q", snap.Broadcast)
	}
	if len(snap.Vehicles) != 1 || snap.Vehicles[0].Plate != "TRI-001" {
		t.Errorf("unexpected vehicles %+v", snap.Vehicles)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, err = store.Load(context.Background(), "2025-03-09")
	if !errors.Is(err, coresnapshot.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var perr *coresnapshot.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %T", err)
	}
}

func TestFileStoreLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "toda_data")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "toda_data-2025-03-09.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	_, err = store.Load(context.Background(), "2025-03-09")
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if errors.Is(err, coresnapshot.ErrNotFound) {
		t.Fatalf("corrupt file must not read as missing")
	}
}

func TestFileStoreRejectsBadSnapshot(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "toda_data")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	// Well formed JSON, unsupported schema.
	body := []byte(`{"schema_version":99,"next_trip_id":1,"vehicles":[],"waiting":[],"trips":[],"archive":[]}`)
	if err := os.WriteFile(filepath.Join(dir, "toda_data-2025-03-09.json"), body, 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := store.Load(context.Background(), "2025-03-09"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFileStoreLabelsAndLatest(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "toda_data")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if _, _, err := store.Latest(ctx); !errors.Is(err, coresnapshot.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty dir, got %v", err)
	}

	for i, label := range []string{"2025-03-08", "2025-03-10", "2025-03-09"} {
		if err := store.Save(ctx, label, sampleSnapshot(i+1)); err != nil {
			t.Fatalf("save %s: %v", label, err)
		}
	}
	// Unrelated files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write noise: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "toda_data-latest.json"), []byte("{}"), 0644); err != nil {
		t.Fatalf("write noise: %v", err)
	}

	labels, err := store.Labels(ctx)
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	want := []string{"2025-03-08", "2025-03-09", "2025-03-10"}
	if len(labels) != len(want) {
		t.Fatalf("expected %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, labels)
		}
	}

	snap, label, err := store.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if label != "2025-03-10" {
		t.Errorf("expected latest label 2025-03-10, got %s", label)
	}
	if snap.NextTripID != 2 {
		t.Errorf("expected snapshot saved under 2025-03-10, got next id %d", snap.NextTripID)
	}
}

func TestFileStoreSaveRejectsBadLabel(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save(context.Background(), "today", sampleSnapshot(1)); err == nil {
		t.Fatalf("expected malformed label error")
	}
}
