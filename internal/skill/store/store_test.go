package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/voicebridge/actionable/internal/skill/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWriteAndReadEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WriteEvent(ctx, "t_1", "evt_1", "ResponseString", "buy milk", "person-1", store.ResultCommitted, "")
	if err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	err = s.WriteEvent(ctx, "t_2", "evt_2", "ResponseYes", "ResponseYes", "", store.ResultFailed, "status 500")
	if err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}

	records, err := s.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	// Newest first.
	newest := records[0]
	if newest.TraceID != "t_2" || newest.Result != store.ResultFailed {
		t.Errorf("newest = %+v", newest)
	}
	if !newest.ErrorMessage.Valid || newest.ErrorMessage.String != "status 500" {
		t.Errorf("error message = %+v", newest.ErrorMessage)
	}
	if newest.PersonID.Valid {
		t.Errorf("empty person id must be NULL, got %+v", newest.PersonID)
	}

	oldest := records[1]
	if oldest.EventID != "evt_1" || oldest.Value.String != "buy milk" {
		t.Errorf("oldest = %+v", oldest)
	}
	if !oldest.PersonID.Valid || oldest.PersonID.String != "person-1" {
		t.Errorf("person id = %+v", oldest.PersonID)
	}
}

func TestRecentEvents_Limit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.WriteEvent(ctx, "t", "evt", "ResponseYes", "y", "", store.ResultCommitted, ""); err != nil {
			t.Fatalf("WriteEvent: %v", err)
		}
	}
	records, err := s.RecentEvents(ctx, 3)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestNilStoreIsNoOp(t *testing.T) {
	var s *store.Store

	if err := s.WriteEvent(context.Background(), "t", "e", "k", "v", "", store.ResultCommitted, ""); err != nil {
		t.Errorf("nil WriteEvent: %v", err)
	}
	records, err := s.RecentEvents(context.Background(), 10)
	if err != nil || records != nil {
		t.Errorf("nil RecentEvents = %v, %v", records, err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}
