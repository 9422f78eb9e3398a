package memory

import (
	"testing"

	"github.com/google/uuid"
)

// TestRecordAndRecall round-trips adjustment entries for one user and checks
// ordering and the per-user partition.
func TestRecordAndRecall(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	planA, planB := uuid.New(), uuid.New()
	if err := s.RecordAdjustment("user-1", planA, "Applied 1 of 1 requested changes"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAdjustment("user-1", planB, "Applied 2 of 3 requested changes"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordAdjustment("user-2", planA, "No changes applied"); err != nil {
		t.Fatal(err)
	}

	entries, err := s.RecentAdjustments("user-1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(entries); got != 2 {
		t.Fatalf("len(entries) = %d, want 2", got)
	}
	if entries[0].PlanID != planB.String() {
		t.Errorf("entries[0].PlanID = %q, want the newest entry first", entries[0].PlanID)
	}

	entries, err = s.RecentAdjustments("user-1", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(entries); got != 1 {
		t.Errorf("len(entries) = %d, want limit of 1", got)
	}
}

// TestRecallUnknownUser checks that an unknown user yields no entries.
func TestRecallUnknownUser(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	entries, err := s.RecentAdjustments("nobody", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}
