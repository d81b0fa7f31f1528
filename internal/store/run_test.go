package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/engine"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/script"
)

func TestWriteRun_ReadBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	want := createTestRun("run-1")

	inserted, err := s.WriteRun(ctx, want)
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	if !inserted {
		t.Fatal("WriteRun() reported no insert for a new run")
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadRun() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun("run-1")

	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatal(err)
	}
	inserted, err := s.WriteRun(ctx, run)
	if err != nil {
		t.Fatalf("second WriteRun() failed: %v", err)
	}
	if inserted {
		t.Error("second WriteRun() reported insert")
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(got.Entries))
	}
}

func TestWriteRun_RequiresID(t *testing.T) {
	s := createTestStore(t)
	if _, err := s.WriteRun(context.Background(), Run{}); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadEntries_SequenceOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	run.Entries = []execution.Entry{
		{Seq: 3, Severity: execution.SeverityWarn, Message: "third", Block: 1},
		{Seq: 1, Severity: execution.SeverityInfo, Message: "first", Block: 0},
		{Seq: 2, Severity: execution.SeverityInfo, Message: "second", Block: 1},
	}
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	entries, err := s.ReadEntries(ctx, "run-1", EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Message)
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestReadEntries_Filter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	run.Entries = append(run.Entries, execution.Entry{Seq: 3, Severity: execution.SeverityWarn, Message: "w", Block: 1})
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	warn, err := s.ReadEntries(ctx, "run-1", EntryFilter{Severity: execution.SeverityWarn})
	if err != nil {
		t.Fatal(err)
	}
	if len(warn) != 1 || warn[0].Message != "w" {
		t.Errorf("severity filter = %+v", warn)
	}

	zero := 0
	first, err := s.ReadEntries(ctx, "run-1", EntryFilter{Block: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 {
		t.Errorf("block filter returned %d entries, want 2", len(first))
	}

	none, err := s.ReadEntries(ctx, "other", EntryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("missing run entries = %#v, want empty slice", none)
	}
}

func TestReadRun_VariableOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1")
	run.Variables = []Variable{{"zeta", "1"}, {"alpha", "2"}, {"mid", ""}}
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(run.Variables, got.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	starts := map[string]time.Time{
		// IDs that sort against their start order.
		"run-z": base,
		"run-a": base.Add(2 * time.Second),
		"run-m": base.Add(time.Second),
		// Same start as run-m; ID breaks the tie.
		"run-n": base.Add(time.Second),
		// Sub-second starts must still sort after whole seconds.
		"run-b": base.Add(2*time.Second + 500*time.Millisecond),
	}
	for id, at := range starts {
		run := createTestRun(id)
		run.StartedAt = at
		if _, err := s.WriteRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(ctx, 4)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
		if r.Entries != nil {
			t.Errorf("ListRuns() loaded entries for %s", r.ID)
		}
	}
	if diff := cmp.Diff([]string{"run-b", "run-a", "run-n", "run-m"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if !runs[0].StartedAt.Equal(starts["run-b"]) {
		t.Errorf("StartedAt = %v, want %v", runs[0].StartedAt, starts["run-b"])
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(starts) {
		t.Errorf("ListRuns(0) = %d runs, want %d", len(all), len(starts))
	}
}

func TestRecord_RoundTripsThroughStore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sc, err := script.Parse(nil, "FUNCTION Constant \"v\" -> VAR \"b\"\nFUNCTION Constant \"w\" -> VAR \"a\"\n")
	if err != nil {
		t.Fatal(err)
	}
	rec := execution.NewRecorder()
	eng := engine.New(engine.WithRunIDs(engine.NewFixedGenerator("run-rec")))
	ec := eng.NewContext(config.Default(), execution.WithLogger(rec))
	res, err := eng.Run(ctx, sc, ec)
	if err != nil {
		t.Fatal(err)
	}

	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	run := Record(sc, ec, res, started, rec.Entries())
	if _, err := s.WriteRun(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, err := s.ReadRun(ctx, "run-rec")
	if err != nil {
		t.Fatal(err)
	}
	if got.Outcome != "completed" || got.Executed != 2 || got.ScriptHash != sc.Hash() {
		t.Errorf("unexpected header: %+v", got)
	}
	want := []Variable{{"b", "v"}, {"a", "w"}}
	if diff := cmp.Diff(want, got.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
	if len(got.Entries) != len(rec.Entries()) {
		t.Errorf("entries = %d, want %d", len(got.Entries), len(rec.Entries()))
	}
}
