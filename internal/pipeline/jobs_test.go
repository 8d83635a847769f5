package pipeline

import (
	"testing"
	"time"
)

func TestNewJob_IDsAreOrdered(t *testing.T) {
	a := NewJob("test")
	b := NewJob("test")
	if len(a.ID) != 26 {
		t.Errorf("expected 26 character id, got %q", a.ID)
	}
	if !(a.ID < b.ID) {
		t.Errorf("expected %q < %q", a.ID, b.ID)
	}
	if a.Status != StatusQueued || a.Trigger != "test" {
		t.Errorf("unexpected job: %+v", a.Snapshot())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("api")

	transitions := []struct {
		status BuildStatus
		phase  string
	}{
		{StatusRunning, "building"},
		{StatusWriting, "writing"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if !job.Status.Done() {
		t.Error("expected completed to be final")
	}
	if StatusRunning.Done() {
		t.Error("expected running not to be final")
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("read a.rst failed")
	job.AddError("render failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "read a.rst failed" {
		t.Errorf("expected first error %q, got %q", "read a.rst failed", snap.Progress.Errors[0])
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("test")
	if job.Result() != nil {
		t.Fatal("expected no result before the build")
	}
	res := &Result{Counts: Counts{Sources: 3, Parsed: 2, Reused: 1}}
	job.SetResult(res)
	if job.Result() != res {
		t.Error("expected result to be attached")
	}
	if snap := job.Snapshot(); snap.Progress.Sources != 3 || snap.Progress.Reused != 1 {
		t.Errorf("unexpected progress: %+v", snap.Progress)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanupKeepsLatest(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	latest := &Job{ID: "latest", UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(latest)
	store.SetLatest(latest)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Get("latest") == nil || store.Latest() != latest {
		t.Error("expected latest build to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
	if store.Latest() != nil {
		t.Error("expected no latest build")
	}
}
