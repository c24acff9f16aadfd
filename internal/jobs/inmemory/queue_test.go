package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ktuntum/statement-ocr/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.AnalyzeStatementJob {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %q", jobID, want)
	return nil
}

func TestQueue_ProcessesJob(t *testing.T) {
	store := NewStore()
	queue := NewQueue(1, store)
	defer queue.Close()

	var handled atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		handled.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.AnalyzeStatementJob{Filename: "statement.pdf", MediaType: "application/pdf"}
	if err := queue.PublishAnalyzeStatement(ctx, job); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("publish did not assign a job ID")
	}

	stored := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if stored.Error != "" {
		t.Errorf("completed job carries error %q", stored.Error)
	}
	if handled.Load() != 1 {
		t.Errorf("handler ran %d times, want 1", handled.Load())
	}
}

func TestQueue_FailedJobIsTerminal(t *testing.T) {
	store := NewStore()
	queue := NewQueue(1, store)
	defer queue.Close()

	var attempts atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		attempts.Add(1)
		return errors.New("model returned garbage")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := queue.Start(ctx, handler); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.AnalyzeStatementJob{Filename: "statement.pdf"}
	if err := queue.PublishAnalyzeStatement(ctx, job); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	stored := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if stored.Error != "model returned garbage" {
		t.Errorf("stored error = %q", stored.Error)
	}

	// No retry path: the attempt count must stay at one.
	time.Sleep(50 * time.Millisecond)
	if attempts.Load() != 1 {
		t.Errorf("handler ran %d times, failed jobs must not be retried", attempts.Load())
	}
}

func TestQueue_PublishAfterClose(t *testing.T) {
	queue := NewQueue(1, NewStore())
	queue.Close()

	err := queue.PublishAnalyzeStatement(context.Background(), &jobs.AnalyzeStatementJob{Filename: "x.pdf"})
	if err == nil {
		t.Error("expected error publishing to a closed queue")
	}
}
