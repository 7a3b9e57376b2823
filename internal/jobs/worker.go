package jobs

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"betterr/internal/dateutil"
	"betterr/internal/task"
)

type Worker struct {
	ID   string
	Repo *Repo
	Gen  *task.Generator
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Printf("worker claim error: %v\n", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *Job) {
	switch job.Type {
	case TypeGenerateInstances:
		w.handleGeneration(ctx, job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleGeneration(ctx context.Context, job *Job) {
	type payload struct {
		ThroughDate string `json:"through_date"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	through, err := dateutil.ParseDate(p.ThroughDate)
	if err != nil {
		_ = w.Repo.MarkFailed(job.ID, "bad through_date")
		return
	}

	if err := w.Gen.EnsureInstances(ctx, job.UserID, through); err != nil {
		log.Printf("[GENERATE] user=%s through=%s error: %v\n", job.UserID, p.ThroughDate, err)
		w.retry(job, err.Error())
		return
	}
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
