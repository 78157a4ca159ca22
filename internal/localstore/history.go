package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Outcome is the terminal result of an ingestion job.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// JobRecord is one row of job_history.
type JobRecord struct {
	JobID      string    `json:"jobId"`
	RowID      string    `json:"rowId,omitempty"`
	URL        string    `json:"url"`
	Title      string    `json:"title,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	Message    string    `json:"message,omitempty"`
	KeyTopics  string    `json:"keyTopics,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

const jobColumns = "job_id, row_id, url, title, outcome, message, key_topics, enqueued_at, finished_at"

// RecordJob inserts or replaces a job outcome.
func (s *Store) RecordJob(ctx context.Context, rec JobRecord) error {
	if rec.JobID == "" {
		return errors.New("job id is required")
	}
	if rec.Outcome != OutcomeCompleted && rec.Outcome != OutcomeFailed {
		return fmt.Errorf("unknown outcome %q", rec.Outcome)
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}
	if rec.EnqueuedAt.IsZero() {
		rec.EnqueuedAt = rec.FinishedAt
	}
	err := s.exec(ctx,
		`INSERT OR REPLACE INTO job_history (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.JobID,
		nullableString(rec.RowID),
		rec.URL,
		nullableString(rec.Title),
		string(rec.Outcome),
		nullableString(rec.Message),
		nullableString(rec.KeyTopics),
		formatTime(rec.EnqueuedAt),
		formatTime(rec.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("record job %s: %w", rec.JobID, err)
	}
	return nil
}

// RecentJobs returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) RecentJobs(ctx context.Context, limit int) ([]JobRecord, error) {
	query := "SELECT " + jobColumns + " FROM job_history ORDER BY finished_at DESC, job_id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryJobs(ctx, query, args...)
}

// CompletedSince returns completed jobs that finished at or after since,
// oldest first.
func (s *Store) CompletedSince(ctx context.Context, since time.Time) ([]JobRecord, error) {
	return s.queryJobs(ctx,
		"SELECT "+jobColumns+" FROM job_history WHERE outcome = ? AND finished_at >= ? ORDER BY finished_at",
		string(OutcomeCompleted), formatTime(since),
	)
}

// ClearHistory removes every job record.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM job_history")
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return removed, nil
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]JobRecord, error) {
	ctx = ensureContext(ctx)
	var records []JobRecord
	err := retryOnBusy(ctx, func() error {
		records = records[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			rec, err := scanJob(rows)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query job history: %w", err)
	}
	return records, nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (JobRecord, error) {
	var (
		rec         JobRecord
		rowID       sql.NullString
		title       sql.NullString
		outcome     string
		message     sql.NullString
		keyTopics   sql.NullString
		enqueuedRaw string
		finishedRaw string
	)
	if err := scanner.Scan(&rec.JobID, &rowID, &rec.URL, &title, &outcome, &message, &keyTopics, &enqueuedRaw, &finishedRaw); err != nil {
		return JobRecord{}, err
	}
	rec.RowID = rowID.String
	rec.Title = title.String
	rec.Outcome = Outcome(outcome)
	rec.Message = message.String
	rec.KeyTopics = keyTopics.String
	if t, err := parseTime(enqueuedRaw); err == nil {
		rec.EnqueuedAt = t
	}
	if t, err := parseTime(finishedRaw); err == nil {
		rec.FinishedAt = t
	}
	return rec, nil
}
