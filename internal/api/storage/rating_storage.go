package storage

import (
	"context"
	"fmt"
	"log/slog"
)

// ListWorkerRatings returns every rating the worker has received from
// employers across confirmed completions. worker_rating is only ever
// written by ConfirmCompletion, so non-null means confirmed.
func (s *Storage) ListWorkerRatings(ctx context.Context, workerID string) ([]int, error) {
	query := `
		SELECT worker_rating
		FROM job_applications
		WHERE worker_id = $1 AND worker_rating IS NOT NULL
	`

	var ratings []int
	if err := s.db.SelectContext(ctx, &ratings, query, workerID); err != nil {
		return nil, fmt.Errorf("failed to list worker ratings: %w", err)
	}
	return ratings, nil
}

// ListEmployerRatings returns every rating the employer has received
// from workers across their postings' applications.
func (s *Storage) ListEmployerRatings(ctx context.Context, employerID string) ([]int, error) {
	query := `
		SELECT a.employer_rating
		FROM job_applications a
		JOIN job_postings jp ON jp.id = a.job_posting_id
		WHERE jp.employer_id = $1 AND a.employer_rating IS NOT NULL
	`

	var ratings []int
	if err := s.db.SelectContext(ctx, &ratings, query, employerID); err != nil {
		return nil, fmt.Errorf("failed to list employer ratings: %w", err)
	}
	return ratings, nil
}

// SaveWorkerRating persists the recomputed average onto the worker
// profile. Last writer wins: the value is a pure re-derivation, never
// an increment.
func (s *Storage) SaveWorkerRating(ctx context.Context, workerID string, average float64) error {
	query := `UPDATE workers SET rating = $1 WHERE id = $2`

	if _, err := s.db.ExecContext(ctx, query, average, workerID); err != nil {
		return fmt.Errorf("failed to save worker rating: %w", err)
	}

	s.logger.Info("Worker rating updated",
		slog.String("worker_id", workerID),
		slog.Float64("rating", average),
	)
	return nil
}

// SaveEmployerRating persists the recomputed average onto the employer
// profile.
func (s *Storage) SaveEmployerRating(ctx context.Context, employerID string, average float64) error {
	query := `UPDATE employers SET rating = $1 WHERE id = $2`

	if _, err := s.db.ExecContext(ctx, query, average, employerID); err != nil {
		return fmt.Errorf("failed to save employer rating: %w", err)
	}

	s.logger.Info("Employer rating updated",
		slog.String("employer_id", employerID),
		slog.Float64("rating", average),
	)
	return nil
}
