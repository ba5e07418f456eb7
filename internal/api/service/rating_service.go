package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// RatingSubject selects which side of the marketplace an average is
// computed for.
type RatingSubject string

const (
	SubjectWorker   RatingSubject = "worker"
	SubjectEmployer RatingSubject = "employer"
)

type RatingStore interface {
	ListWorkerRatings(ctx context.Context, workerID string) ([]int, error)
	ListEmployerRatings(ctx context.Context, employerID string) ([]int, error)
	SaveWorkerRating(ctx context.Context, workerID string, average float64) error
	SaveEmployerRating(ctx context.Context, employerID string, average float64) error
}

// RatingService maintains the aggregate rating on worker and employer
// profiles from the per-application ratings.
type RatingService struct {
	store  RatingStore
	logger *slog.Logger
}

func NewRatingService(store RatingStore, logger *slog.Logger) *RatingService {
	return &RatingService{store: store, logger: logger}
}

// Recompute recalculates the subject's average from all stored ratings
// and persists it rounded to one decimal place. With no ratings on
// record the stored value is left untouched and zero is returned.
func (s *RatingService) Recompute(ctx context.Context, subject RatingSubject, id string) (float64, error) {
	var (
		ratings []int
		err     error
	)
	switch subject {
	case SubjectWorker:
		ratings, err = s.store.ListWorkerRatings(ctx, id)
	case SubjectEmployer:
		ratings, err = s.store.ListEmployerRatings(ctx, id)
	default:
		return 0, fmt.Errorf("unknown rating subject %q", subject)
	}
	if err != nil {
		return 0, err
	}
	if len(ratings) == 0 {
		return 0, nil
	}

	average := Average(ratings)

	switch subject {
	case SubjectWorker:
		err = s.store.SaveWorkerRating(ctx, id, average)
	case SubjectEmployer:
		err = s.store.SaveEmployerRating(ctx, id, average)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("Rating recomputed",
		slog.String("subject", string(subject)),
		slog.String("id", id),
		slog.Float64("average", average),
		slog.Int("count", len(ratings)),
	)
	return average, nil
}

// Average is the arithmetic mean rounded to one decimal place.
func Average(ratings []int) float64 {
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10
}
