package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func window(offerID, postingID, title, date, start, end string) OfferWindow {
	return OfferWindow{
		OfferID:      offerID,
		JobPostingID: postingID,
		JobTitle:     title,
		Schedule:     Schedule{Date: date, StartTime: start, EndTime: end},
	}
}

func acceptedJob(appID, postingID, title, date, start, end string) AcceptedWindow {
	return AcceptedWindow{
		ApplicationID: appID,
		JobPostingID:  postingID,
		JobTitle:      title,
		Schedule:      Schedule{Date: date, StartTime: start, EndTime: end},
	}
}

func TestComputeConflicts(t *testing.T) {
	t.Run("overlapping pending offers flag each other", func(t *testing.T) {
		a := window("offer-a", "post-a", "Garden Cleanup", "2026-09-01", "09:00", "12:00")
		b := window("offer-b", "post-b", "Fence Painting", "2026-09-01", "10:00", "14:00")

		report := ComputeConflicts(a, []OfferWindow{a, b}, nil)
		assert.True(t, report.HasConflict)
		assert.False(t, report.HasExistingJobConflict)
		assert.Equal(t, []string{"Fence Painting"}, report.ConflictingTitles)
		assert.Equal(t, []string{"offer-b"}, report.ConflictingOfferIDs)

		report = ComputeConflicts(b, []OfferWindow{a, b}, nil)
		assert.True(t, report.HasConflict)
		assert.Equal(t, []string{"Garden Cleanup"}, report.ConflictingTitles)
	})

	t.Run("conflict with accepted job", func(t *testing.T) {
		target := window("offer-a", "post-a", "Garden Cleanup", "2026-09-01", "09:00", "12:00")
		committed := acceptedJob("app-1", "post-c", "Dog Walking", "2026-09-01", "11:00", "13:00")

		report := ComputeConflicts(target, nil, []AcceptedWindow{committed})
		assert.True(t, report.HasConflict)
		assert.True(t, report.HasExistingJobConflict)
		assert.Equal(t, []string{"Dog Walking"}, report.ConflictingTitles)
		assert.Empty(t, report.ConflictingOfferIDs)
	})

	t.Run("back to back windows do not conflict", func(t *testing.T) {
		a := window("offer-a", "post-a", "Morning Shift", "2026-09-01", "09:00", "17:00")
		b := window("offer-b", "post-b", "Evening Shift", "2026-09-01", "17:00", "19:00")

		report := ComputeConflicts(a, []OfferWindow{a, b}, nil)
		assert.False(t, report.HasConflict)
	})

	t.Run("different days do not conflict", func(t *testing.T) {
		a := window("offer-a", "post-a", "Monday Job", "2026-09-01", "09:00", "12:00")
		b := window("offer-b", "post-b", "Tuesday Job", "2026-09-02", "09:00", "12:00")

		report := ComputeConflicts(a, []OfferWindow{a, b}, nil)
		assert.False(t, report.HasConflict)
	})

	t.Run("incomplete schedule never conflicts", func(t *testing.T) {
		unscheduled := window("offer-a", "post-a", "Odd Jobs", "", "", "")
		other := window("offer-b", "post-b", "Fence Painting", "2026-09-01", "10:00", "14:00")

		report := ComputeConflicts(unscheduled, []OfferWindow{unscheduled, other}, nil)
		assert.False(t, report.HasConflict)
		assert.Empty(t, report.ConflictingTitles)
	})

	t.Run("malformed times never conflict", func(t *testing.T) {
		broken := window("offer-a", "post-a", "Broken", "2026-09-01", "9am", "5pm")
		other := window("offer-b", "post-b", "Fence Painting", "2026-09-01", "10:00", "14:00")

		report := ComputeConflicts(broken, []OfferWindow{broken, other}, nil)
		assert.False(t, report.HasConflict)
	})

	t.Run("same posting is excluded", func(t *testing.T) {
		target := window("offer-a", "post-a", "Garden Cleanup", "2026-09-01", "09:00", "12:00")
		reoffer := window("offer-b", "post-a", "Garden Cleanup", "2026-09-01", "09:00", "12:00")
		held := acceptedJob("app-1", "post-a", "Garden Cleanup", "2026-09-01", "09:00", "12:00")

		report := ComputeConflicts(target, []OfferWindow{target, reoffer}, []AcceptedWindow{held})
		assert.False(t, report.HasConflict)
	})

	t.Run("conflicts are direct not transitive", func(t *testing.T) {
		a := window("offer-a", "post-a", "A", "2026-09-01", "09:00", "10:30")
		b := window("offer-b", "post-b", "B", "2026-09-01", "10:00", "12:00")
		c := window("offer-c", "post-c", "C", "2026-09-01", "11:30", "13:00")
		all := []OfferWindow{a, b, c}

		// A overlaps B, B overlaps C, but A does not overlap C.
		reportA := ComputeConflicts(a, all, nil)
		assert.Equal(t, []string{"B"}, reportA.ConflictingTitles)

		reportB := ComputeConflicts(b, all, nil)
		assert.ElementsMatch(t, []string{"A", "C"}, reportB.ConflictingTitles)

		reportC := ComputeConflicts(c, all, nil)
		assert.Equal(t, []string{"B"}, reportC.ConflictingTitles)
	})

	t.Run("multiple conflicts accumulate", func(t *testing.T) {
		target := window("offer-a", "post-a", "All Day", "2026-09-01", "08:00", "18:00")
		b := window("offer-b", "post-b", "Morning", "2026-09-01", "09:00", "11:00")
		c := window("offer-c", "post-c", "Afternoon", "2026-09-01", "13:00", "15:00")
		committed := acceptedJob("app-1", "post-d", "Lunch Rush", "2026-09-01", "11:00", "13:00")

		report := ComputeConflicts(target, []OfferWindow{target, b, c}, []AcceptedWindow{committed})
		assert.True(t, report.HasConflict)
		assert.True(t, report.HasExistingJobConflict)
		assert.ElementsMatch(t, []string{"Lunch Rush", "Morning", "Afternoon"}, report.ConflictingTitles)
		assert.ElementsMatch(t, []string{"offer-b", "offer-c"}, report.ConflictingOfferIDs)
	})
}
