package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationStatusTransitions(t *testing.T) {
	tests := []struct {
		from ApplicationStatus
		to   ApplicationStatus
		want bool
	}{
		{ApplicationApplied, ApplicationShortlisted, true},
		{ApplicationApplied, ApplicationAccepted, true},
		{ApplicationApplied, ApplicationRejected, true},
		{ApplicationShortlisted, ApplicationAccepted, true},
		{ApplicationShortlisted, ApplicationRejected, true},
		{ApplicationShortlisted, ApplicationApplied, false},
		{ApplicationAccepted, ApplicationRejected, false},
		{ApplicationAccepted, ApplicationShortlisted, false},
		{ApplicationRejected, ApplicationAccepted, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}

	assert.True(t, ApplicationAccepted.Terminal())
	assert.True(t, ApplicationRejected.Terminal())
	assert.False(t, ApplicationApplied.Terminal())
}

func TestWorkStatusTransitions(t *testing.T) {
	assert.True(t, WorkPending.CanTransition(WorkInProgress))
	assert.True(t, WorkInProgress.CanTransition(WorkCompleted))
	assert.False(t, WorkPending.CanTransition(WorkCompleted))
	assert.False(t, WorkCompleted.CanTransition(WorkPending))
	assert.False(t, WorkCompleted.CanTransition(WorkInProgress))
}

func TestOfferStatusTransitions(t *testing.T) {
	for _, terminal := range []OfferStatus{OfferAccepted, OfferRejected, OfferExpired} {
		assert.True(t, OfferPending.CanTransition(terminal))
		assert.False(t, terminal.CanTransition(OfferPending))
		assert.False(t, terminal.CanTransition(OfferAccepted))
	}
}

func TestParseStatuses(t *testing.T) {
	st, err := ParseApplicationStatus("shortlisted")
	require.NoError(t, err)
	assert.Equal(t, ApplicationShortlisted, st)

	_, err = ParseApplicationStatus("SHORTLISTED")
	assert.Error(t, err)

	_, err = ParseWorkStatus("done")
	assert.Error(t, err)

	os, err := ParseOfferStatus("expired")
	require.NoError(t, err)
	assert.Equal(t, OfferExpired, os)
}

func TestFormatWait(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"hours and minutes", 2*time.Hour + 5*time.Minute, "2h 5m"},
		{"under an hour", 12 * time.Minute, "12 minutes"},
		{"partial minute rounds up", 90 * time.Second, "2 minutes"},
		{"exact hour", time.Hour, "1h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatWait(tt.d))
		})
	}
}

func TestEarlyCompletionError(t *testing.T) {
	end := time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC)
	err := &EarlyCompletionError{ScheduledEnd: end, Remaining: 90 * time.Minute}

	assert.Contains(t, err.Error(), "2026-09-01T17:00:00Z")
	assert.Contains(t, err.Error(), "1h 30m")
}
