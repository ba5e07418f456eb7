package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimesOverlap(t *testing.T) {
	tests := []struct {
		name   string
		startA string
		endA   string
		startB string
		endB   string
		want   bool
	}{
		{
			name:   "clear overlap",
			startA: "09:00", endA: "12:00",
			startB: "10:00", endB: "14:00",
			want: true,
		},
		{
			name:   "contained range",
			startA: "09:00", endA: "17:00",
			startB: "10:00", endB: "11:00",
			want: true,
		},
		{
			name:   "identical range",
			startA: "09:00", endA: "12:00",
			startB: "09:00", endB: "12:00",
			want: true,
		},
		{
			name:   "back to back does not overlap",
			startA: "09:00", endA: "17:00",
			startB: "17:00", endB: "19:00",
			want: false,
		},
		{
			name:   "back to back reversed",
			startA: "17:00", endA: "19:00",
			startB: "09:00", endB: "17:00",
			want: false,
		},
		{
			name:   "disjoint ranges",
			startA: "08:00", endA: "09:00",
			startB: "13:00", endB: "15:00",
			want: false,
		},
		{
			name:   "one minute overlap",
			startA: "09:00", endA: "12:01",
			startB: "12:00", endB: "14:00",
			want: true,
		},
		{
			name:   "seconds suffix accepted",
			startA: "09:00:00", endA: "12:00:00",
			startB: "10:30:00", endB: "11:00:00",
			want: true,
		},
		{
			name:   "empty start means no overlap",
			startA: "", endA: "12:00",
			startB: "10:00", endB: "14:00",
			want: false,
		},
		{
			name:   "garbage time means no overlap",
			startA: "not-a-time", endA: "12:00",
			startB: "10:00", endB: "14:00",
			want: false,
		},
		{
			name:   "out of range hour means no overlap",
			startA: "25:00", endA: "26:00",
			startB: "10:00", endB: "14:00",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimesOverlap(tt.startA, tt.endA, tt.startB, tt.endB)
			assert.Equal(t, tt.want, got)

			// Overlap is symmetric
			assert.Equal(t, got, TimesOverlap(tt.startB, tt.endB, tt.startA, tt.endA))
		})
	}
}

func TestScheduleOverlapsSameDay(t *testing.T) {
	morning := Schedule{Date: "2026-09-01", StartTime: "09:00", EndTime: "12:00"}

	tests := []struct {
		name  string
		other Schedule
		want  bool
	}{
		{
			name:  "same day overlap",
			other: Schedule{Date: "2026-09-01", StartTime: "11:00", EndTime: "13:00"},
			want:  true,
		},
		{
			name:  "different day never overlaps",
			other: Schedule{Date: "2026-09-02", StartTime: "09:00", EndTime: "12:00"},
			want:  false,
		},
		{
			name:  "missing date never overlaps",
			other: Schedule{Date: "", StartTime: "09:00", EndTime: "12:00"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, morning.OverlapsSameDay(tt.other))
		})
	}
}

func TestScheduleComplete(t *testing.T) {
	assert.True(t, Schedule{Date: "2026-09-01", StartTime: "09:00", EndTime: "17:00"}.Complete())
	assert.False(t, Schedule{Date: "", StartTime: "09:00", EndTime: "17:00"}.Complete())
	assert.False(t, Schedule{Date: "2026-09-01", StartTime: "", EndTime: "17:00"}.Complete())
	assert.False(t, Schedule{Date: "2026-09-01", StartTime: "09:00", EndTime: "bad"}.Complete())
}
