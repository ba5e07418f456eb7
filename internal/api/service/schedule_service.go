package service

import (
	"context"
	"sort"

	"github.com/VijeshVS/LocalHire-sub000/internal/api/domain"
)

// ScheduleEntry is one commitment on a worker's calendar. Committed
// entries come from accepted applications, tentative ones from pending
// offers still awaiting a decision.
type ScheduleEntry struct {
	JobPostingID string
	JobTitle     string
	StartTime    string
	EndTime      string
	Committed    bool
	Conflicting  bool
}

// ScheduleDay groups a calendar date's entries, sorted by start time.
type ScheduleDay struct {
	Date    string
	Entries []ScheduleEntry
}

// Schedule assembles the worker's calendar from accepted work and live
// pending offers. Entries on the same day whose time ranges overlap
// are flagged as conflicting, which surfaces double-bookings the offer
// flow would reject.
func (s *OfferService) Schedule(ctx context.Context, workerID string) ([]ScheduleDay, error) {
	accepted, err := s.store.ListAcceptedWindows(ctx, workerID)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.ListPendingOffers(ctx, workerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	byDate := make(map[string][]ScheduleEntry)

	for _, w := range accepted {
		if !w.Schedule.Complete() {
			continue
		}
		byDate[w.Schedule.Date] = append(byDate[w.Schedule.Date], ScheduleEntry{
			JobPostingID: w.JobPostingID,
			JobTitle:     w.JobTitle,
			StartTime:    w.Schedule.StartTime,
			EndTime:      w.Schedule.EndTime,
			Committed:    true,
		})
	}
	for _, offer := range pending {
		if !offer.ExpiresAt.After(now) {
			continue
		}
		w := offerWindow(&offer)
		if !w.Schedule.Complete() {
			continue
		}
		byDate[w.Schedule.Date] = append(byDate[w.Schedule.Date], ScheduleEntry{
			JobPostingID: w.JobPostingID,
			JobTitle:     w.JobTitle,
			StartTime:    w.Schedule.StartTime,
			EndTime:      w.Schedule.EndTime,
		})
	}

	days := make([]ScheduleDay, 0, len(byDate))
	for date, entries := range byDate {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].StartTime < entries[j].StartTime
		})
		markDayConflicts(entries)
		days = append(days, ScheduleDay{Date: date, Entries: entries})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

func markDayConflicts(entries []ScheduleEntry) {
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].JobPostingID == entries[j].JobPostingID {
				continue
			}
			if domain.TimesOverlap(entries[i].StartTime, entries[i].EndTime, entries[j].StartTime, entries[j].EndTime) {
				entries[i].Conflicting = true
				entries[j].Conflicting = true
			}
		}
	}
}
