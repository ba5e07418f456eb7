package domain

// OfferWindow is the slice of a pending offer the conflict detector
// needs: identity, the underlying posting and the denormalized schedule.
type OfferWindow struct {
	OfferID      string
	JobPostingID string
	JobTitle     string
	Schedule     Schedule
}

// AcceptedWindow is an already-accepted, not-yet-completed job on the
// worker's calendar.
type AcceptedWindow struct {
	ApplicationID string
	JobPostingID  string
	JobTitle      string
	Schedule      Schedule
}

// ConflictReport is the computed annotation for a single offer. It is
// never persisted: the underlying offer set can change between reads,
// so it is rederived from a fresh snapshot on every request.
type ConflictReport struct {
	HasConflict            bool
	HasExistingJobConflict bool
	ConflictingTitles      []string
	ConflictingOfferIDs    []string
}

// ComputeConflicts evaluates one offer against the worker's other
// pending offers and accepted jobs. Each offer reports only its own
// direct overlaps; conflicts are not clustered transitively.
//
// Offers or jobs for the same underlying posting as the target are
// skipped: a re-offer of a job the worker already holds is never a
// conflict with itself.
func ComputeConflicts(target OfferWindow, pending []OfferWindow, accepted []AcceptedWindow) ConflictReport {
	var report ConflictReport
	if !target.Schedule.Complete() {
		return report
	}

	for _, job := range accepted {
		if job.JobPostingID == target.JobPostingID {
			continue
		}
		if target.Schedule.OverlapsSameDay(job.Schedule) {
			report.HasExistingJobConflict = true
			report.ConflictingTitles = append(report.ConflictingTitles, job.JobTitle)
		}
	}

	for _, other := range pending {
		if other.OfferID == target.OfferID || other.JobPostingID == target.JobPostingID {
			continue
		}
		if target.Schedule.OverlapsSameDay(other.Schedule) {
			report.ConflictingTitles = append(report.ConflictingTitles, other.JobTitle)
			report.ConflictingOfferIDs = append(report.ConflictingOfferIDs, other.OfferID)
		}
	}

	report.HasConflict = report.HasExistingJobConflict || len(report.ConflictingTitles) > 0
	return report
}
