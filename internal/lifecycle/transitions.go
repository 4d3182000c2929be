package lifecycle

import "github.com/addis-listings/dalal-bot/internal/domain"

// allowed maps each status to the statuses it may move to. Deleted is
// terminal; deletion itself is legal from any live status.
var allowed = map[domain.Status][]domain.Status{
	domain.StatusPending:  {domain.StatusApproved, domain.StatusRejected, domain.StatusDeleted},
	domain.StatusApproved: {domain.StatusSold, domain.StatusDeleted},
	domain.StatusRejected: {domain.StatusDeleted},
	domain.StatusSold:     {domain.StatusDeleted},
	domain.StatusDeleted:  {},
}

// CanTransition reports whether a listing in status from may move to
// status to.
func CanTransition(from, to domain.Status) bool {
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Statuses returns every known listing status.
func Statuses() []domain.Status {
	return []domain.Status{
		domain.StatusPending,
		domain.StatusApproved,
		domain.StatusRejected,
		domain.StatusSold,
		domain.StatusDeleted,
	}
}
