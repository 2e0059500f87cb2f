package timeslot

// HasConflict reports whether target overlaps any of existing. Sessions whose
// ID equals excludeID (typically target's own ID when it is being edited) and
// sessions on a different calendar date are skipped.
//
// Room filtering is the caller's job: existing is expected to be the
// occupancy of target's room.
func HasConflict(target Session, existing []Session, excludeID string) bool {
	for _, s := range existing {
		if isCandidate(target, s, excludeID) && target.Interval.Overlaps(s.Interval) {
			return true
		}
	}
	return false
}

// ConflictsWith returns every session in existing that [HasConflict] would
// report, in input order.
func ConflictsWith(target Session, existing []Session, excludeID string) []Session {
	var out []Session
	for _, s := range existing {
		if isCandidate(target, s, excludeID) && target.Interval.Overlaps(s.Interval) {
			out = append(out, s)
		}
	}
	return out
}

func isCandidate(target, s Session, excludeID string) bool {
	if excludeID != "" && s.ID == excludeID {
		return false
	}
	return s.Date == target.Date
}
