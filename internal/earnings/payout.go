package earnings

import "time"

// NextPaymentDate returns the first payment day strictly after after, as
// midnight in loc. Days past the end of a short month fall on its last day.
func NextPaymentDate(after time.Time, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := after.In(loc)

	candidate := paymentDayIn(local.Year(), local.Month(), day, loc)
	if !candidate.After(local) {
		next := time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, loc)
		candidate = paymentDayIn(next.Year(), next.Month(), day, loc)
	}
	return candidate
}

func paymentDayIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
