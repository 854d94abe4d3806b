package domain

import "time"

// AddMonths adds calendar months to a date, clamping the day to the last
// valid day of the target month (Jan 31 + 1 month -> Feb 28/29). Months
// must be non-negative.
func AddMonths(t time.Time, months int) time.Time {
	y := t.Year() + (int(t.Month())-1+months)/12
	m := time.Month((int(t.Month())-1+months)%12 + 1)

	day := t.Day()
	if last := daysInMonth(y, m); day > last {
		day = last
	}
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOnly truncates to a calendar date in UTC. Entry dates carry no
// time-of-day significance.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ChallengeYear is the rotating savings cycle an entry date falls in.
// Cycles align with calendar years.
func ChallengeYear(t time.Time) int {
	return t.Year()
}

// CutoverDate is the day the annual 15% interest on uninvested balances is
// credited: Dec 31 of the challenge year.
func CutoverDate(year int) time.Time {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole days from a to b. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}
