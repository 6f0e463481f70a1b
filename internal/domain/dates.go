package domain

import "time"

// DateLayout is the wire format for check-in/check-out form fields.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD form value into a UTC-midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t.UTC(), nil
}

// Today returns the current date at UTC midnight.
func Today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights counts whole days between two UTC-midnight dates.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Overlaps reports whether [a1,a2) and [b1,b2) intersect. Touching
// boundaries (checkout day == next check-in day) do not overlap.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}
