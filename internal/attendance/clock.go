package attendance

import (
	"regexp"
	"strconv"
	"time"
)

// All business-day math happens in a fixed UTC+05:30 zone, regardless of
// server locale or where a punch was sent from.
const istOffsetMinutes = 330

var IST = time.FixedZone("IST", istOffsetMinutes*60)

var (
	dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	hhmmPattern    = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

// DateKey renders t as the YYYY-MM-DD calendar date it falls on in IST.
func DateKey(t time.Time) string {
	return t.In(IST).Format("2006-01-02")
}

// MonthPrefix returns the YYYY-MM prefix of a date key. Callers must pass a
// valid key.
func MonthPrefix(dateKey string) string {
	return dateKey[:7]
}

// MinutesOfDay is the minute-of-day of t in IST, for comparison against
// policy window boundaries.
func MinutesOfDay(t time.Time) int {
	ist := t.In(IST)
	return ist.Hour()*60 + ist.Minute()
}

// FormatIST renders an instant as an ISO string with the explicit +05:30
// offset, the way every timestamp leaves this API.
func FormatIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02T15:04:05.000-07:00")
}

func ValidDateKey(s string) bool { return dateKeyPattern.MatchString(s) }

func validHHMM(s string) bool { return hhmmPattern.MatchString(s) }

// hhmmToMinutes assumes s already passed validHHMM.
func hhmmToMinutes(s string) int {
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return h*60 + m
}
