package services

import "time"

// WeekDates returns the Monday and Sunday of the given ISO week, used in
// the summary prompt and the confirmation email.
func WeekDates(week, year int) (time.Time, time.Time) {
	// Jan 4 is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, 1-weekday).AddDate(0, 0, (week-1)*7)
	return monday, monday.AddDate(0, 0, 6)
}

// WeekDateRange renders the week span as "January 02, 2024 - January 08, 2024".
func WeekDateRange(week, year int) string {
	start, end := WeekDates(week, year)
	const layout = "January 02, 2006"
	return start.Format(layout) + " - " + end.Format(layout)
}

// CurrentWeek returns the ISO week number and year of now, clamped to the
// 1-52 range the report form accepts.
func CurrentWeek() (int, int) {
	year, week := time.Now().ISOWeek()
	if week > 52 {
		week = 52
	}
	return week, year
}
