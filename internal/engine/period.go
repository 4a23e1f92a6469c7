package engine

import "time"

// WeekStartsOn is the first day of a reward week. Weeks follow ISO-8601
// numbering, so this is fixed to Monday.
const WeekStartsOn = time.Monday

// Period is a half-open scheduling window [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// DayPeriod returns the calendar day containing t in loc.
func DayPeriod(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Period{Start: start, End: start.AddDate(0, 0, 1)}
}

func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Previous returns the day immediately before p.
func (p Period) Previous() Period {
	return Period{Start: p.Start.AddDate(0, 0, -1), End: p.Start}
}

// WeekOf returns the ISO-8601 year and week number of t in loc.
func WeekOf(t time.Time, loc *time.Location) (year, week int) {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).ISOWeek()
}

// WeekPeriod returns the reward week containing t in loc.
func WeekPeriod(t time.Time, loc *time.Location) Period {
	day := DayPeriod(t, loc).Start
	offset := (int(day.Weekday()) - int(WeekStartsOn) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return Period{Start: start, End: start.AddDate(0, 0, 7)}
}
