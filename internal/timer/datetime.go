package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// workdayStartHour is where date-only entries are anchored: a work log
// entered for "2026-08-20" starts at 08:00 local time.
const workdayStartHour = 8

// ParseDateTime turns a user-entered point in time into a local
// timestamp. Accepted forms, tried in order:
//
//	"15:04"            today at that wall-clock time
//	"2026-08-20"       that day at 08:00
//	"2026-08-20T15:04" exact
//
// Anything else is handed to a natural-language parser, so "yesterday at
// 14:00" works too.
func ParseDateTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date/time")
	}

	if t, err := time.ParseInLocation("15:04", s, time.Local); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(),
			t.Hour(), t.Minute(), 0, 0, time.Local), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(),
			workdayStartHour, 0, 0, 0, time.Local), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local); err == nil {
		return t, nil
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	result, err := parser.Parse(s, now)
	if err != nil || result == nil {
		return time.Time{}, fmt.Errorf("unrecognized date/time %q", s)
	}
	return result.Time, nil
}

// CalculateStartedTime resolves when a manual entry began. With no
// explicit start the entry is assumed to have just finished, so it
// started duration seconds ago. An explicit start may not place the end
// of the entry in the future.
func CalculateStartedTime(start *time.Time, durationSeconds int64, now time.Time) (time.Time, error) {
	if start == nil {
		return now.Add(-time.Duration(durationSeconds) * time.Second), nil
	}
	end := start.Add(time.Duration(durationSeconds) * time.Second)
	if end.After(now) {
		return time.Time{}, fmt.Errorf("entry starting %s with duration %s would end in the future",
			start.Format("2006-01-02 15:04"), FormatTimeSpent(durationSeconds))
	}
	return *start, nil
}

var weekdays = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// LastWeekdayFrom returns the most recent day with the given weekday at
// or before now, anchored at the workday start hour. Today counts.
func LastWeekdayFrom(now time.Time, day time.Weekday) time.Time {
	back := (int(now.Weekday()) - int(day) + 7) % 7
	d := now.AddDate(0, 0, -back)
	return time.Date(d.Year(), d.Month(), d.Day(), workdayStartHour, 0, 0, 0, time.Local)
}

// ManualEntry is one parsed work-log entry from the manual add path.
type ManualEntry struct {
	Started time.Time
	Seconds int64
}

// ParseWeekdayDurations parses the weekday batch form, one entry per
// "Ddd:duration" item such as "Mon:1,5h" or "fri:7.5h". Each entry lands
// on the most recent matching weekday at 08:00.
func ParseWeekdayDurations(items []string, schedule Schedule, now time.Time) ([]ManualEntry, error) {
	entries := make([]ManualEntry, 0, len(items))
	for _, item := range items {
		prefix, durationSpec, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("invalid weekday entry %q: expected form Mon:1,5h", item)
		}
		day, ok := weekdays[strings.ToLower(strings.TrimSpace(prefix))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q in %q", prefix, item)
		}
		seconds, err := ParseTimeSpent(durationSpec, schedule)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ManualEntry{
			Started: LastWeekdayFrom(now, day),
			Seconds: seconds,
		})
	}
	return entries, nil
}
