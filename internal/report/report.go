// Package report renders per-week, per-issue totals from the local
// cache. It never talks to the remote tracker; run sync first for fresh
// numbers.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/worklog/internal/store"
	"github.com/steveyegge/worklog/internal/timer"
)

// Options restricts what the report covers.
type Options struct {
	// Weeks is how many weeks back to report, counting the current one.
	Weeks int
	// Issues limits the report to the given keys; empty means all.
	Issues []string
	// Users limits the report to the given author display names.
	Users []string
}

// Week aggregates the entries of one ISO week.
type Week struct {
	Year         int
	Number       int
	PerIssue     map[string]int64
	TotalSeconds int64
}

// Label renders the week identifier, e.g. "2026-W35".
func (w Week) Label() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

// IssueKeys returns the issue keys of the week, ascending.
func (w Week) IssueKeys() []string {
	keys := make([]string, 0, len(w.PerIssue))
	for k := range w.PerIssue {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildWeeks groups cached entries into per-week, per-issue totals,
// oldest week first.
func BuildWeeks(entries []store.LocalWorklog) []Week {
	type weekKey struct {
		year, number int
	}
	byWeek := make(map[weekKey]*Week)
	for _, entry := range entries {
		year, number := entry.Started.ISOWeek()
		k := weekKey{year, number}
		w, ok := byWeek[k]
		if !ok {
			w = &Week{Year: year, Number: number, PerIssue: make(map[string]int64)}
			byWeek[k] = w
		}
		w.PerIssue[entry.IssueKey] += entry.TimeSpentSeconds
		w.TotalSeconds += entry.TimeSpentSeconds
	}

	weeks := make([]Week, 0, len(byWeek))
	for _, w := range byWeek {
		weeks = append(weeks, *w)
	}
	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].Year != weeks[j].Year {
			return weeks[i].Year < weeks[j].Year
		}
		return weeks[i].Number < weeks[j].Number
	})
	return weeks
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	weekStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	totalStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// Render reads the cache and produces the textual report.
func Render(ctx context.Context, st *store.Store, opts Options) (string, error) {
	if opts.Weeks <= 0 {
		opts.Weeks = 1
	}
	since := startOfWeek(time.Now()).AddDate(0, 0, -7*(opts.Weeks-1))

	entries, err := st.FindWorklogsAfter(ctx, since, opts.Issues, opts.Users)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return dimStyle.Render("No work logs in the selected range. Run 'wl sync' to refresh the cache."), nil
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Work logged since %s", since.Format("2006-01-02"))))
	b.WriteString("\n\n")

	var grand int64
	for _, week := range BuildWeeks(entries) {
		b.WriteString(weekStyle.Render(week.Label()))
		b.WriteString("\n")
		for _, key := range week.IssueKeys() {
			b.WriteString(fmt.Sprintf("  %-12s %10s\n", key, timer.FormatTimeSpent(week.PerIssue[key])))
		}
		b.WriteString(fmt.Sprintf("  %-12s %10s\n", "week total", timer.FormatTimeSpent(week.TotalSeconds)))
		grand += week.TotalSeconds
	}

	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("Total: %s", timer.FormatTimeSpent(grand))))
	return b.String(), nil
}

// startOfWeek returns Monday 00:00 of the week containing t.
func startOfWeek(t time.Time) time.Time {
	back := (int(t.Weekday()) + 6) % 7
	d := t.AddDate(0, 0, -back)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}
