// Package metrics derives the dashboard KPI set from a project and its
// related records. Every function is pure: malformed numeric input is
// coerced to zero, malformed dates propagate as unknown, and nothing here
// performs I/O or panics.
package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/sitedash-io/sitedash/internal/pkg/dates"
)

// TimeKPIs is the elapsed/remaining time block of the dashboard.
// Nil DaysSpent means the start date is unknown; HasDeadline false means
// the project has no deadline and DaysLeft/Overdue carry no meaning.
type TimeKPIs struct {
	DaysSpent   *int `json:"days_spent"`
	DaysLeft    *int `json:"days_left"`
	Overdue     bool `json:"overdue"`
	HasDeadline bool `json:"has_deadline"`
}

// ComputeTimeKPIs derives the time block from raw start/deadline values
// (any shape dates.Normalize accepts) and the reference date.
func ComputeTimeKPIs(start, deadline any, today dates.Date) TimeKPIs {
	out := TimeKPIs{}

	if s, ok := dates.Normalize(start); ok {
		spent := 0
		// a project that has not started yet has zero days spent, never negative
		if !s.After(today) {
			spent = dates.DaysBetween(s, today)
		}
		out.DaysSpent = &spent
	}

	if d, ok := dates.Normalize(deadline); ok {
		out.HasDeadline = true
		left := dates.DaysBetween(today, d)
		if today.After(d) {
			out.Overdue = true
		}
		out.DaysLeft = &left
	}

	return out
}

// TaskInput is the slice of a task record the progress computation needs.
type TaskInput struct {
	Status   string
	Progress *float64
}

// TaskProgress summarises workflow completion for one project.
type TaskProgress struct {
	CompletionPercent int `json:"completion_percent"`
	CompletedCount    int `json:"completed_count"`
	TotalCount        int `json:"total_count"`
}

// IsComplete reports whether a task counts as complete: numeric progress of
// 100 or a status of "completed"/"done", compared ignoring case and
// whitespace. The two signals are redundant and treated as equivalent.
func IsComplete(t TaskInput) bool {
	if t.Progress != nil && *t.Progress >= 100 {
		return true
	}
	switch strings.ToLower(strings.Join(strings.Fields(t.Status), "")) {
	case "completed", "done":
		return true
	}
	return false
}

// ComputeTaskProgress derives completion as the average of per-task
// percentages. A task that is complete by status counts as 100 even when
// its numeric progress is unset. An empty slice yields zero, not a
// division error.
func ComputeTaskProgress(tasks []TaskInput) TaskProgress {
	out := TaskProgress{TotalCount: len(tasks)}
	if len(tasks) == 0 {
		return out
	}

	var sum float64
	for _, t := range tasks {
		p := 0.0
		if t.Progress != nil {
			p = clamp(*t.Progress, 0, 100)
		}
		if IsComplete(t) {
			p = 100
			out.CompletedCount++
		}
		sum += p
	}
	out.CompletionPercent = int(math.Round(sum / float64(len(tasks))))
	return out
}

// CompletedFraction is the alternative completion convention: the share of
// tasks that are complete, ignoring partial progress. Exposed separately
// so callers can choose which number to display.
func CompletedFraction(tasks []TaskInput) TaskProgress {
	out := TaskProgress{TotalCount: len(tasks)}
	if len(tasks) == 0 {
		return out
	}
	for _, t := range tasks {
		if IsComplete(t) {
			out.CompletedCount++
		}
	}
	out.CompletionPercent = int(math.Round(float64(out.CompletedCount) / float64(len(tasks)) * 100))
	return out
}

// ExpenseInput is the slice of an expense record the financial computation
// needs. Amount is raw because sheet backends hand back strings.
type ExpenseInput struct {
	Amount any
}

// Budget consumption bands, advisory only.
const (
	BandHealthy  = "healthy"
	BandWarning  = "warning"
	BandCritical = "critical"
	BandNoBudget = "no_budget"
)

// FinancialKPIs is the budget block of the dashboard. NoBudget marks the
// "spending recorded against a zero budget" state, which is reported
// distinctly instead of dividing by zero.
type FinancialKPIs struct {
	Budget       float64 `json:"budget"`
	TotalSpent   float64 `json:"total_spent"`
	Remaining    float64 `json:"remaining"`
	SpentPercent int     `json:"spent_percent"`
	NoBudget     bool    `json:"no_budget"`
	Band         string  `json:"band"`
}

// ComputeFinancialKPIs sums expense amounts against the budget. Negative
// or non-numeric amounts contribute zero; a negative remaining value is a
// valid over-budget state.
func ComputeFinancialKPIs(budget any, expenses []ExpenseInput) FinancialKPIs {
	out := FinancialKPIs{}
	if b := CoerceNumber(budget); b > 0 {
		out.Budget = b
	}

	for _, e := range expenses {
		if amt := CoerceNumber(e.Amount); amt > 0 {
			out.TotalSpent += amt
		}
	}
	out.Remaining = out.Budget - out.TotalSpent

	switch {
	case out.Budget > 0:
		out.SpentPercent = int(math.Round(out.TotalSpent / out.Budget * 100))
		switch {
		case out.Remaining < 0.1*out.Budget:
			out.Band = BandCritical
		case out.Remaining < 0.3*out.Budget:
			out.Band = BandWarning
		default:
			out.Band = BandHealthy
		}
	case out.TotalSpent > 0:
		out.NoBudget = true
		out.Band = BandNoBudget
	default:
		out.Band = BandHealthy
	}

	return out
}

// MaterialInput is the slice of a material record the dispatch computation
// needs.
type MaterialInput struct {
	Required   any
	Dispatched any
}

// MaterialKPIs is the dispatch block of the dashboard.
type MaterialKPIs struct {
	DispatchedPercent int     `json:"dispatched_percent"`
	TotalRequired     float64 `json:"total_required"`
	TotalDispatched   float64 `json:"total_dispatched"`
}

// ComputeMaterialKPIs derives overall dispatch completion, clamped to
// [0, 100]. Zero total required yields zero.
func ComputeMaterialKPIs(materials []MaterialInput) MaterialKPIs {
	out := MaterialKPIs{}
	for _, m := range materials {
		out.TotalRequired += CoerceNumber(m.Required)
		out.TotalDispatched += CoerceNumber(m.Dispatched)
	}
	if out.TotalRequired > 0 {
		pct := math.Round(out.TotalDispatched / out.TotalRequired * 100)
		out.DispatchedPercent = int(clamp(pct, 0, 100))
	}
	return out
}

// CoerceNumber turns a raw numeric field into a non-negative float64.
// Strings are parsed; NaN, infinities, negatives and garbage all coerce to
// zero rather than propagating into sums.
func CoerceNumber(raw any) float64 {
	var n float64
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
