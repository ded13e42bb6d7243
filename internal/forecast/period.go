// internal/forecast/period.go
package forecast

import (
	"sort"
	"time"

	"github.com/inventorykit/replenish/internal/domain"
)

// CurrentPeriod maps a calendar date onto the periodic calendar: 13
// four-week periods or 52 weeks per year, 1-based, with the year's tail
// days folded into the last period.
func CurrentPeriod(t time.Time, periodicity int) domain.Period {
	days := 28
	if periodicity == 52 {
		days = 7
	}
	idx := (t.YearDay()-1)/days + 1
	if idx > periodicity {
		idx = periodicity
	}
	return domain.Period{Year: t.Year(), Index: idx}
}

// PreviousPeriod steps one period back, wrapping across year boundaries.
func PreviousPeriod(p domain.Period, periodicity int) domain.Period {
	if p.Index > 1 {
		return domain.Period{Year: p.Year, Index: p.Index - 1}
	}
	return domain.Period{Year: p.Year - 1, Index: periodicity}
}

// PeriodsBetween counts whole periods from p to q (q after p is
// positive).
func PeriodsBetween(p, q domain.Period, periodicity int) int {
	return (q.Year-p.Year)*periodicity + (q.Index - p.Index)
}

// demandWindow returns up to n history buckets strictly before the given
// period, most recent first, skipping buckets flagged as ignored. The
// input history may arrive in any order.
func demandWindow(history []domain.PeriodDemand, before domain.Period, n int) []domain.PeriodDemand {
	window := make([]domain.PeriodDemand, 0, len(history))
	for _, h := range history {
		if !h.Ignored && h.Period.Before(before) {
			window = append(window, h)
		}
	}
	sort.Slice(window, func(i, j int) bool {
		return window[j].Period.Before(window[i].Period)
	})
	if len(window) > n {
		window = window[:n]
	}
	return window
}
