package dashboard

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// Window holds rolling counts ending at now plus the 7 day trend.
type Window struct {
	Last7D     int `json:"last7d"`
	Last14D    int `json:"last14d"`
	Last30D    int `json:"last30d"`
	Previous7D int `json:"previous7d"`
	Trend7D    int `json:"trend7d"`
}

// windowCounter accumulates timestamps into a Window.
type windowCounter struct {
	now time.Time
	w   Window
}

func newWindowCounter(now time.Time) *windowCounter {
	return &windowCounter{now: now}
}

func (c *windowCounter) add(ts time.Time) {
	if ts.After(c.now) {
		return
	}
	age := c.now.Sub(ts)
	if age <= 7*day {
		c.w.Last7D++
	} else if age <= 14*day {
		c.w.Previous7D++
	}
	if age <= 14*day {
		c.w.Last14D++
	}
	if age <= 30*day {
		c.w.Last30D++
	}
}

func (c *windowCounter) result() Window {
	w := c.w
	w.Trend7D = Trend(w.Last7D, w.Previous7D)
	return w
}

func (w Window) plus(o Window) Window {
	sum := Window{
		Last7D:     w.Last7D + o.Last7D,
		Last14D:    w.Last14D + o.Last14D,
		Last30D:    w.Last30D + o.Last30D,
		Previous7D: w.Previous7D + o.Previous7D,
	}
	sum.Trend7D = Trend(sum.Last7D, sum.Previous7D)
	return sum
}

// Trend is the rounded percentage change from previous to current, 0 when
// there is no previous period.
func Trend(current, previous int) int {
	if previous == 0 {
		return 0
	}
	return int(math.Round(100 * float64(current-previous) / float64(previous)))
}

// Percent is round(100*num/den), 0 when den is 0.
func Percent(num, den int) int {
	if den == 0 {
		return 0
	}
	return int(math.Round(100 * float64(num) / float64(den)))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func inDay(ts, start time.Time) bool {
	return !ts.Before(start) && ts.Before(start.AddDate(0, 0, 1))
}
