package core

import (
	"fmt"
	"math"
	"time"
)

// TimeRange selects the bucketing window for charts and insights. The values
// are the Indonesian labels the product has always used on the wire.
type TimeRange string

const (
	RangeDaily   TimeRange = "harian"
	RangeWeekly  TimeRange = "mingguan"
	RangeMonthly TimeRange = "bulanan"
	RangeYearly  TimeRange = "tahunan"
)

func (r TimeRange) Validate() error {
	switch r {
	case RangeDaily, RangeWeekly, RangeMonthly, RangeYearly:
		return nil
	default:
		return ErrInvalidTimeRange
	}
}

// DateTotal is a per-day aggregation row.
type DateTotal struct {
	Date  Date
	Total Money
}

// BucketTotal is one chart bar: a human label and its total.
type BucketTotal struct {
	Label string `json:"label"`
	Total Money  `json:"total"`
}

// CategoryTotal is one row of a per-category aggregation.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Money  `json:"total"`
}

// Insight compares the current period against the immediately preceding one.
type Insight struct {
	PercentageChange int     `json:"percentageChange"`
	TopCategory      *string `json:"topCategory"`
	CurrentTotal     Money   `json:"currentTotal"`
}

var (
	shortDays   = [...]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"}
	shortMonths = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}
)

// ChartWindow returns the inclusive date span a chart range covers, computed
// from an explicit reference time so results are reproducible in tests.
func ChartWindow(r TimeRange, ref time.Time) (from, to Date) {
	today := DateOf(ref)
	switch r {
	case RangeDaily:
		return today.AddDays(-6), today
	case RangeWeekly:
		return today.AddDays(-27), today
	case RangeMonthly:
		first := NewDate(today.Year(), int(today.Month()), 1)
		return Date{Time: first.AddDate(0, -11, 0)}, today
	case RangeYearly:
		return NewDate(today.Year(), 1, 1), today
	default:
		return today, today
	}
}

// BuildChartBuckets groups per-day totals into the requested range's buckets,
// zero-filling buckets with no data. Daily buckets are the last 7 UTC days,
// weekly the last 4 ISO weeks, monthly the last 12 calendar months, yearly a
// single bucket for the reference year.
func BuildChartBuckets(r TimeRange, ref time.Time, days []DateTotal) []BucketTotal {
	today := DateOf(ref)
	switch r {
	case RangeDaily:
		byDay := make(map[string]int64, len(days))
		for _, d := range days {
			byDay[d.Date.String()] += d.Total.Cents
		}
		out := make([]BucketTotal, 0, 7)
		for i := 6; i >= 0; i-- {
			day := today.AddDays(-i)
			out = append(out, BucketTotal{
				Label: fmt.Sprintf("%s %d", shortDays[int(day.Weekday())], day.Day()),
				Total: Money{Cents: byDay[day.String()]},
			})
		}
		return out

	case RangeWeekly:
		byWeek := make(map[string]int64, len(days))
		for _, d := range days {
			byWeek[isoWeekKey(d.Date)] += d.Total.Cents
		}
		out := make([]BucketTotal, 0, 4)
		for i := 3; i >= 0; i-- {
			week := today.AddDays(-i * 7)
			out = append(out, BucketTotal{
				Label: fmt.Sprintf("Minggu %d", 4-i),
				Total: Money{Cents: byWeek[isoWeekKey(week)]},
			})
		}
		return out

	case RangeMonthly:
		byMonth := make(map[string]int64, len(days))
		for _, d := range days {
			byMonth[d.Date.Format("2006-01")] += d.Total.Cents
		}
		first := NewDate(today.Year(), int(today.Month()), 1)
		start := first.AddDate(0, -11, 0)
		out := make([]BucketTotal, 0, 12)
		for i := 0; i < 12; i++ {
			month := start.AddDate(0, i, 0)
			out = append(out, BucketTotal{
				Label: fmt.Sprintf("%s %d", shortMonths[int(month.Month())-1], month.Year()),
				Total: Money{Cents: byMonth[month.Format("2006-01")]},
			})
		}
		return out

	case RangeYearly:
		var total int64
		for _, d := range days {
			if d.Date.Year() == today.Year() {
				total += d.Total.Cents
			}
		}
		return []BucketTotal{{Label: fmt.Sprintf("%d", today.Year()), Total: Money{Cents: total}}}
	}
	return nil
}

func isoWeekKey(d Date) string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}

// InsightPeriods returns the current period for a range and the contiguous,
// non-overlapping, equal-length period immediately before it. Weeks start on
// Sunday. Bounds are inclusive calendar dates.
func InsightPeriods(r TimeRange, ref time.Time) (curFrom, curTo, prevFrom, prevTo Date) {
	today := DateOf(ref)
	switch r {
	case RangeDaily:
		return today, today, today.AddDays(-1), today.AddDays(-1)
	case RangeWeekly:
		weekStart := today.AddDays(-int(today.Weekday()))
		return weekStart, weekStart.AddDays(6), weekStart.AddDays(-7), weekStart.AddDays(-1)
	case RangeMonthly:
		first := NewDate(today.Year(), int(today.Month()), 1)
		last := Date{Time: first.AddDate(0, 1, -1)}
		prevFirst := Date{Time: first.AddDate(0, -1, 0)}
		return first, last, prevFirst, first.AddDays(-1)
	case RangeYearly:
		first := NewDate(today.Year(), 1, 1)
		return first, NewDate(today.Year(), 12, 31),
			NewDate(today.Year()-1, 1, 1), NewDate(today.Year()-1, 12, 31)
	default:
		return today, today, today, today
	}
}

// PercentChange computes the period-over-period change. A previous total of
// zero with current spending reports the fixed 100 sentinel rather than a
// true infinite ratio; zero against zero is zero.
func PercentChange(current, previous Money) int {
	switch {
	case previous.Cents > 0:
		return int(math.Round(float64(current.Cents-previous.Cents) / float64(previous.Cents) * 100))
	case current.Cents > 0:
		return 100
	default:
		return 0
	}
}
