package weather

import (
	"sort"
	"time"
)

// SortDailyRecords returns a new slice sorted ascending by date key. The sort
// is stable: records sharing a date keep their arrival order. The input is
// not modified.
func SortDailyRecords(records []DailyRecord) []DailyRecord {
	out := make([]DailyRecord, len(records))
	copy(out, records)

	// Date keys are YYYY-MM-DD, so lexicographic order is chronological.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})
	return out
}

// SortObservations splits points into those with a derivable canonical
// instant and those without, and returns the former sorted ascending and
// stable. Unorderable points are returned separately so the caller can flag
// them instead of silently dropping data.
func SortObservations(points []HistoricalObservation) (ordered, unorderable []HistoricalObservation) {
	type keyed struct {
		obs HistoricalObservation
		ts  time.Time
	}

	sortable := make([]keyed, 0, len(points))
	for _, p := range points {
		ts, ok := p.CanonicalTime()
		if !ok {
			unorderable = append(unorderable, p)
			continue
		}
		sortable = append(sortable, keyed{obs: p, ts: ts})
	}

	sort.SliceStable(sortable, func(i, j int) bool {
		return sortable[i].ts.Before(sortable[j].ts)
	})

	ordered = make([]HistoricalObservation, 0, len(sortable))
	for _, k := range sortable {
		ordered = append(ordered, k.obs)
	}
	return ordered, unorderable
}

// AggregateHourly buckets historical observations by hour and derives the
// min/avg/max temperature per bucket from the measurement group matching the
// requested unit system. Points without a canonical instant or without an
// average temperature are skipped. The result is ordered by hour ascending.
func AggregateHourly(points []HistoricalObservation, units Units) []HourlyTemperature {
	type acc struct {
		min, max, sum float64
		n             int
	}
	buckets := make(map[time.Time]*acc)

	for _, p := range points {
		ts, ok := p.CanonicalTime()
		if !ok {
			continue
		}
		g := p.Group(units)
		if g == nil || g.TempAvg == nil {
			continue
		}

		low := *g.TempAvg
		if g.TempLow != nil {
			low = *g.TempLow
		}
		high := *g.TempAvg
		if g.TempHigh != nil {
			high = *g.TempHigh
		}

		hour := ts.Truncate(time.Hour)
		a, ok := buckets[hour]
		if !ok {
			a = &acc{min: low, max: high}
			buckets[hour] = a
		}
		if low < a.min {
			a.min = low
		}
		if high > a.max {
			a.max = high
		}
		a.sum += *g.TempAvg
		a.n++
	}

	hours := make([]time.Time, 0, len(buckets))
	for h := range buckets {
		hours = append(hours, h)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	out := make([]HourlyTemperature, 0, len(hours))
	for _, h := range hours {
		a := buckets[h]
		out = append(out, HourlyTemperature{
			Hour:    h,
			TempMin: a.min,
			TempAvg: a.sum / float64(a.n),
			TempMax: a.max,
			Samples: a.n,
		})
	}
	return out
}
