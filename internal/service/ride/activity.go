package ride

import (
	"fmt"
	"strings"
	"time"

	"ridetrace/internal/model"
)

// BucketMinutes is the width of one activity bucket.
const BucketMinutes = 10

// Buckets is the number of activity buckets in a day.
const Buckets = 24 * 60 / BucketMinutes

// Activity counts rides in progress per time-of-day bucket.
type Activity struct {
	Counts  [Buckets]int
	Rides   int
	Skipped int
}

// clockMinutes parses a receipt time such as "8:15 am" into minutes after midnight.
func clockMinutes(s string) (int, error) {
	t, err := time.Parse("3:04 pm", strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("bad ride time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ActiveRiding counts, for every bucket, the rides active during it. A ride
// occupies the buckets from its start rounded down through its end rounded up
// to the next boundary, wrapping past midnight. Rides without parseable
// start and end times are skipped.
func ActiveRiding(rides []*model.Ride) Activity {
	var a Activity
	for _, r := range rides {
		if r == nil {
			continue
		}
		start, errS := clockMinutes(r.StartTime)
		end, errE := clockMinutes(r.EndTime)
		if errS != nil || errE != nil {
			a.Skipped++
			continue
		}
		first := start / BucketMinutes
		last := end/BucketMinutes + 1
		if last <= first {
			last += Buckets
		}
		for b := first; b < last; b++ {
			a.Counts[b%Buckets]++
		}
		a.Rides++
	}
	return a
}

// Label returns the "HH:MM" start of bucket b.
func Label(b int) string {
	m := b * BucketMinutes
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Peak returns the first bucket with the highest count.
func (a Activity) Peak() (bucket, count int) {
	for b, c := range a.Counts {
		if c > count {
			bucket, count = b, c
		}
	}
	return bucket, count
}
