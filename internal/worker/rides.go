package worker

import (
	"context"
	"time"

	"ridetrace/internal/config"
)

// RideFlusher writes dirty rides to durable storage.
type RideFlusher interface {
	FlushRides(ctx context.Context) (int, error)
}

// RideFlushJob periodically persists rides held in memory.
func RideFlushJob(f RideFlusher) Job {
	return RideFlushJobEvery(f, config.RideFlushInterval)
}

// RideFlushJobEvery is RideFlushJob with a custom interval.
func RideFlushJobEvery(f RideFlusher, interval time.Duration) Job {
	return Job{
		Name:     "ride-flush",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := f.FlushRides(ctx)
			return err
		},
	}
}
