package helpers

import (
	"time"

	"golang.org/x/time/rate"
)

// OnceAMinute throttles repetitive log lines.
var OnceAMinute = Every(time.Minute)

// Every returns a rate.Sometimes that runs at most once per interval. A
// non-positive interval runs on every call.
func Every(interval time.Duration) *rate.Sometimes {
	if interval <= 0 {
		return &rate.Sometimes{Every: 1}
	}
	return &rate.Sometimes{Interval: interval}
}
