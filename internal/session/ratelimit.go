package session

import (
	"golang.org/x/time/rate"
)

// anomalyLimiter caps how often a full anomaly log (with hex dump) is
// emitted for unrecognized datagrams. A noisy or misbehaving camera can
// otherwise flood the log; the total count is still tracked via metrics
// regardless of whether a given instance was logged.
type anomalyLimiter struct {
	limiter *rate.Limiter
}

// anomalyLogsPerSecond bounds full anomaly log lines (hex dump included).
const anomalyLogsPerSecond = 5

func newAnomalyLimiter() anomalyLimiter {
	return anomalyLimiter{limiter: rate.NewLimiter(rate.Limit(anomalyLogsPerSecond), anomalyLogsPerSecond)}
}

// allow reports whether the next anomaly should be logged in full.
func (a anomalyLimiter) allow() bool { return a.limiter.Allow() }
