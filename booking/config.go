package booking

import "time"

const (
	DefaultHoldWindow     = 10 * time.Minute
	DefaultReserveTimeout = 8 * time.Second
	DefaultMaxRetries     = 5
)

type Config struct {
	// HoldWindow is how long a pending reservation holds its seat.
	HoldWindow     time.Duration
	ReserveTimeout time.Duration
	// MaxRetries is the number of retries after a transient failure. Zero selects
	// DefaultMaxRetries.
	MaxRetries uint64
	Now        func() time.Time
}

func (c Config) withDefaults() Config {
	if c.HoldWindow <= 0 {
		c.HoldWindow = DefaultHoldWindow
	}
	if c.ReserveTimeout <= 0 {
		c.ReserveTimeout = DefaultReserveTimeout
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.Now == nil {
		c.Now = func() time.Time { return time.Now().UTC() }
	}
	return c
}

func (c Config) cutoff(now time.Time) time.Time {
	return now.Add(-c.HoldWindow)
}
