package worker

import "time"

// Config controls the payout maturity worker loop.
type Config struct {
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	return c
}
