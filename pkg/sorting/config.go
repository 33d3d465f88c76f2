package sorting

import "time"

// Config holds sorting thresholds and timings.
type Config struct {
	// StopThreshold is the distance in pixels below which the nearest
	// object is considered reached. Comparison is strict.
	StopThreshold float64

	// DebounceWindow suppresses re-dispatching the same class until this
	// much time has passed since the last completed dispatch.
	DebounceWindow time.Duration

	// SortingDelay is how long the robot holds between the belt command
	// and resuming forward motion.
	SortingDelay time.Duration
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		StopThreshold:  100,
		DebounceWindow: 5 * time.Second,
		SortingDelay:   3 * time.Second,
	}
}
