package models

import "time"

const (
	// NoSize marks an item whose size could not be determined from any
	// snapshot field or modifier. It participates in canonical keys so
	// unsized items still aggregate with each other.
	NoSize = "no-size"

	// SizeUrban is the fixed size sentinel for urban bowls. Urban bowls
	// never take a size from a size-selector modifier.
	SizeUrban = "urban"

	// DefaultRiceSubstitution applies to urban bowls that carry no
	// explicit rice substitution modifier.
	DefaultRiceSubstitution = "White Rice"
)

const (
	DefaultBatchCapacity = 5
	MinBatchCapacity     = 1
	MaxBatchCapacity     = 20
)

// Urgency thresholds, in minutes of wait time for the oldest
// non-completed order in a batch.
const (
	UrgencyWarningMinutes  = 10
	UrgencyCriticalMinutes = 15
)

const (
	// CompletedRetention is how long a completed order stays visible in
	// its batch before cleanup purges it.
	CompletedRetention = 30 * time.Second

	// NewOrderHighlight is how long an order keeps its "new" marker
	// after first being assigned to a batch.
	NewOrderHighlight = 30 * time.Second
)

const (
	DefaultPollInterval     = 10 * time.Second
	DefaultDebounceInterval = 500 * time.Millisecond
	DefaultCleanupInterval  = 10 * time.Second
	DefaultSourceRetries    = 3
	DefaultSourceBackoff    = 250 * time.Millisecond
)
