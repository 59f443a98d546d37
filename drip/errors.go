package drip

import "errors"

// Error taxonomy for the scheduling engine. Store and transaction
// failures are not sentinels; they come back wrapped with %w so callers
// can unwrap the driver error and treat them as retryable.
var (
	// ErrInvalidInput flags missing or malformed request data (4xx-equivalent)
	ErrInvalidInput = errors.New("drip: invalid input")

	// ErrInvalidDelaySpec flags a bad step configuration. Seeded templates
	// never trigger it; seeing it means the step row was corrupted.
	ErrInvalidDelaySpec = errors.New("drip: invalid delay spec")

	// ErrInvalidChannel flags an explicit channel "none" on a reminder
	// request; callers should skip the call instead of passing none.
	ErrInvalidChannel = errors.New("drip: invalid channel")

	// ErrInvalidTransition flags a state-machine violation, e.g. a late or
	// duplicate completion callback on a job that is no longer processing.
	ErrInvalidTransition = errors.New("drip: invalid status transition")

	// ErrAlreadySeeded is returned when a company that already has
	// sequences asks to be seeded again.
	ErrAlreadySeeded = errors.New("drip: company already has sequences")
)
