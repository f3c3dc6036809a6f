package worker

import "errors"

var (
	// ErrUnknownCron is returned when no cron is registered under a name
	ErrUnknownCron = errors.New("unknown cron")

	// ErrUnknownLambda is returned when no lambda is registered under a name
	ErrUnknownLambda = errors.New("unknown lambda")

	// ErrDuplicateTask is returned when a name is registered twice
	ErrDuplicateTask = errors.New("task already registered")
)
