package repository

import "errors"

var (
	// ErrAttemptAlreadyCompleted means the attempt was already submitted;
	// a second submission must be rejected.
	ErrAttemptAlreadyCompleted = errors.New("attempt is already completed")
)
