package service

import "errors"

var (
	// ErrInvalidCredentials is returned when login email/password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTestHasNoQuestions is returned when starting an attempt on a test
	// without questions.
	ErrTestHasNoQuestions = errors.New("test has no questions yet")

	// ErrAttemptNotCompleted is returned when a result or feedback is
	// requested for an attempt that was not submitted yet.
	ErrAttemptNotCompleted = errors.New("attempt is not completed yet")

	// ErrFeedbackUnavailable wraps failures of the AI feedback integration.
	// Handlers surface it as a friendly 502 message.
	ErrFeedbackUnavailable = errors.New("unable to generate AI feedback right now")
)
