package qa

import "errors"

var (
	// ErrContextMissing: the report does not exist or has no analyzable
	// context blob. Raised at init time before any row is written.
	ErrContextMissing = errors.New("qa: report context missing")

	// ErrSessionNotFound: a stream was requested for an unknown turn id.
	ErrSessionNotFound = errors.New("qa: session not found")

	// ErrQuestionEmpty: init rejected a blank question.
	ErrQuestionEmpty = errors.New("qa: question must not be empty")

	// ErrTurnConsumed: generation was requested for a turn that already left
	// PENDING. A turn is answered at most once; re-streaming a terminal turn
	// must not re-run the model.
	ErrTurnConsumed = errors.New("qa: turn already consumed")
)
