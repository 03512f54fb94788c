package service

import "errors"

var (
	// ErrInvalidTransition reports a status write that is not an edge of
	// the pipeline state machine. The row is left untouched.
	ErrInvalidTransition = errors.New("invalid article status transition")

	// ErrMissingPermalink reports an article that reached promotion
	// without the permalink the stage requires. The article is skipped
	// with a warning, never failing the batch.
	ErrMissingPermalink = errors.New("article has no permalink")
)
