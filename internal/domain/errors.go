package domain

import "errors"

// Failure taxonomy of the pipeline. Callers classify with errors.Is; layers
// add context with fmt.Errorf("...: %w", err).
var (
	// ErrParseFailure means the generator returned a payload that could not
	// be decoded into a draft. Fatal for the run, nothing is persisted.
	ErrParseFailure = errors.New("generator payload parse failure")

	// ErrQualityRejected means the quality score fell below the configured
	// minimum. Fatal for the run, nothing is persisted.
	ErrQualityRejected = errors.New("quality score below minimum")

	// ErrContentTooLong means the fitting loop could not shrink the short
	// form under the caption limit. Recoverable: the post stays draft.
	ErrContentTooLong = errors.New("short form exceeds caption limit")

	// ErrTransportFailure wraps network or API errors from collaborators.
	// Recoverable: post status is unchanged on publish-time failures.
	ErrTransportFailure = errors.New("transport failure")

	// ErrDuplicateTopic marks a topic candidate too similar to recent
	// history. Soft: topic search retries, it is never fatal by itself.
	ErrDuplicateTopic = errors.New("topic duplicates recent history")
)
