package domain

import "errors"

var (
	// ErrTransport is returned when the record store cannot be reached.
	// Retryable by the caller; the adapters retry transient cases themselves.
	ErrTransport = errors.New("record store unreachable")

	// ErrQuery is returned when the store rejects a predicate. Not retryable
	// without changing the query.
	ErrQuery = errors.New("record store rejected query")

	// ErrMatchingUnavailable is returned when an affinity run could not reach
	// its data. Never converted to an empty result.
	ErrMatchingUnavailable = errors.New("affinity matching unavailable")

	// ErrSourceUnavailable is returned when an aggregate view could not reach
	// its data, so "no rows" stays distinguishable from "store down".
	ErrSourceUnavailable = errors.New("data source unavailable")

	// ErrDraftUnavailable is returned when the message-drafting service fails.
	// The draft stays empty; no canned message is substituted.
	ErrDraftUnavailable = errors.New("message drafting unavailable")

	// ErrStaleRun is returned when a newer run superseded this one before its
	// result landed. The stale result must be discarded.
	ErrStaleRun = errors.New("run superseded by a newer request")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")
)
