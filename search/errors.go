package search

import "errors"

var (
	// ErrNotFound indicates the query matched no collection
	ErrNotFound = errors.New("collection not found")

	// ErrSessionNotFound indicates an unknown or expired session id
	ErrSessionNotFound = errors.New("session not found")

	// ErrSuperseded indicates a session was replaced by a newer search while
	// one of its requests was still in flight
	ErrSuperseded = errors.New("search superseded by a newer one")
)
