package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrNoChunks           = errors.New("no valid chunks")
	ErrBadChunkEnvelope   = errors.New("unrecognized chunk envelope")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrEmptyQuery         = errors.New("query is empty")
)
