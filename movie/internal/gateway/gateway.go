package gateway

import "errors"

// ErrNotFound is returned when the catalog has no entry for an id.
var ErrNotFound = errors.New("not found")

// ErrUnavailable is returned when the catalog call fails in transport,
// answers with a non-success status or with an undecodable body.
var ErrUnavailable = errors.New("catalog unavailable")

// ErrMalformedMetadata is returned when a catalog payload lacks required fields.
var ErrMalformedMetadata = errors.New("malformed catalog metadata")
