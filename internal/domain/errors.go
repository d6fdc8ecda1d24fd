package domain

import (
	"errors"
	"fmt"
)

// FetchKind classifies how a feed fetch failed. Callers branch on the kind,
// never on message text.
type FetchKind string

const (
	FetchTimeout        FetchKind = "timeout"
	FetchUpstreamStatus FetchKind = "upstream_status"
	FetchTransport      FetchKind = "transport"
)

// FetchError is a classified failure retrieving a station feed.
type FetchError struct {
	Station    string
	Kind       FetchKind
	StatusCode int // set only for FetchUpstreamStatus
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchUpstreamStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.Station, e.StatusCode)
	case FetchTimeout:
		return fmt.Sprintf("fetch %s: request timeout", e.Station)
	default:
		return fmt.Sprintf("fetch %s: %v", e.Station, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrNoValidRows indicates a feed parsed structurally but yielded no usable
// data rows (missing header, or every row filtered by sentinels).
var ErrNoValidRows = errors.New("no valid data rows found")

// ErrDecodeUnavailable indicates the gridded model source could not be opened
// or lacked the expected variables. It always triggers a fallback chain and is
// never surfaced to callers as a hard failure.
var ErrDecodeUnavailable = errors.New("model source unavailable")

// ErrUnknownStation indicates a caller-supplied station id is not in the
// registry.
var ErrUnknownStation = errors.New("unknown station")

// ErrorKind maps an error to the tag recorded on an error-tagged
// StationResult: a fetch kind, "empty_result", or "internal".
func ErrorKind(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	if errors.Is(err, ErrNoValidRows) {
		return "empty_result"
	}
	return "internal"
}
