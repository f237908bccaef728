package espn

import (
	"errors"
	"fmt"
)

// Failure kinds. A *FetchError always unwraps to exactly one of these, so
// callers can branch with errors.Is.
var (
	ErrNoLeagueID        = errors.New("league id not configured")
	ErrUnsupportedSeason = errors.New("season not supported")
	ErrUnauthorized      = errors.New("credentials rejected")
	ErrNotFound          = errors.New("league not found")
	ErrMalformed         = errors.New("malformed response")
	ErrTransport         = errors.New("transport failure")
)

// FetchError is the single error type returned by Client.Fetch.
type FetchError struct {
	Op         string // "league" or "activity"
	Kind       error
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := "espn"
	if e.Op != "" {
		msg += " " + e.Op
	}
	msg += ": " + e.Kind.Error()
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// AsFetchError unwraps err into a *FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func fail(op string, kind error, status int, err error) *FetchError {
	return &FetchError{Op: op, Kind: kind, StatusCode: status, Err: err}
}
