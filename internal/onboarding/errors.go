package onboarding

import "errors"

var (
	ErrMissingField    = errors.New("missing required field")
	ErrMalformedBody   = errors.New("malformed request body")
	ErrMalformedEvent  = errors.New("malformed event")
	ErrNotFound        = errors.New("no account mapped for row")
	ErrUpstreamFailure = errors.New("upstream failure")
)
