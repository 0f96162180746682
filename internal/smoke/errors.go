package smoke

import "errors"

// Sentinel kinds for smoke run failures.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrUnexpected   = errors.New("unexpected response")
	ErrThrottled    = errors.New("request throttled")
	ErrNoStartups   = errors.New("no startups registered")
	ErrPollTimeout  = errors.New("jobs did not finish in time")
	ErrVerification = errors.New("verification failed")
)
