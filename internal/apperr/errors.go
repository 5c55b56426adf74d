package apperr

import "errors"

// Sentinel error kinds for the analyzer. Callers classify with errors.Is;
// context is attached at the wrap site via fmt.Errorf("%w: ...").
var (
	ErrConfigMissing     = errors.New("configuration missing")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNoRankedGames     = errors.New("no ranked games found")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
	ErrStorage           = errors.New("storage failure")
)
