package constants

import "time"

// Riot development key quotas. Both windows gate every outbound call.
const (
	ShortWindowMax      = 20
	ShortWindowDuration = 1 * time.Second
	LongWindowMax       = 100
	LongWindowDuration  = 2 * time.Minute
)

const (
	AccountCacheTTL  = 24 * time.Hour
	MatchCacheMaxAge = 30 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	RunTimeout         = 5 * time.Minute
	RequestDelay       = 150 * time.Millisecond
	RetryBaseDelay     = 2 * time.Second
	MaxRetries         = 3
)

const (
	MaxMatchesPerRun  = 100
	DefaultMatchCount = 20
	DefaultTopBans    = 5
	MinGamesTogether  = 2
)
