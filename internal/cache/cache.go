package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"league-advisor/internal/apperr"
)

const defaultRegion = "na1"

// CachedMatch is one previously retrieved match. Match outcomes are immutable
// historical facts, so a cached entry is never updated, only deduplicated.
type CachedMatch struct {
	ID        string    `json:"id"`
	Champion  string    `json:"champion"`
	Won       bool      `json:"won"`
	Enemies   []string  `json:"enemies"`
	Allies    []string  `json:"allies,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CachedAccount is an optional account summary stored alongside the matches
// so warm runs can skip the account and summoner fetches.
type CachedAccount struct {
	Puuid         string    `json:"puuid"`
	SummonerName  string    `json:"summoner_name"`
	SummonerLevel int       `json:"summoner_level"`
	CachedAt      time.Time `json:"cached_at"`
}

// MatchCache is the durable per-player match store. Matches stay sorted
// newest first after every mutation.
type MatchCache struct {
	Player      string         `json:"player"`
	Region      string         `json:"region"`
	LastUpdated time.Time      `json:"last_updated"`
	Matches     []CachedMatch  `json:"matches"`
	Account     *CachedAccount `json:"account,omitempty"`
}

func New(player, region string) *MatchCache {
	return &MatchCache{
		Player:      player,
		Region:      region,
		LastUpdated: time.Now(),
	}
}

// Path is the cache file for a player key, with filesystem-hostile
// characters replaced.
func Path(dir, player string) string {
	return filepath.Join(dir, sanitize(player)+".json")
}

func sanitize(player string) string {
	r := strings.NewReplacer("#", "_", "/", "_", "\\", "_", ":", "_", " ", "_")
	return r.Replace(player)
}

// Load reads the durable cache for a player. Absence or an unreadable file is
// not an error; a fresh empty cache with the default region is returned.
func Load(dir, player string) *MatchCache {
	data, err := os.ReadFile(Path(dir, player))
	if err != nil {
		return New(player, defaultRegion)
	}
	var c MatchCache
	if err := json.Unmarshal(data, &c); err != nil {
		return New(player, defaultRegion)
	}
	if c.Player == "" {
		c.Player = player
	}
	if c.Region == "" {
		c.Region = defaultRegion
	}
	return &c
}

// Save writes the whole cache, overwriting prior state.
func (c *MatchCache) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create cache dir %s: %v", apperr.ErrStorage, dir, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode match cache: %v", apperr.ErrStorage, err)
	}
	if err := os.WriteFile(Path(dir, c.Player), data, 0o644); err != nil {
		return fmt.Errorf("%w: write match cache: %v", apperr.ErrStorage, err)
	}
	return nil
}

// Merge appends matches whose IDs are not already cached, restores
// newest-first order and bumps LastUpdated. Merging the same batch twice
// yields no duplicate growth.
func (c *MatchCache) Merge(matches []CachedMatch) {
	existing := make(map[string]struct{}, len(c.Matches))
	for _, m := range c.Matches {
		existing[m.ID] = struct{}{}
	}
	for _, m := range matches {
		if _, ok := existing[m.ID]; ok {
			continue
		}
		existing[m.ID] = struct{}{}
		c.Matches = append(c.Matches, m)
	}
	sort.SliceStable(c.Matches, func(i, j int) bool {
		return c.Matches[i].Timestamp.After(c.Matches[j].Timestamp)
	})
	c.LastUpdated = time.Now()
}

// Recent returns the first n cached matches, fewer if the cache holds less.
func (c *MatchCache) Recent(n int) []CachedMatch {
	if n > len(c.Matches) {
		n = len(c.Matches)
	}
	out := make([]CachedMatch, n)
	copy(out, c.Matches[:n])
	return out
}

// ByID indexes the cached matches by match identifier.
func (c *MatchCache) ByID() map[string]CachedMatch {
	out := make(map[string]CachedMatch, len(c.Matches))
	for _, m := range c.Matches {
		out[m.ID] = m
	}
	return out
}

// IsStale reports whether the cache is older than maxAge.
func (c *MatchCache) IsStale(maxAge time.Duration) bool {
	return time.Since(c.LastUpdated) > maxAge
}

// SetAccount stores the account summary with the current fetch timestamp.
func (c *MatchCache) SetAccount(puuid, summonerName string, summonerLevel int) {
	c.Account = &CachedAccount{
		Puuid:         puuid,
		SummonerName:  summonerName,
		SummonerLevel: summonerLevel,
		CachedAt:      time.Now(),
	}
}

// FreshAccount returns the cached account summary if it is younger than ttl.
func (c *MatchCache) FreshAccount(ttl time.Duration) (*CachedAccount, bool) {
	if c.Account == nil || time.Since(c.Account.CachedAt) > ttl {
		return nil, false
	}
	return c.Account, true
}
