package analysis

// ChampionStat accumulates counters for a single champion across a batch of
// matches. WinsAgainst never exceeds TimesFaced; RecencyScore only grows.
type ChampionStat struct {
	Name         string
	TimesFaced   int
	WinsAgainst  int
	RecencyScore float64
}

// WinRate is the player's win rate against (or alongside) this champion.
func (s ChampionStat) WinRate() float64 {
	if s.TimesFaced == 0 {
		return 0
	}
	return float64(s.WinsAgainst) / float64(s.TimesFaced)
}

// Frequency is how often the champion appeared, as a percentage of totalGames.
func (s ChampionStat) Frequency(totalGames int) float64 {
	if totalGames == 0 {
		return 0
	}
	return float64(s.TimesFaced) / float64(totalGames) * 100
}

// Tracker accumulates per-champion encounter stats. One instance tracks
// enemies, an independent instance tracks allies; the mechanism is identical.
type Tracker struct {
	stats map[string]*ChampionStat
}

func NewTracker() *Tracker {
	return &Tracker{stats: make(map[string]*ChampionStat)}
}

// Record registers one encounter with the named champion. recencyWeight must
// be supplied by the caller as a decreasing function of how far back in the
// batch the match sits, so the tracker stays independent of fetch order.
func (t *Tracker) Record(name string, won bool, recencyWeight float64) {
	st, ok := t.stats[name]
	if !ok {
		st = &ChampionStat{Name: name}
		t.stats[name] = st
	}
	st.TimesFaced++
	if won {
		st.WinsAgainst++
	}
	st.RecencyScore += recencyWeight
}

// Snapshot returns the accumulated stats in unspecified order. Consumers
// that need an ordering must sort explicitly.
func (t *Tracker) Snapshot() []ChampionStat {
	out := make([]ChampionStat, 0, len(t.stats))
	for _, st := range t.stats {
		out = append(out, *st)
	}
	return out
}

// Champion looks up a single champion's accumulated stat.
func (t *Tracker) Champion(name string) (ChampionStat, bool) {
	st, ok := t.stats[name]
	if !ok {
		return ChampionStat{}, false
	}
	return *st, true
}
