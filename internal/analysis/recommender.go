package analysis

import "sort"

// Fixed scoring policy: champions seen often that also beat the player are
// the most bannable threats; recency is a tie-breaking signal.
const (
	weightFrequency      = 0.4
	weightInverseWinRate = 0.5
	weightRecency        = 0.1
)

// BanRecommendation is a ranked suggestion to ban a champion.
type BanRecommendation struct {
	ChampionName string
	Score        float64
	Frequency    float64 // percent, 0-100
	WinRate      float64 // fraction, 0-1
	TimesFaced   int
}

// AllyAnalysis reports win-rate performance with a champion on the player's team.
type AllyAnalysis struct {
	ChampionName  string
	GamesTogether int
	WinsTogether  int
	WinRate       float64
}

// Score combines frequency, inverse win rate and normalized recency into a
// single ban-priority value.
func Score(stat ChampionStat, totalGames int, maxRecency float64) float64 {
	frequency := stat.Frequency(totalGames) / 100
	recency := 0.0
	if maxRecency > 0 {
		recency = stat.RecencyScore / maxRecency
	}
	return weightFrequency*frequency +
		weightInverseWinRate*(1-stat.WinRate()) +
		weightRecency*recency
}

// RankBans scores every stat and returns the topN highest, descending by
// score with stable ties. Empty input yields an empty result.
func RankBans(stats []ChampionStat, totalGames, topN int) []BanRecommendation {
	if len(stats) == 0 || topN <= 0 {
		return nil
	}

	maxRecency := 0.0
	for _, st := range stats {
		if st.RecencyScore > maxRecency {
			maxRecency = st.RecencyScore
		}
	}

	recs := make([]BanRecommendation, 0, len(stats))
	for _, st := range stats {
		recs = append(recs, BanRecommendation{
			ChampionName: st.Name,
			Score:        Score(st, totalGames, maxRecency),
			Frequency:    st.Frequency(totalGames),
			WinRate:      st.WinRate(),
			TimesFaced:   st.TimesFaced,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if topN < len(recs) {
		recs = recs[:topN]
	}
	return recs
}

// RankAllies keeps allies with at least minGamesTogether shared games and
// orders them ascending by win rate, worst synergy first, stable ties.
func RankAllies(stats []ChampionStat, minGamesTogether int) []AllyAnalysis {
	var out []AllyAnalysis
	for _, st := range stats {
		if st.TimesFaced < minGamesTogether {
			continue
		}
		out = append(out, AllyAnalysis{
			ChampionName:  st.Name,
			GamesTogether: st.TimesFaced,
			WinsTogether:  st.WinsAgainst,
			WinRate:       st.WinRate(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].WinRate < out[j].WinRate })
	return out
}
