package analysis

import (
	"math"
	"testing"
)

func TestRecordCountsEncounters(t *testing.T) {
	tr := NewTracker()
	tr.Record("Zed", true, 1.0)
	tr.Record("Zed", false, 0.5)
	tr.Record("Zed", true, 0.25)
	tr.Record("Yasuo", false, 1.0)

	zed, ok := tr.Champion("Zed")
	if !ok {
		t.Fatalf("expected Zed to be tracked")
	}
	if zed.TimesFaced != 3 {
		t.Fatalf("expected 3 encounters, got %d", zed.TimesFaced)
	}
	if zed.WinsAgainst != 2 {
		t.Fatalf("expected 2 wins, got %d", zed.WinsAgainst)
	}
	if zed.WinsAgainst > zed.TimesFaced {
		t.Fatalf("wins %d exceeds encounters %d", zed.WinsAgainst, zed.TimesFaced)
	}
	if math.Abs(zed.RecencyScore-1.75) > 1e-9 {
		t.Fatalf("expected recency 1.75, got %f", zed.RecencyScore)
	}

	if got := len(tr.Snapshot()); got != 2 {
		t.Fatalf("expected 2 tracked champions, got %d", got)
	}
}

func TestWinRate(t *testing.T) {
	var empty ChampionStat
	if empty.WinRate() != 0 {
		t.Fatalf("expected 0 win rate for zero encounters, got %f", empty.WinRate())
	}

	st := ChampionStat{TimesFaced: 4, WinsAgainst: 1}
	if math.Abs(st.WinRate()-0.25) > 1e-9 {
		t.Fatalf("expected 0.25 win rate, got %f", st.WinRate())
	}
}

func TestFrequencyGuardsZeroGames(t *testing.T) {
	st := ChampionStat{TimesFaced: 5}
	if st.Frequency(0) != 0 {
		t.Fatalf("expected 0 frequency with 0 total games, got %f", st.Frequency(0))
	}
	if math.Abs(st.Frequency(20)-25) > 1e-9 {
		t.Fatalf("expected 25%% frequency, got %f", st.Frequency(20))
	}
}

func TestTrackersAreIndependent(t *testing.T) {
	enemies := NewTracker()
	allies := NewTracker()
	enemies.Record("Zed", false, 1.0)
	allies.Record("Lulu", true, 1.0)

	if _, ok := allies.Champion("Zed"); ok {
		t.Fatalf("ally tracker leaked enemy entry")
	}
	if _, ok := enemies.Champion("Lulu"); ok {
		t.Fatalf("enemy tracker leaked ally entry")
	}
}
