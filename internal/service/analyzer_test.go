package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"league-advisor/internal/apperr"
	"league-advisor/internal/budget"
	"league-advisor/internal/cache"
	"league-advisor/internal/config"
	"league-advisor/internal/constants"
	"league-advisor/internal/riot"
)

type fakeRiot struct {
	ids     []string
	matches map[string]*riot.Match

	accountCalls int
	idCalls      int
	matchCalls   int
}

func (f *fakeRiot) GetAccount(ctx context.Context, gameName, tagLine string) (*riot.Account, error) {
	f.accountCalls++
	return &riot.Account{Puuid: "puuid-0", GameName: gameName, TagLine: tagLine}, nil
}

func (f *fakeRiot) GetSummoner(ctx context.Context, puuid string) (*riot.Summoner, error) {
	return &riot.Summoner{Puuid: puuid, SummonerLevel: 120}, nil
}

func (f *fakeRiot) GetLeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntry, error) {
	return []riot.LeagueEntry{{QueueType: "RANKED_SOLO_5x5", Tier: "GOLD", Rank: "II", LeaguePoints: 40, Wins: 30, Losses: 28}}, nil
}

func (f *fakeRiot) GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	f.idCalls++
	if count < len(f.ids) {
		return f.ids[:count], nil
	}
	return f.ids, nil
}

func (f *fakeRiot) GetMatch(ctx context.Context, matchID string) (*riot.Match, error) {
	f.matchCalls++
	m, ok := f.matches[matchID]
	if !ok {
		return nil, errors.New("unknown match")
	}
	return m, nil
}

func fakeMatch(id string, won bool, end time.Time) *riot.Match {
	ours := riot.Participant{Puuid: "puuid-0", ChampionName: "Ahri", TeamID: 100, Win: won}
	ally := riot.Participant{Puuid: "puuid-1", ChampionName: "Lulu", TeamID: 100, Win: won}
	enemy1 := riot.Participant{Puuid: "puuid-2", ChampionName: "Zed", TeamID: 200, Win: !won}
	enemy2 := riot.Participant{Puuid: "puuid-3", ChampionName: "Yasuo", TeamID: 200, Win: !won}
	return &riot.Match{
		Metadata: riot.MatchMetadata{MatchID: id},
		Info: riot.MatchInfo{
			GameEndTimestamp: end.UnixMilli(),
			Participants:     []riot.Participant{ours, ally, enemy1, enemy2},
		},
	}
}

func newTestAnalyzer(t *testing.T, fake *fakeRiot) (*Analyzer, *config.Config) {
	t.Helper()
	cfg := &config.Config{RiotAPIKey: "RGAPI-test", Region: "na1", CacheDir: t.TempDir()}
	a := NewAnalyzer(fake, cfg, zerolog.Nop())
	a.sleep = func(time.Duration) {}
	return a, cfg
}

func TestRunAnalyzesAndCaches(t *testing.T) {
	now := time.Now()
	fake := &fakeRiot{
		ids: []string{"m1", "m2"},
		matches: map[string]*riot.Match{
			"m1": fakeMatch("m1", true, now),
			"m2": fakeMatch("m2", false, now.Add(-time.Hour)),
		},
	}
	a, cfg := newTestAnalyzer(t, fake)

	report, err := a.Run(context.Background(), Request{
		GameName: "Foo", TagLine: "NA1", Matches: 2, TopN: 3, IncludeAllies: true,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if report.AnalyzedGames != 2 || len(report.History) != 2 {
		t.Fatalf("expected 2 analyzed games, got %+v", report)
	}
	if report.Fetched != 2 || report.FromCache != 0 {
		t.Fatalf("expected both matches fetched, got fetched=%d cached=%d", report.Fetched, report.FromCache)
	}
	if len(report.Bans) == 0 || len(report.Bans) > 3 {
		t.Fatalf("unexpected ban count: %d", len(report.Bans))
	}
	if report.SummonerLevel != 120 {
		t.Fatalf("expected summoner level 120, got %d", report.SummonerLevel)
	}
	if report.Rank == "" {
		t.Fatalf("expected rank context line")
	}
	if len(report.Allies) != 1 || report.Allies[0].ChampionName != "Lulu" {
		t.Fatalf("expected Lulu ally analysis, got %+v", report.Allies)
	}

	// account + summoner + league + ids + 2 matches
	if report.Budget.LongUsed != 6 {
		t.Fatalf("expected 6 requests recorded, got %d", report.Budget.LongUsed)
	}

	mc := cache.Load(cfg.CacheDir, "Foo#NA1")
	if len(mc.Matches) != 2 {
		t.Fatalf("expected 2 cached matches on disk, got %d", len(mc.Matches))
	}
	if mc.Matches[0].ID != "m1" {
		t.Fatalf("expected newest match first in cache, got %s", mc.Matches[0].ID)
	}
	if _, ok := mc.FreshAccount(constants.AccountCacheTTL); !ok {
		t.Fatalf("expected account summary cached")
	}
}

func TestRunReplaysFromCache(t *testing.T) {
	now := time.Now()
	fake := &fakeRiot{
		ids: []string{"m1", "m2"},
		matches: map[string]*riot.Match{
			"m1": fakeMatch("m1", true, now),
			"m2": fakeMatch("m2", false, now.Add(-time.Hour)),
		},
	}
	a, cfg := newTestAnalyzer(t, fake)

	req := Request{GameName: "Foo", TagLine: "NA1", Matches: 2}
	if _, err := a.Run(context.Background(), req); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	report, err := a.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if fake.matchCalls != 2 {
		t.Fatalf("expected match details replayed from cache, got %d fetches", fake.matchCalls)
	}
	if fake.accountCalls != 1 {
		t.Fatalf("expected cached account summary reused, got %d fetches", fake.accountCalls)
	}
	if fake.idCalls != 2 {
		t.Fatalf("expected id listing refreshed each run, got %d", fake.idCalls)
	}
	if report.FromCache != 2 || report.Fetched != 0 {
		t.Fatalf("expected full replay, got fetched=%d cached=%d", report.Fetched, report.FromCache)
	}

	// merge stays idempotent on disk
	mc := cache.Load(cfg.CacheDir, "Foo#NA1")
	if len(mc.Matches) != 2 {
		t.Fatalf("expected no duplicate growth, got %d matches", len(mc.Matches))
	}
}

func TestRunRefreshBypassesCache(t *testing.T) {
	now := time.Now()
	fake := &fakeRiot{
		ids: []string{"m1"},
		matches: map[string]*riot.Match{
			"m1": fakeMatch("m1", true, now),
		},
	}
	a, _ := newTestAnalyzer(t, fake)

	req := Request{GameName: "Foo", TagLine: "NA1", Matches: 1}
	if _, err := a.Run(context.Background(), req); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	req.Refresh = true
	if _, err := a.Run(context.Background(), req); err != nil {
		t.Fatalf("refresh run failed: %v", err)
	}
	if fake.matchCalls != 2 {
		t.Fatalf("expected refresh to refetch details, got %d fetches", fake.matchCalls)
	}
	if fake.accountCalls != 2 {
		t.Fatalf("expected refresh to refetch account, got %d fetches", fake.accountCalls)
	}
}

func TestRunNoRankedGames(t *testing.T) {
	fake := &fakeRiot{ids: nil}
	a, _ := newTestAnalyzer(t, fake)

	_, err := a.Run(context.Background(), Request{GameName: "Foo", TagLine: "NA1", Matches: 5})
	if err == nil {
		t.Fatalf("expected error for empty match history")
	}
	if !errors.Is(err, apperr.ErrNoRankedGames) {
		t.Fatalf("expected no-ranked-games kind, got %v", err)
	}
}

func TestRunOffsetBeyondHistory(t *testing.T) {
	now := time.Now()
	fake := &fakeRiot{
		ids:     []string{"m1"},
		matches: map[string]*riot.Match{"m1": fakeMatch("m1", true, now)},
	}
	a, _ := newTestAnalyzer(t, fake)

	_, err := a.Run(context.Background(), Request{GameName: "Foo", TagLine: "NA1", Matches: 5, Offset: 10})
	if !errors.Is(err, apperr.ErrNoRankedGames) {
		t.Fatalf("expected no-ranked-games kind for exhausted offset, got %v", err)
	}
}

func TestRunBlockedByExhaustedBudget(t *testing.T) {
	fake := &fakeRiot{ids: []string{"m1"}}
	a, cfg := newTestAnalyzer(t, fake)

	b := budget.New("Foo#NA1")
	b.Long.Count = constants.LongWindowMax
	if err := b.Save(cfg.CacheDir); err != nil {
		t.Fatalf("seed budget failed: %v", err)
	}

	_, err := a.Run(context.Background(), Request{GameName: "Foo", TagLine: "NA1", Matches: 1})
	if err == nil {
		t.Fatalf("expected rate-limited error")
	}
	if !errors.Is(err, apperr.ErrRateLimited) {
		t.Fatalf("expected rate-limited kind, got %v", err)
	}
	if fake.accountCalls != 0 {
		t.Fatalf("expected no outbound call when budget exhausted, got %d", fake.accountCalls)
	}
}

func TestStatusReadsPersistedState(t *testing.T) {
	now := time.Now()
	fake := &fakeRiot{
		ids:     []string{"m1"},
		matches: map[string]*riot.Match{"m1": fakeMatch("m1", true, now)},
	}
	a, _ := newTestAnalyzer(t, fake)

	if _, err := a.Run(context.Background(), Request{GameName: "Foo", TagLine: "NA1", Matches: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	st := a.Status("Foo#NA1")
	if st.CachedMatches != 1 {
		t.Fatalf("expected 1 cached match, got %d", st.CachedMatches)
	}
	if st.Budget.LongUsed == 0 {
		t.Fatalf("expected persisted budget usage")
	}
	if st.Stale {
		t.Fatalf("expected freshly written cache not to be stale")
	}
}
