package service

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"league-advisor/internal/analysis"
	"league-advisor/internal/apperr"
	"league-advisor/internal/budget"
	"league-advisor/internal/cache"
	"league-advisor/internal/config"
	"league-advisor/internal/constants"
	"league-advisor/internal/domain"
	"league-advisor/internal/riot"
)

// RiotAPI is the collaborator surface the analyzer consumes. Transport,
// retry and backoff live behind it.
type RiotAPI interface {
	GetAccount(ctx context.Context, gameName, tagLine string) (*riot.Account, error)
	GetSummoner(ctx context.Context, puuid string) (*riot.Summoner, error)
	GetLeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntry, error)
	GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.Match, error)
}

// Request describes one analysis run.
type Request struct {
	GameName      string
	TagLine       string
	Region        string
	TopN          int
	Matches       int
	Offset        int
	Refresh       bool
	IncludeAllies bool

	// Progress, when set, is called after each match is processed.
	Progress func(done, total int)
}

// Report is the full read-only result of one analysis run.
type Report struct {
	Player        string
	Region        string
	SummonerLevel int
	Rank          string
	AnalyzedGames int
	Fetched       int
	FromCache     int
	History       []domain.MatchResult
	Bans          []analysis.BanRecommendation
	Allies        []analysis.AllyAnalysis
	Budget        domain.BudgetStatus
}

// StatusReport is the read-only persisted state for a player, shown without
// spending any requests.
type StatusReport struct {
	Player        string
	Budget        domain.BudgetStatus
	CachedMatches int
	LastUpdated   time.Time
	Stale         bool
	Recent        []cache.CachedMatch
}

type Analyzer struct {
	riot   RiotAPI
	cfg    *config.Config
	logger zerolog.Logger
	sleep  func(time.Duration)
}

func NewAnalyzer(riotAPI RiotAPI, cfg *config.Config, logger zerolog.Logger) *Analyzer {
	return &Analyzer{riot: riotAPI, cfg: cfg, logger: logger, sleep: time.Sleep}
}

// Run executes one full analysis: resolve the player, list match IDs, fetch
// what the cache does not already hold, feed the trackers, merge the cache
// and rank recommendations. Match fetching is all-or-nothing; previously
// cached matches stay intact on disk regardless.
func (a *Analyzer) Run(ctx context.Context, req Request) (*Report, error) {
	playerKey := req.GameName + "#" + req.TagLine
	region := a.cfg.Region
	if req.Region != "" {
		region = req.Region
	}

	runID, err := gonanoid.New()
	if err != nil {
		runID = "unknown"
	}
	logger := a.logger.With().Str("run_id", runID).Str("player", playerKey).Logger()
	logger.Info().Str("region", region).Int("matches", req.Matches).Int("offset", req.Offset).
		Bool("refresh", req.Refresh).Msg("starting analysis run")

	mc := cache.Load(a.cfg.CacheDir, playerKey)
	bd := budget.Load(a.cfg.CacheDir, playerKey)
	logger.Debug().Int("cached_matches", len(mc.Matches)).
		Bool("cache_stale", mc.IsStale(constants.MatchCacheMaxAge)).
		Msg("durable state loaded")

	puuid, summonerName, summonerLevel, bd, err := a.resolveAccount(ctx, logger, req, mc, bd)
	if err != nil {
		return nil, err
	}

	rank := a.fetchRank(ctx, logger, bd, puuid)

	needed := req.Matches
	if needed <= 0 {
		needed = constants.DefaultMatchCount
	}
	if needed > constants.MaxMatchesPerRun {
		needed = constants.MaxMatchesPerRun
	}
	listCount := needed + req.Offset
	if listCount > constants.MaxMatchesPerRun {
		listCount = constants.MaxMatchesPerRun
	}

	bd, err = a.gate(ctx, logger, bd, playerKey)
	if err != nil {
		return nil, err
	}
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	ids, err := a.riot.GetMatchIDs(apiCtx, puuid, listCount)
	cancel()
	a.spend(logger, bd)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNoRankedGames, playerKey)
	}

	if req.Offset >= len(ids) {
		return nil, fmt.Errorf("%w: offset %d skips all %d matches", apperr.ErrNoRankedGames, req.Offset, len(ids))
	}
	slice := ids[req.Offset:]
	if len(slice) > needed {
		slice = slice[:needed]
	}

	cached := mc.ByID()
	newCount := 0
	for _, id := range slice {
		if _, ok := cached[id]; !ok {
			newCount++
		}
	}
	logger.Info().Int("analyzing", len(slice)).Int("new", newCount).
		Int("replayed", len(slice)-newCount).Msg("match ids resolved")

	enemies := analysis.NewTracker()
	allies := analysis.NewTracker()
	history := make([]domain.MatchResult, 0, len(slice))
	var fetched []cache.CachedMatch

	total := len(slice)
	for idx, id := range slice {
		recencyWeight := 1 - float64(idx)/float64(total)

		cm, ok := cached[id]
		if !ok || req.Refresh {
			bd, err = a.gate(ctx, logger, bd, playerKey)
			if err != nil {
				return nil, err
			}
			apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
			match, err := a.riot.GetMatch(apiCtx, id)
			cancel()
			a.spend(logger, bd)
			if err != nil {
				return nil, err
			}
			cm = toCachedMatch(match, puuid)
			fetched = append(fetched, cm)
		}

		for _, name := range cm.Enemies {
			enemies.Record(name, cm.Won, recencyWeight)
		}
		for _, name := range cm.Allies {
			allies.Record(name, cm.Won, recencyWeight)
		}
		history = append(history, domain.MatchResult{
			MatchID:        cm.ID,
			MatchNumber:    idx + 1,
			PlayerChampion: cm.Champion,
			Won:            cm.Won,
			EnemyChampions: cm.Enemies,
			AllyChampions:  cm.Allies,
			PlayedAt:       cm.Timestamp,
		})
		if req.Progress != nil {
			req.Progress(idx+1, total)
		}
	}

	mc.Region = region
	mc.Merge(fetched)
	a.persist(logger, mc, bd)

	topN := req.TopN
	if topN <= 0 {
		topN = constants.DefaultTopBans
	}
	report := &Report{
		Player:        playerKey,
		Region:        region,
		SummonerLevel: summonerLevel,
		Rank:          rank,
		AnalyzedGames: total,
		Fetched:       len(fetched),
		FromCache:     total - len(fetched),
		History:       history,
		Bans:          analysis.RankBans(enemies.Snapshot(), total, topN),
		Budget:        bd.Status(),
	}
	if req.IncludeAllies {
		report.Allies = analysis.RankAllies(allies.Snapshot(), constants.MinGamesTogether)
	}
	if summonerName != "" {
		report.Player = summonerName
	}

	logger.Info().Int("bans", len(report.Bans)).Int("fetched", report.Fetched).
		Int("from_cache", report.FromCache).Msg("analysis run completed")
	return report, nil
}

// Status loads the persisted cache and budget for a player without touching
// the network.
func (a *Analyzer) Status(player string) StatusReport {
	mc := cache.Load(a.cfg.CacheDir, player)
	bd := budget.Load(a.cfg.CacheDir, player)
	return StatusReport{
		Player:        player,
		Budget:        bd.Status(),
		CachedMatches: len(mc.Matches),
		LastUpdated:   mc.LastUpdated,
		Stale:         mc.IsStale(constants.MatchCacheMaxAge),
		Recent:        mc.Recent(5),
	}
}

// resolveAccount reuses the cached account summary when fresh, otherwise
// fetches account and summoner through the budget gate and caches them.
func (a *Analyzer) resolveAccount(ctx context.Context, logger zerolog.Logger, req Request, mc *cache.MatchCache, bd *budget.RequestBudget) (puuid, name string, level int, _ *budget.RequestBudget, err error) {
	playerKey := req.GameName + "#" + req.TagLine

	if acct, ok := mc.FreshAccount(constants.AccountCacheTTL); ok && !req.Refresh {
		logger.Debug().Str("puuid", shortID(acct.Puuid)).Msg("using cached account summary")
		return acct.Puuid, acct.SummonerName, acct.SummonerLevel, bd, nil
	}

	bd, err = a.gate(ctx, logger, bd, playerKey)
	if err != nil {
		return "", "", 0, bd, err
	}
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	account, err := a.riot.GetAccount(apiCtx, req.GameName, req.TagLine)
	cancel()
	a.spend(logger, bd)
	if err != nil {
		return "", "", 0, bd, err
	}
	logger.Info().Str("puuid", shortID(account.Puuid)).Msg("account resolved")

	bd, err = a.gate(ctx, logger, bd, playerKey)
	if err != nil {
		return "", "", 0, bd, err
	}
	apiCtx, cancel = context.WithTimeout(ctx, constants.ExternalAPITimeout)
	summoner, err := a.riot.GetSummoner(apiCtx, account.Puuid)
	cancel()
	a.spend(logger, bd)
	if err != nil {
		return "", "", 0, bd, err
	}
	logger.Info().Int("summoner_level", summoner.SummonerLevel).Msg("summoner resolved")

	displayName := account.GameName + "#" + account.TagLine
	mc.SetAccount(account.Puuid, displayName, summoner.SummonerLevel)
	return account.Puuid, displayName, summoner.SummonerLevel, bd, nil
}

// fetchRank grabs the solo-queue league entry for context. Best effort: it
// is skipped when the budget has no headroom and failures are non-fatal.
func (a *Analyzer) fetchRank(ctx context.Context, logger zerolog.Logger, bd *budget.RequestBudget, puuid string) string {
	if !bd.CanMakeRequest() {
		logger.Debug().Msg("skipping rank fetch, no budget headroom")
		return ""
	}
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	entries, err := a.riot.GetLeagueEntries(apiCtx, puuid)
	cancel()
	a.spend(logger, bd)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to fetch rank context")
		return ""
	}
	for _, e := range entries {
		if e.QueueType == "RANKED_SOLO_5x5" {
			return fmt.Sprintf("%s %s (%d LP, %dW/%dL)", e.Tier, e.Rank, e.LeaguePoints, e.Wins, e.Losses)
		}
	}
	return ""
}

// gate enforces the request budget before an outbound call. A closed short
// window is waited out and the budget reloaded (reset is lazy at load time);
// an exhausted long window fails the run.
func (a *Analyzer) gate(ctx context.Context, logger zerolog.Logger, bd *budget.RequestBudget, playerKey string) (*budget.RequestBudget, error) {
	a.sleep(constants.RequestDelay)

	for attempt := 0; attempt < 2; attempt++ {
		if bd.CanMakeRequest() {
			return bd, nil
		}
		_, longRemaining := bd.Remaining()
		shortReset, longReset := bd.ResetTimes()
		if longRemaining <= 0 {
			logger.Warn().Time("reset", longReset).Msg("request budget exhausted")
			return bd, fmt.Errorf("%w: local request budget exhausted until %s",
				apperr.ErrRateLimited, longReset.Format(time.RFC3339))
		}

		wait := time.Until(shortReset)
		if wait > 0 {
			logger.Debug().Dur("wait", wait).Msg("short window closed, waiting for reset")
			select {
			case <-ctx.Done():
				return bd, ctx.Err()
			case <-time.After(wait):
			}
		}
		bd = budget.Load(a.cfg.CacheDir, playerKey)
	}
	return bd, fmt.Errorf("%w: request budget did not re-open", apperr.ErrRateLimited)
}

// spend records a completed outbound call and persists the budget
// incrementally. Persistence is best effort.
func (a *Analyzer) spend(logger zerolog.Logger, bd *budget.RequestBudget) {
	bd.RecordRequest()
	if err := bd.Save(a.cfg.CacheDir); err != nil {
		logger.Warn().Err(err).Msg("failed to save request budget")
	}
}

// persist saves the cache and budget files. Both are independent, so they
// run in parallel; failures are reported but never abort the analysis.
func (a *Analyzer) persist(logger zerolog.Logger, mc *cache.MatchCache, bd *budget.RequestBudget) {
	g := new(errgroup.Group)
	g.Go(func() error { return mc.Save(a.cfg.CacheDir) })
	g.Go(func() error { return bd.Save(a.cfg.CacheDir) })
	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Msg("best-effort persistence failed")
		return
	}
	logger.Debug().Str("dir", a.cfg.CacheDir).Msg("cache and budget saved")
}

func toCachedMatch(match *riot.Match, puuid string) cache.CachedMatch {
	var ourTeam int
	var won bool
	champion := "Unknown"
	for _, p := range match.Info.Participants {
		if p.Puuid == puuid {
			ourTeam = p.TeamID
			won = p.Win
			champion = p.ChampionName
			break
		}
	}

	var enemies, allies []string
	for _, p := range match.Info.Participants {
		switch {
		case p.Puuid == puuid:
		case p.TeamID == ourTeam:
			allies = append(allies, p.ChampionName)
		default:
			enemies = append(enemies, p.ChampionName)
		}
	}

	ts := time.Now()
	if match.Info.GameEndTimestamp > 0 {
		ts = time.UnixMilli(match.Info.GameEndTimestamp)
	}

	return cache.CachedMatch{
		ID:        match.Metadata.MatchID,
		Champion:  champion,
		Won:       won,
		Enemies:   enemies,
		Allies:    allies,
		Timestamp: ts,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
