package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"league-advisor/internal/constants"
	"league-advisor/internal/display"
	fxmodules "league-advisor/internal/fx"
	"league-advisor/internal/riot"
	"league-advisor/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		display.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		region  string
		topN    int
		matches int
		offset  int
		refresh bool
		allies  bool
	)

	root := &cobra.Command{
		Use:           "advisor <game-name> <tag-line>",
		Short:         "Analyze ranked games and get ban recommendations",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.Request{
				GameName:      args[0],
				TagLine:       args[1],
				Region:        region,
				TopN:          topN,
				Matches:       matches,
				Offset:        offset,
				Refresh:       refresh,
				IncludeAllies: allies,
				Progress:      display.ProgressFunc("fetching match details"),
			}
			return runAnalysis(cmd.Context(), req)
		},
	}

	root.Flags().StringVarP(&region, "region", "r", "", "platform region (default from RIOT_REGION, na1)")
	root.Flags().IntVarP(&topN, "top", "t", constants.DefaultTopBans, "number of top bans to display")
	root.Flags().IntVarP(&matches, "matches", "m", constants.DefaultMatchCount, "number of matches to analyze (max 100)")
	root.Flags().IntVar(&offset, "offset", 0, "skip first N matches (offset from most recent)")
	root.Flags().BoolVar(&refresh, "refresh", false, "force refresh from the Riot API, ignoring cached matches")
	root.Flags().BoolVar(&allies, "allies", false, "include ally synergy analysis")

	root.AddCommand(newStatusCmd())

	return root
}

func runAnalysis(ctx context.Context, req service.Request) error {
	var report *service.Report
	var runErr error

	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Invoke(func(analyzer *service.Analyzer, client *riot.Client) {
			client.SetRegion(req.Region)
			display.Info(fmt.Sprintf("Analyzing %s#%s", req.GameName, req.TagLine))

			runCtx, cancel := context.WithTimeout(ctx, constants.RunTimeout)
			defer cancel()
			report, runErr = analyzer.Run(runCtx, req)
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	display.Success(fmt.Sprintf("Analyzed %d matches (%d fetched, %d from cache)",
		report.AnalyzedGames, report.Fetched, report.FromCache))
	if report.Rank != "" {
		display.Info("Rank: " + report.Rank)
	}
	display.MatchHistory(report.History)
	display.BanRecommendations(report.Bans, report.Player)
	if req.IncludeAllies {
		display.AllyAnalyses(report.Allies)
	}
	display.BudgetStatus(report.Budget)
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <game-name> <tag-line>",
		Short: "Show cached matches and the persisted request budget for a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			player := args[0] + "#" + args[1]

			var status service.StatusReport
			app := fx.New(
				fxmodules.Module,
				fx.NopLogger,
				fx.Invoke(func(analyzer *service.Analyzer) {
					status = analyzer.Status(player)
				}),
			)
			if err := app.Err(); err != nil {
				return err
			}

			staleNote := ""
			if status.Stale {
				staleNote = " (stale)"
			}
			display.Info(fmt.Sprintf("Cached matches: %d, last updated %s%s",
				status.CachedMatches, status.LastUpdated.Format("2006-01-02 15:04:05"), staleNote))
			display.BudgetStatus(status.Budget)
			return nil
		},
	}
}
