package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"league-advisor/internal/analysis"
	"league-advisor/internal/domain"
)

func Info(msg string) {
	fmt.Printf("%s %s\n", color.CyanString("ℹ"), msg)
}

func Success(msg string) {
	fmt.Printf("%s %s\n", color.GreenString("✓"), msg)
}

func Error(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("✗ Error:"), err)
}

// ProgressFunc returns a progress callback that lazily builds a bar once the
// total is known and clears it when done.
func ProgressFunc(description string) func(done, total int) {
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
		if done >= total {
			_ = bar.Finish()
		}
	}
}

// MatchHistory renders the analyzed matches, newest first, with an overall
// win/loss summary line.
func MatchHistory(results []domain.MatchResult) {
	if len(results) == 0 {
		return
	}

	wins := 0
	for _, r := range results {
		if r.Won {
			wins++
		}
	}
	losses := len(results) - wins
	winRate := float64(wins) / float64(len(results)) * 100

	title := color.New(color.FgCyan, color.Bold)
	title.Printf("\nMATCH HISTORY (Last %d Games)\n", len(results))
	fmt.Printf("Overall: %s W / %s L (%.1f%% WR)\n\n",
		color.GreenString("%d", wins), color.RedString("%d", losses), winRate)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Champion", "Result", "Enemies"})
	table.SetBorder(false)
	for _, r := range results {
		result := color.RedString("LOSS")
		if r.Won {
			result = color.GreenString("WIN")
		}
		table.Append([]string{
			fmt.Sprintf("%d", r.MatchNumber),
			r.PlayerChampion,
			result,
			strings.Join(r.EnemyChampions, ", "),
		})
	}
	table.Render()
	fmt.Println()
}

// BanRecommendations renders the ranked ban table plus a callout for the top
// priority ban.
func BanRecommendations(recs []analysis.BanRecommendation, playerName string) {
	title := color.New(color.FgCyan, color.Bold)
	title.Printf("\nBan Recommendations for %s\n\n", playerName)

	if len(recs) == 0 {
		color.Yellow("No ban recommendations available (not enough data)")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Champion", "Frequency", "Win Rate", "Score"})
	table.SetBorder(false)
	for i, rec := range recs {
		table.Append([]string{
			fmt.Sprintf("#%d", i+1),
			rec.ChampionName,
			fmt.Sprintf("%.1f%%", rec.Frequency),
			fmt.Sprintf("%.1f%%", rec.WinRate*100),
			fmt.Sprintf("%.2f", rec.Score),
		})
	}
	table.Render()

	fmt.Println()
	color.New(color.FgYellow, color.Bold).Println("Interpretation")
	fmt.Println("• Frequency: how often the champion appeared in the analyzed games")
	fmt.Println("• Win Rate: your win rate when facing the champion")
	fmt.Println("• Score: combined threat metric, higher is more bannable")

	top := recs[0]
	fmt.Println()
	color.New(color.FgRed, color.Bold).Println("Top Priority Ban")
	fmt.Printf("  %s faced %d times (%.1f%%) with %.1f%% win rate\n",
		top.ChampionName, top.TimesFaced, top.Frequency, top.WinRate*100)
	if top.WinRate < 0.33 {
		fmt.Printf("  %s High threat - very low win rate\n", color.RedString("!"))
	} else if top.Frequency > 25 {
		fmt.Printf("  %s Very common in your games\n", color.RedString("!"))
	}
	fmt.Println()
}

// AllyAnalyses renders ally synergy, worst win rate first.
func AllyAnalyses(allies []analysis.AllyAnalysis) {
	if len(allies) == 0 {
		return
	}

	color.New(color.FgCyan, color.Bold).Println("\nALLY PERFORMANCE ANALYSIS")
	fmt.Println()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "Champion", "Games", "Win Rate"})
	table.SetBorder(false)
	for i, ally := range allies {
		table.Append([]string{
			fmt.Sprintf("#%d", i+1),
			ally.ChampionName,
			fmt.Sprintf("%d", ally.GamesTogether),
			fmt.Sprintf("%.1f%%", ally.WinRate*100),
		})
	}
	table.Render()

	worst := allies[0]
	fmt.Println()
	color.New(color.FgRed, color.Bold).Println("Worst Ally Match")
	fmt.Printf("  %s with %.1f%% win rate (%d/%d games)\n",
		worst.ChampionName, worst.WinRate*100, worst.WinsTogether, worst.GamesTogether)
	if worst.WinRate < 0.25 {
		fmt.Printf("  %s Very poor synergy\n", color.RedString("!"))
	} else if worst.WinRate < 0.4 {
		fmt.Printf("  %s Below average synergy\n", color.YellowString("!"))
	}
	fmt.Println()
}

// BudgetStatus renders the persisted request budget.
func BudgetStatus(st domain.BudgetStatus) {
	color.New(color.FgCyan, color.Bold).Printf("\nAPI Usage (Player: %s)\n", st.Player)
	fmt.Printf("   Per 2 min: %d/%d requests (reset in %s)\n",
		st.LongUsed, st.LongMax, untilOrZero(st.LongReset))
	fmt.Printf("   Per 1 sec: %d/%d requests (reset in %s)\n",
		st.ShortUsed, st.ShortMax, untilOrZero(st.ShortReset))
	state := color.GreenString("Ready")
	if !st.Ready {
		state = color.RedString("Rate Limited")
	}
	fmt.Printf("   Status: %s\n\n", state)
}

func untilOrZero(t time.Time) string {
	d := time.Until(t)
	if d < 0 {
		d = 0
	}
	return d.Round(time.Millisecond).String()
}
