package budget

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"league-advisor/internal/apperr"
	"league-advisor/internal/constants"
	"league-advisor/internal/domain"
)

// Window is one fixed quota window: a counter valid from Start until
// Start plus the window duration.
type Window struct {
	Count int       `json:"count"`
	Start time.Time `json:"start"`
}

// RequestBudget tracks outbound API usage for one player across runs,
// enforcing the short (per-second) and long (per-two-minutes) quotas.
type RequestBudget struct {
	Player      string    `json:"player"`
	Short       Window    `json:"short_window"`
	Long        Window    `json:"long_window"`
	LastRequest time.Time `json:"last_request"`
}

func New(player string) *RequestBudget {
	now := time.Now()
	return &RequestBudget{
		Player: player,
		Short:  Window{Start: now},
		Long:   Window{Start: now},
	}
}

// Path is the budget file for a player key.
func Path(dir, player string) string {
	r := strings.NewReplacer("#", "_", "/", "_", "\\", "_", ":", "_", " ", "_")
	return filepath.Join(dir, r.Replace(player)+".budget.json")
}

// Load reads the durable budget for a player; absent or unreadable state
// yields a fresh zeroed budget. Windows whose elapsed time exceeds their
// duration are reset lazily here, so a long-idle process re-opens its quota
// without a background timer.
func Load(dir, player string) *RequestBudget {
	data, err := os.ReadFile(Path(dir, player))
	if err != nil {
		return New(player)
	}
	var b RequestBudget
	if err := json.Unmarshal(data, &b); err != nil {
		return New(player)
	}
	if b.Player == "" {
		b.Player = player
	}
	b.normalize(time.Now())
	return &b
}

func (b *RequestBudget) normalize(now time.Time) {
	if now.Sub(b.Short.Start) > constants.ShortWindowDuration {
		b.Short = Window{Start: now}
	}
	if now.Sub(b.Long.Start) > constants.LongWindowDuration {
		b.Long = Window{Start: now}
	}
}

// Save persists the budget, overwriting prior state.
func (b *RequestBudget) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create cache dir %s: %v", apperr.ErrStorage, dir, err)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode request budget: %v", apperr.ErrStorage, err)
	}
	if err := os.WriteFile(Path(dir, b.Player), data, 0o644); err != nil {
		return fmt.Errorf("%w: write request budget: %v", apperr.ErrStorage, err)
	}
	return nil
}

// CanMakeRequest reports whether every window still has headroom. It is a
// gate only; the caller performs the outbound call.
func (b *RequestBudget) CanMakeRequest() bool {
	return b.Short.Count < constants.ShortWindowMax && b.Long.Count < constants.LongWindowMax
}

// RecordRequest counts one completed outbound call against every window.
// Callers must check CanMakeRequest first and never record speculatively;
// over-counting blocks further calls until the window resets.
func (b *RequestBudget) RecordRequest() {
	b.Short.Count++
	b.Long.Count++
	b.LastRequest = time.Now()
}

// Remaining reports how many requests each window still allows.
func (b *RequestBudget) Remaining() (short, long int) {
	return constants.ShortWindowMax - b.Short.Count, constants.LongWindowMax - b.Long.Count
}

// ResetTimes reports when each window re-opens.
func (b *RequestBudget) ResetTimes() (short, long time.Time) {
	return b.Short.Start.Add(constants.ShortWindowDuration),
		b.Long.Start.Add(constants.LongWindowDuration)
}

// Status is a read-only snapshot for user-facing reporting.
func (b *RequestBudget) Status() domain.BudgetStatus {
	shortReset, longReset := b.ResetTimes()
	return domain.BudgetStatus{
		Player:     b.Player,
		ShortUsed:  b.Short.Count,
		ShortMax:   constants.ShortWindowMax,
		ShortReset: shortReset,
		LongUsed:   b.Long.Count,
		LongMax:    constants.LongWindowMax,
		LongReset:  longReset,
		Ready:      b.CanMakeRequest(),
	}
}
