package domain

import (
	"time"
)

// MatchResult is one analyzed match seen from the tracked player's side.
type MatchResult struct {
	MatchID        string
	MatchNumber    int
	PlayerChampion string
	Won            bool
	EnemyChampions []string
	AllyChampions  []string
	PlayedAt       time.Time
}

// BudgetStatus is a read-only snapshot of the request budget for display.
type BudgetStatus struct {
	Player     string
	ShortUsed  int
	ShortMax   int
	ShortReset time.Time
	LongUsed   int
	LongMax    int
	LongReset  time.Time
	Ready      bool
}
