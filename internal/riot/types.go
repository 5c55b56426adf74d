package riot

// Account is the account-v1 response.
type Account struct {
	Puuid    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is the summoner-v4 response.
type Summoner struct {
	Puuid         string `json:"puuid"`
	Name          string `json:"name"`
	SummonerLevel int    `json:"summonerLevel"`
	ProfileIconID int    `json:"profileIconId"`
	RevisionDate  int64  `json:"revisionDate"`
}

// LeagueEntry is one league-v4 ranked queue entry.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Match is the match-v5 response, reduced to the fields the analyzer reads.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfo struct {
	GameDuration     int64         `json:"gameDuration"`
	GameEndTimestamp int64         `json:"gameEndTimestamp"` // unix millis
	QueueID          int           `json:"queueId"`
	Participants     []Participant `json:"participants"`
}

type Participant struct {
	Puuid        string `json:"puuid"`
	ChampionName string `json:"championName"`
	TeamID       int    `json:"teamId"`
	Win          bool   `json:"win"`
	Lane         string `json:"lane"`
}
