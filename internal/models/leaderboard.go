package models

const (
	LEADERBOARD_SCOPE_INDIVIDUAL   = "individual"
	LEADERBOARD_SCOPE_ORGANIZATION = "organization"
	LEADERBOARD_SCOPE_DORM         = "dorm"

	LEADERBOARD_WINDOW_ALL_TIME       = "all-time"
	LEADERBOARD_WINDOW_CURRENT_PERIOD = "current-period"
)

func ValidLeaderboardScope(scope string) bool {
	switch scope {
	case LEADERBOARD_SCOPE_INDIVIDUAL, LEADERBOARD_SCOPE_ORGANIZATION, LEADERBOARD_SCOPE_DORM:
		return true
	}
	return false
}

func ValidLeaderboardWindow(window string) bool {
	switch window {
	case LEADERBOARD_WINDOW_ALL_TIME, LEADERBOARD_WINDOW_CURRENT_PERIOD:
		return true
	}
	return false
}

type LeaderboardItem struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Avatar *string  `json:"avatar"`
	Points int      `json:"points"`
	Rank   int      `json:"rank"`
	Badges []string `json:"badges,omitempty"`
}

// LeaderboardResponse carries the ranked items plus the snapshot marker the
// ranking was computed against; two calls with the same marker see the same
// ledger prefix.
type LeaderboardResponse struct {
	Scope       string             `json:"scope"`
	Window      string             `json:"window"`
	Snapshot    int64              `json:"snapshot"`
	Leaderboard []*LeaderboardItem `json:"leaderboard"`
}
