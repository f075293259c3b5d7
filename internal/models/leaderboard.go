package models

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank              int    `json:"rank"`
	UserID            uint   `json:"user_id"`
	Username          string `json:"username"`
	FullName          string `json:"full_name"`
	Avatar            string `json:"avatar"`
	QuestionsAsked    int64  `json:"questions_asked"`
	QuestionsAnswered int64  `json:"questions_answered"`
	TotalScore        int64  `json:"total_score"`
}
