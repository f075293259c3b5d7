package service

import (
	"context"
	"sort"
	"strings"

	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"
	"wouldyourather/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// LeaderboardService ranks users by questions asked plus questions answered.
type LeaderboardService struct {
	users repository.UserRepository
}

// NewLeaderboardService creates a LeaderboardService reading activity from users.
func NewLeaderboardService(users repository.UserRepository) *LeaderboardService {
	return &LeaderboardService{users: users}
}

// Leaderboard ranks every user by questions asked plus questions answered.
// Ties go to the lower-cased username, then the lower id.
func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	span, ctx := observability.NewSpan(ctx, "LeaderboardService.Leaderboard")
	defer span.End()

	activity, err := s.users.ListActivity(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	entries := RankActivity(activity)
	span.AddAttributes(attribute.Int("leaderboard.size", len(entries)))
	return entries, nil
}

// RankActivity sorts activity and assigns 1-based ranks without gaps or sharing.
func RankActivity(activity []models.UserActivity) []models.LeaderboardEntry {
	sorted := make([]models.UserActivity, len(activity))
	copy(sorted, activity)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalScore() != b.TotalScore() {
			return a.TotalScore() > b.TotalScore()
		}
		la, lb := strings.ToLower(a.Username), strings.ToLower(b.Username)
		if la != lb {
			return la < lb
		}
		return a.UserID < b.UserID
	})

	entries := make([]models.LeaderboardEntry, 0, len(sorted))
	for i, a := range sorted {
		u := models.User{Username: a.Username, FirstName: a.FirstName, LastName: a.LastName, Avatar: a.Avatar}
		entries = append(entries, models.LeaderboardEntry{
			Rank:              i + 1,
			UserID:            a.UserID,
			Username:          a.Username,
			FullName:          u.FullName(),
			Avatar:            u.AvatarPath(),
			QuestionsAsked:    a.QuestionsAsked,
			QuestionsAnswered: a.QuestionsAnswered,
			TotalScore:        a.TotalScore(),
		})
	}
	return entries
}
