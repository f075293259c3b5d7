package repository

import (
	"context"
	"errors"

	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"

	"gorm.io/gorm"
)

// AnswerRepository defines persistence operations for answers.
type AnswerRepository interface {
	Create(ctx context.Context, a *models.Answer) error
	GetForUser(ctx context.Context, userID, questionID uint) (*models.Answer, error)
}

type answerRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewAnswerRepository returns a new AnswerRepository implementation.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

// Create inserts the answer. A second answer for the same (user, question)
// fails with ErrDuplicateAnswer and leaves the first untouched.
func (r *answerRepository) Create(ctx context.Context, a *models.Answer) error {
	defer r.metrics.TrackQuery("insert", "answers")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "AnswerRepository.Create", "answers")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateAnswer
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetForUser returns the user's answer to the question, or nil, nil.
func (r *answerRepository) GetForUser(ctx context.Context, userID, questionID uint) (*models.Answer, error) {
	defer r.metrics.TrackQuery("select", "answers")()

	var a models.Answer
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &a, nil
}
