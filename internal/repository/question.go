package repository

import (
	"context"
	"errors"

	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"

	"gorm.io/gorm"
)

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	ListAnsweredBy(ctx context.Context, userID uint) ([]models.Question, error)
	ListUnansweredBy(ctx context.Context, userID uint) ([]models.Question, error)
	Tally(ctx context.Context, questionID uint) (models.Tally, error)
	ExistsWithOptions(ctx context.Context, optionOne, optionTwo string) (bool, error)
	ListIDs(ctx context.Context) ([]uint, error)
}

type questionRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewQuestionRepository returns a new QuestionRepository implementation.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	defer r.metrics.TrackQuery("insert", "questions")()

	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	defer r.metrics.TrackQuery("select", "questions")()

	var q models.Question
	if err := r.db.WithContext(ctx).Preload("Author").First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Question", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &q, nil
}

func (r *questionRepository) answeredSubquery(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Answer{}).
		Select("question_id").
		Where("user_id = ?", userID)
}

// ListAnsweredBy returns the questions userID answered, newest first.
func (r *questionRepository) ListAnsweredBy(ctx context.Context, userID uint) ([]models.Question, error) {
	defer r.metrics.TrackQuery("select", "questions")()

	var qs []models.Question
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id IN (?)", r.answeredSubquery(ctx, userID)).
		Order("created_at DESC").Order("id DESC").
		Find(&qs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return qs, nil
}

// ListUnansweredBy returns the questions userID has not answered, newest first.
func (r *questionRepository) ListUnansweredBy(ctx context.Context, userID uint) ([]models.Question, error) {
	defer r.metrics.TrackQuery("select", "questions")()

	var qs []models.Question
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id NOT IN (?)", r.answeredSubquery(ctx, userID)).
		Order("created_at DESC").Order("id DESC").
		Find(&qs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return qs, nil
}

type optionCount struct {
	OptionSelected models.Option
	Votes          int64
}

// Tally counts the answers of a question per option.
func (r *questionRepository) Tally(ctx context.Context, questionID uint) (models.Tally, error) {
	defer r.metrics.TrackQuery("aggregate", "answers")()
	ctx, span := observability.TraceRepositoryMethod(ctx, "QuestionRepository.Tally", "answers")
	defer span.End()

	var rows []optionCount
	if err := r.db.WithContext(ctx).Model(&models.Answer{}).
		Select("option_selected, COUNT(*) AS votes").
		Where("question_id = ?", questionID).
		Group("option_selected").
		Scan(&rows).Error; err != nil {
		return models.Tally{}, models.NewInternalError(err)
	}

	var tally models.Tally
	for _, row := range rows {
		switch row.OptionSelected {
		case models.OptionOne:
			tally.OptionOneVotes = row.Votes
		case models.OptionTwo:
			tally.OptionTwoVotes = row.Votes
		}
	}
	return tally, nil
}

// ExistsWithOptions reports whether a question with exactly these texts exists.
func (r *questionRepository) ExistsWithOptions(ctx context.Context, optionOne, optionTwo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("option_one_text = ? AND option_two_text = ?", optionOne, optionTwo).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *questionRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
