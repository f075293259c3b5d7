package service

import (
	"context"
	"errors"

	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"
	"wouldyourather/internal/repository"
	"wouldyourather/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// Home tabs.
const (
	TabUnanswered = "unanswered"
	TabAnswered   = "answered"
)

// QuestionService creates, lists and answers questions.
type QuestionService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
}

// HomeView is what the home page shows for one user.
type HomeView struct {
	Unanswered []models.Question
	Answered   []models.Question
	ActiveTab  string
}

// QuestionDetail is a question as seen by one user. UserAnswer is nil until
// the user answers, and Tally is only filled in once they have.
type QuestionDetail struct {
	Question   *models.Question
	UserAnswer *models.Answer
	Tally      models.Tally
}

// Answered reports whether the viewing user already answered.
func (d *QuestionDetail) Answered() bool {
	return d.UserAnswer != nil
}

// NewQuestionService creates a QuestionService over the given repositories.
func NewQuestionService(questions repository.QuestionRepository, answers repository.AnswerRepository) *QuestionService {
	return &QuestionService{questions: questions, answers: answers}
}

// NormalizeTab maps any unknown tab to the unanswered tab.
func NormalizeTab(tab string) string {
	if tab == TabAnswered {
		return TabAnswered
	}
	return TabUnanswered
}

// Create validates the form and stores a question authored by authorID.
func (s *QuestionService) Create(ctx context.Context, authorID uint, form *validation.QuestionForm) (*models.Question, error) {
	span, ctx := observability.NewSpan(ctx, "QuestionService.Create")
	defer span.End()

	if errs := form.Validate(); errs.Any() {
		return nil, errs
	}

	q := &models.Question{
		AuthorID:      authorID,
		OptionOneText: form.OptionOneText,
		OptionTwoText: form.OptionTwoText,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		span.SetError(err)
		return nil, err
	}

	span.AddAttributes(attribute.Int("question.id", int(q.ID)))
	observability.QuestionsCreated.Inc()
	return q, nil
}

// Home splits all questions into those userID has and has not answered.
func (s *QuestionService) Home(ctx context.Context, userID uint, tab string) (*HomeView, error) {
	span, ctx := observability.NewSpan(ctx, "QuestionService.Home")
	defer span.End()

	unanswered, err := s.questions.ListUnansweredBy(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	answered, err := s.questions.ListAnsweredBy(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &HomeView{
		Unanswered: unanswered,
		Answered:   answered,
		ActiveTab:  NormalizeTab(tab),
	}, nil
}

// Detail loads the question, the viewer's answer and, once answered, the vote tally.
func (s *QuestionService) Detail(ctx context.Context, userID, questionID uint) (*QuestionDetail, error) {
	span, ctx := observability.NewSpan(ctx, "QuestionService.Detail")
	defer span.End()
	span.AddAttributes(attribute.Int("question.id", int(questionID)))

	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	answer, err := s.answers.GetForUser(ctx, userID, questionID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	detail := &QuestionDetail{Question: q, UserAnswer: answer}
	if answer != nil {
		tally, err := s.questions.Tally(ctx, questionID)
		if err != nil {
			span.SetError(err)
			return nil, err
		}
		detail.Tally = tally
	}
	return detail, nil
}

// Answer records the user's choice. A repeated answer returns
// repository.ErrDuplicateAnswer and keeps the original.
func (s *QuestionService) Answer(ctx context.Context, userID, questionID uint, form *validation.AnswerForm) (*models.Answer, error) {
	span, ctx := observability.NewSpan(ctx, "QuestionService.Answer")
	defer span.End()

	if errs := form.Validate(); errs.Any() {
		return nil, errs
	}
	option := form.Option()

	answer := &models.Answer{
		UserID:         userID,
		QuestionID:     questionID,
		OptionSelected: option,
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			observability.AnswersSubmitted.WithLabelValues(string(option), observability.OutcomeDuplicate).Inc()
			return nil, err
		}
		span.SetError(err)
		observability.AnswersSubmitted.WithLabelValues(string(option), observability.OutcomeFailure).Inc()
		return nil, err
	}

	observability.AnswersSubmitted.WithLabelValues(string(option), observability.OutcomeSuccess).Inc()
	return answer, nil
}
