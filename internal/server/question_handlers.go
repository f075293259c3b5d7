package server

import (
	"errors"

	"wouldyourather/internal/middleware"
	"wouldyourather/internal/repository"
	"wouldyourather/internal/service"
	"wouldyourather/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Home handles GET /home/
func (s *Server) Home(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	view, err := s.questionService.Home(c.UserContext(), p.ID(), c.Query("tab"))
	if err != nil {
		return err
	}

	return s.render(c, "home", fiber.Map{
		"Title":           "Home",
		"Unanswered":      view.Unanswered,
		"Answered":        view.Answered,
		"UnansweredCount": len(view.Unanswered),
		"AnsweredCount":   len(view.Answered),
		"ActiveTab":       view.ActiveTab,
	})
}

// NewQuestionPage handles GET /add/
func (s *Server) NewQuestionPage(c *fiber.Ctx) error {
	return s.renderNewQuestion(c, &validation.QuestionForm{}, nil)
}

// CreateQuestion handles POST /add/
func (s *Server) CreateQuestion(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var form validation.QuestionForm
	if err := parseForm(c, &form); err != nil {
		return err
	}

	if _, err := s.questionService.Create(c.UserContext(), p.ID(), &form); err != nil {
		if errs, ok := validation.AsFieldErrors(err); ok {
			middleware.SetFlash(c, middleware.FlashError, msgCorrectErrors)
			return s.renderNewQuestion(c, &form, errs)
		}
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Question created successfully!")
	return c.Redirect(middleware.HomePath, fiber.StatusFound)
}

func (s *Server) renderNewQuestion(c *fiber.Ctx, form *validation.QuestionForm, errs validation.FieldErrors) error {
	return s.render(c, "new_question", fiber.Map{
		"Title":  "New Question",
		"Form":   form,
		"Errors": nonNil(errs),
	})
}

// QuestionDetail handles GET /question/:id/
func (s *Server) QuestionDetail(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	detail, err := s.questionService.Detail(c.UserContext(), p.ID(), id)
	if err != nil {
		return err
	}
	return s.renderDetail(c, detail, nil)
}

// AnswerQuestion handles POST /question/:id/. A user who already answered
// just sees the results again.
func (s *Server) AnswerQuestion(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	detail, err := s.questionService.Detail(ctx, p.ID(), id)
	if err != nil {
		return err
	}
	if detail.Answered() {
		return s.renderDetail(c, detail, nil)
	}

	var form validation.AnswerForm
	if err := parseForm(c, &form); err != nil {
		return err
	}

	if _, err := s.questionService.Answer(ctx, p.ID(), id, &form); err != nil {
		if errs, ok := validation.AsFieldErrors(err); ok {
			middleware.SetFlash(c, middleware.FlashError, "Please select an option.")
			return s.renderDetail(c, detail, errs)
		}
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			middleware.SetFlash(c, middleware.FlashError, "An error occurred while saving your answer.")
			return c.Redirect(questionURL(id), fiber.StatusFound)
		}
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, "Answer submitted successfully!")
	return c.Redirect(questionURL(id), fiber.StatusFound)
}

func (s *Server) renderDetail(c *fiber.Ctx, detail *service.QuestionDetail, errs validation.FieldErrors) error {
	data := fiber.Map{
		"Title":       "Question",
		"Question":    detail.Question,
		"ShowResults": detail.Answered(),
		"Errors":      nonNil(errs),
	}
	if detail.Answered() {
		data["UserAnswer"] = detail.UserAnswer
		data["Tally"] = detail.Tally
	}
	return s.render(c, "question_detail", data)
}

// Leaderboard handles GET /leaderboard/
func (s *Server) Leaderboard(c *fiber.Ctx) error {
	entries, err := s.leaderboardService.Leaderboard(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, "leaderboard", fiber.Map{
		"Title":   "Leaderboard",
		"Entries": entries,
	})
}
