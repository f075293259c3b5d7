package server

import (
	"errors"
	"fmt"
	"log/slog"

	"wouldyourather/internal/middleware"
	"wouldyourather/internal/models"
	"wouldyourather/internal/observability"
	"wouldyourather/internal/service"
	"wouldyourather/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const msgCorrectErrors = "Please correct the errors below."

// LoginPage handles GET /
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.renderLogin(c, &validation.LoginForm{}, nil)
}

// Login handles POST /
func (s *Server) Login(c *fiber.Ctx) error {
	var form validation.LoginForm
	if err := parseForm(c, &form); err != nil {
		return err
	}

	if errs := form.Validate(); errs.Any() {
		middleware.SetFlash(c, middleware.FlashError, msgCorrectErrors)
		return s.renderLogin(c, &form, errs)
	}

	user, err := s.authService.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.SetFlash(c, middleware.FlashError, "Invalid username or password.")
			return s.renderLogin(c, &form, nil)
		}
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}

	middleware.SetFlash(c, middleware.FlashSuccess, fmt.Sprintf("Welcome back, %s!", user.Username))
	return c.Redirect(middleware.SafeNext(nextParam(c), middleware.HomePath), fiber.StatusFound)
}

func (s *Server) renderLogin(c *fiber.Ctx, form *validation.LoginForm, errs validation.FieldErrors) error {
	form.Password = ""
	return s.render(c, "login", fiber.Map{
		"Title":  "Login",
		"Form":   form,
		"Errors": nonNil(errs),
		"Next":   nextParam(c),
	})
}

// SignupPage handles GET /signup/
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return s.renderSignup(c, &validation.SignupForm{}, nil)
}

// Signup handles POST /signup/
func (s *Server) Signup(c *fiber.Ctx) error {
	var form validation.SignupForm
	if err := parseForm(c, &form); err != nil {
		return err
	}

	user, err := s.authService.Signup(c.UserContext(), &form)
	if err != nil {
		if errs, ok := validation.AsFieldErrors(err); ok {
			middleware.SetFlash(c, middleware.FlashError, msgCorrectErrors)
			return s.renderSignup(c, &form, errs)
		}
		return err
	}

	if err := s.startSession(c, user); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "session after signup failed", slog.String("error", err.Error()))
		middleware.SetFlash(c, middleware.FlashError, "Account created but login failed. Please try logging in.")
		return c.Redirect(middleware.LoginPath, fiber.StatusFound)
	}

	middleware.SetFlash(c, middleware.FlashSuccess,
		fmt.Sprintf("Account created successfully! Welcome, %s!", user.Username))
	return c.Redirect(middleware.HomePath, fiber.StatusFound)
}

func (s *Server) renderSignup(c *fiber.Ctx, form *validation.SignupForm, errs validation.FieldErrors) error {
	form.Password1, form.Password2 = "", ""
	return s.render(c, "signup", fiber.Map{
		"Title":  "Sign Up",
		"Form":   form,
		"Errors": nonNil(errs),
	})
}

// Logout handles GET and POST /logout/
func (s *Server) Logout(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	if err := s.tokens.Revoke(c.UserContext(), p.Claims); err != nil {
		// The cookie is still cleared; the token stays valid until it expires.
		middleware.Logger.WarnContext(c.UserContext(), "session revocation failed", slog.String("error", err.Error()))
	}
	s.tokens.ClearCookie(c)
	observability.RecordAuthEvent("logout", observability.OutcomeSuccess)

	middleware.SetFlash(c, middleware.FlashSuccess,
		fmt.Sprintf("Goodbye, %s! You have been logged out.", p.Username()))
	return c.Redirect(middleware.LoginPath, fiber.StatusFound)
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return err
	}
	s.tokens.SetCookie(c, token, claims.ExpiresAt.Time)
	return nil
}

// nextParam reads the post-login target from the form or the query string.
func nextParam(c *fiber.Ctx) string {
	if next := c.FormValue("next"); next != "" {
		return next
	}
	return c.Query("next")
}

func nonNil(errs validation.FieldErrors) validation.FieldErrors {
	if errs == nil {
		return validation.FieldErrors{}
	}
	return errs
}
