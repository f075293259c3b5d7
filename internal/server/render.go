package server

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"wouldyourather/internal/middleware"
	"wouldyourather/internal/models"
	"wouldyourather/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
)

//go:embed views static
var assets embed.FS

const mainLayout = "layouts/main"

func newViewEngine() (*html.Engine, error) {
	views, err := fs.Sub(assets, "views")
	if err != nil {
		return nil, fmt.Errorf("views: %w", err)
	}

	engine := html.NewFileSystem(http.FS(views), ".html")
	engine.AddFunc("percent", func(v float64) string {
		return fmt.Sprintf("%.1f", v)
	})
	engine.AddFunc("media", mediaURL)
	engine.AddFunc("optionText", func(q *models.Question, o models.Option) string {
		if o == models.OptionTwo {
			return q.OptionTwoText
		}
		return q.OptionOneText
	})
	return engine, nil
}

// setupAssets serves the embedded stylesheet and the media directory.
func (s *Server) setupAssets(app *fiber.App) {
	static, err := fs.Sub(assets, "static")
	if err == nil {
		app.Use("/static", filesystem.New(filesystem.Config{
			Root:   http.FS(static),
			MaxAge: 3600,
		}))
	}
	if s.config.MediaRoot != "" {
		app.Static("/media", s.config.MediaRoot)
	}
}

func mediaURL(p string) string {
	if p == "" {
		p = models.DefaultAvatar
	}
	return path.Join("/media", p)
}

func isAssetPath(p string) bool {
	return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/")
}

// render executes view inside the main layout. It adds the principal and the
// pending notices, which are consumed by this response.
func (s *Server) render(c *fiber.Ctx, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if p, ok := middleware.PrincipalFrom(c); ok {
		data["User"] = p.User
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = validation.FieldErrors{}
	}
	data["Flashes"] = middleware.ConsumeFlashes(c)
	return c.Render(view, data, mainLayout)
}

// errorHandler renders the 404 page for unknown routes and resources and a
// generic error page otherwise. Unexpected errors are logged.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Something went wrong on our end. Please try again later."

	var fe *fiber.Error
	var appErr *models.AppError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.As(err, &appErr):
		code = appErr.Status()
		if code < fiber.StatusInternalServerError {
			message = appErr.Message
		}
	}

	if code >= fiber.StatusInternalServerError && fe == nil {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
			slog.String("error", err.Error()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)
	}

	view := "error"
	title := "Error"
	if code == fiber.StatusNotFound {
		view = "404"
		title = "Page Not Found"
	}

	c.Status(code)
	if rerr := s.render(c, view, fiber.Map{
		"Title":   title,
		"Code":    code,
		"Message": message,
	}); rerr != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "render error page", slog.String("error", rerr.Error()))
		return c.Status(code).SendString(message)
	}
	return nil
}
