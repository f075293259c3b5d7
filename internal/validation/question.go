package validation

import (
	"strings"

	"wouldyourather/internal/models"
)

// QuestionForm is the posted "add question" form.
type QuestionForm struct {
	OptionOneText string `form:"option_one_text" validate:"required,min=3,max=255"`
	OptionTwoText string `form:"option_two_text" validate:"required,min=3,max=255"`
}

var questionFields = map[string]string{
	"OptionOneText": "option_one_text",
	"OptionTwoText": "option_two_text",
}

var questionMessages = map[string]messageFunc{
	"OptionOneText.required": staticMessage("Option one must be at least 3 characters long."),
	"OptionOneText.min":      staticMessage("Option one must be at least 3 characters long."),
	"OptionTwoText.required": staticMessage("Option two must be at least 3 characters long."),
	"OptionTwoText.min":      staticMessage("Option two must be at least 3 characters long."),
}

// Validate trims both options and checks their length.
func (f *QuestionForm) Validate() FieldErrors {
	f.OptionOneText = strings.TrimSpace(f.OptionOneText)
	f.OptionTwoText = strings.TrimSpace(f.OptionTwoText)
	return collect(f, questionFields, questionMessages)
}

// AnswerForm is the posted answer to a question.
type AnswerForm struct {
	OptionSelected string `form:"option_selected" validate:"required,oneof=optionOne optionTwo"`
}

var answerMessages = map[string]messageFunc{
	"OptionSelected.required": staticMessage("Please select an option."),
	"OptionSelected.oneof":    staticMessage("Please select an option."),
}

// Validate checks that one of the two options was chosen.
func (f *AnswerForm) Validate() FieldErrors {
	f.OptionSelected = strings.TrimSpace(f.OptionSelected)
	return collect(f, map[string]string{"OptionSelected": "option_selected"}, answerMessages)
}

// Option returns the chosen option. Call after a successful Validate.
func (f *AnswerForm) Option() models.Option {
	return models.Option(f.OptionSelected)
}
