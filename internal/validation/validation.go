// Package validation implements the submission contract shared by every
// boundary that accepts feedback. The store-side rules are authoritative;
// any client-side check is advisory and may be bypassed.
package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/feedbackhq/feedback-api/internal/models"
	appErrors "github.com/feedbackhq/feedback-api/pkg/errors"
)

// Accepts local parts of letters/digits separated by single . _ or -,
// a dotted domain, and a TLD of at least two letters.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9]+([._-][A-Za-z0-9]+)*@[A-Za-z0-9]+([.-][A-Za-z0-9]+)*\.[A-Za-z]{2,}$`)

// candidate mirrors SubmissionInput with the rule tags attached. Rules are
// evaluated per field, so every violated field reports independently;
// within a field the first failing rule supplies the single message.
type candidate struct {
	Name    string `validate:"required,max=50"`
	Email   string `validate:"required,feedback_email"`
	Message string `validate:"required,min=10,max=1000"`
	Rating  int    `validate:"required,gte=1,lte=5"`
}

// messages maps field/tag pairs onto the human-readable text surfaced to
// the submitter.
var messages = map[string]map[string]string{
	"Name": {
		"required": "Please provide a name",
		"max":      "Name cannot be more than 50 characters",
	},
	"Email": {
		"required":       "Please provide an email",
		"feedback_email": "Please provide a valid email",
	},
	"Message": {
		"required": "Please provide a message",
		"min":      "Message must be at least 10 characters",
		"max":      "Message cannot be more than 1000 characters",
	},
	"Rating": {
		"required": "Please provide a rating",
		"gte":      "Rating must be at least 1",
		"lte":      "Rating cannot be more than 5",
	},
}

var jsonFields = map[string]string{
	"Name":    "name",
	"Email":   "email",
	"Message": "message",
	"Rating":  "rating",
}

// New returns a validator with the feedback email rule registered.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("feedback_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a candidate submission against every rule. It is pure:
// on success it returns the input with strings trimmed; on failure it
// returns a *errors.ValidationError carrying one message per violated
// field, in field declaration order.
func Validate(v *validator.Validate, in models.SubmissionInput) (models.SubmissionInput, error) {
	if v == nil {
		v = New()
	}

	normalized := models.SubmissionInput{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
		Rating:  in.Rating,
	}

	err := v.Struct(candidate{
		Name:    normalized.Name,
		Email:   normalized.Email,
		Message: normalized.Message,
		Rating:  normalized.Rating,
	})
	if err == nil {
		return normalized, nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return models.SubmissionInput{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}

	vErr := &appErrors.ValidationError{}
	for _, fe := range fieldErrs {
		msg := messages[fe.StructField()][fe.Tag()]
		if msg == "" {
			msg = "Invalid value for " + jsonFields[fe.StructField()]
		}
		vErr.Add(jsonFields[fe.StructField()], msg)
	}

	return models.SubmissionInput{}, vErr
}
