package service

import (
	"database/sql"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/studydesk-api/pkg/errors"
)

var basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NewValidator returns a validator with the custom rules used by request payloads.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return basicEmailPattern.MatchString(fl.Field().String())
	})
	return v
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// lookupError maps a repository lookup failure to not found or internal.
func lookupError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, entity+" not found")
	}
	return internalError(err, "failed to load "+entity)
}
