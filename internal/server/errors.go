package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/pipeline"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr  *ErrValidation
		fieldErrs      validator.ValidationErrors
		notFoundErr    *jobstore.NotFoundError
		unsupportedErr *ingestion.UnsupportedTypeError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs), errors.As(err, &unsupportedErr),
		errors.Is(err, ingestion.ErrEmptyResume):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrShuttingDown):
		return http.StatusServiceUnavailable
	default:
		// db.PersistenceError and anything unexpected
		return http.StatusInternalServerError
	}
}

// validationMessage renders validator field errors as "field is required" style text.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_without_all":
		others := strings.ToLower(strings.ReplaceAll(fe.Param(), " ", " and "))
		return fmt.Sprintf("%s is required when %s are empty", fe.Field(), others)
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
