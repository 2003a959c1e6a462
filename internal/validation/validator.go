// Swipelab - Short-Form Video Research Study Platform
// Copyright 2026 Swipelab Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/swipelab/swipelab

// Package validation provides struct validation using go-playground/validator
// v10. It exposes a thread-safe singleton validator and translates field
// errors into the structured shape the API layer returns to clients.
//
// Example usage:
//
//	type CreateProjectRequest struct {
//	    Name string `json:"name" validate:"required,max=200"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    var ve *validation.RequestValidationError
//	    if errors.As(err, &ve) {
//	        rw.ValidationError(ve.Error(), ve.Fields())
//	    }
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Param   string      `json:"param,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.Message
}

// RequestValidationError is a collection of validation errors for one request.
type RequestValidationError struct {
	errors []ValidationError
}

// Fields returns the slice of individual field errors.
func (ve *RequestValidationError) Fields() []ValidationError {
	return ve.errors
}

// Error implements the error interface, returning a combined error message.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance.
// The validator caches struct metadata, so sharing one instance is both
// required for performance and safe for concurrent use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateStruct validates a struct and returns a *RequestValidationError
// describing every failed field, or nil if the struct is valid.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: caller passed a non-struct.
		return fmt.Errorf("validation: %w", err)
	}

	ve := &RequestValidationError{errors: make([]ValidationError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.errors = append(ve.errors, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: messageFor(fe),
		})
	}
	return ve
}

// messageFor builds a readable message for the common validation tags.
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation on '%s'", fe.Field(), fe.Tag())
	}
}
