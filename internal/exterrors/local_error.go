// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

import (
	"fmt"
)

// LocalErrorCategory classifies errors raised by gnoagent itself, as opposed to errors returned
// by a remote service.
type LocalErrorCategory string

const (
	LocalErrorCategoryValidation    LocalErrorCategory = "validation"
	LocalErrorCategoryDependency    LocalErrorCategory = "dependency"
	LocalErrorCategoryCompatibility LocalErrorCategory = "compatibility"
	LocalErrorCategoryAuth          LocalErrorCategory = "auth"
	LocalErrorCategoryUser          LocalErrorCategory = "user"
	LocalErrorCategoryInternal      LocalErrorCategory = "internal"
	LocalErrorCategoryLocal         LocalErrorCategory = "local"
)

// LocalError is an error raised locally with a stable code and an optional suggestion
// that is shown to the user below the error message.
type LocalError struct {
	Message    string
	Code       string
	Category   LocalErrorCategory
	Suggestion string
	Cause      error
}

func (e *LocalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

func (e *LocalError) Unwrap() error {
	return e.Cause
}

// ServiceError represents a failed call against a remote service.
type ServiceError struct {
	// Message is the human-readable error message
	Message string
	// ErrorCode is prefixed with the operation name, e.g. "create_agent.Conflict"
	ErrorCode string
	// StatusCode is the HTTP status code (e.g., 409, 404, 500)
	StatusCode int
	// ServiceName is the host that returned the error
	ServiceName string
	Cause       error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}
