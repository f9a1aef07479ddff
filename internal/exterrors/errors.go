// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

func Validation(code, message, suggestion string) error {
	return &LocalError{
		Message:    message,
		Code:       code,
		Category:   LocalErrorCategoryValidation,
		Suggestion: suggestion,
	}
}

func Dependency(code, message, suggestion string) error {
	return &LocalError{
		Message:    message,
		Code:       code,
		Category:   LocalErrorCategoryDependency,
		Suggestion: suggestion,
	}
}

func Auth(code, message, suggestion string) error {
	return &LocalError{
		Message:    message,
		Code:       code,
		Category:   LocalErrorCategoryAuth,
		Suggestion: suggestion,
	}
}

func Configuration(code, message, suggestion string) error {
	return &LocalError{
		Message:    message,
		Code:       code,
		Category:   LocalErrorCategoryLocal,
		Suggestion: suggestion,
	}
}

func User(code, message string) error {
	return &LocalError{
		Message:  message,
		Code:     code,
		Category: LocalErrorCategoryUser,
	}
}

func Internal(code, message string) error {
	return &LocalError{
		Message:  message,
		Code:     code,
		Category: LocalErrorCategoryInternal,
	}
}

// Wrap attaches a cause to a LocalError produced by one of the constructors above.
// Errors of any other type are returned unchanged.
func Wrap(err error, cause error) error {
	var localErr *LocalError
	if errors.As(err, &localErr) {
		localErr.Cause = cause
	}

	return err
}

// ServiceFromAzure wraps an azcore.ResponseError into a ServiceError with operation context.
// If the error is not an azcore.ResponseError, it returns a generic internal LocalError.
func ServiceFromAzure(err error, operation string) error {
	if err == nil {
		return nil
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		serviceName := ""
		if respErr.RawResponse != nil && respErr.RawResponse.Request != nil {
			serviceName = respErr.RawResponse.Request.Host
		}
		code := respErr.ErrorCode
		if code == "" {
			code = fmt.Sprintf("%d", respErr.StatusCode)
		}
		return &ServiceError{
			Message:     fmt.Sprintf("%s: %s", operation, respErr.Error()),
			ErrorCode:   fmt.Sprintf("%s.%s", operation, code),
			StatusCode:  respErr.StatusCode,
			ServiceName: serviceName,
			Cause:       err,
		}
	}
	if IsCancellation(err) {
		return Cancelled(fmt.Sprintf("%s was cancelled", operation))
	}
	return Wrap(Internal(operation, operation), err)
}

// IsCancellation checks if an error represents user cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Cancelled returns a user cancellation error.
func Cancelled(message string) error {
	return User(CodeCancelled, message)
}

// Suggestion returns the suggestion attached to err, if any.
func Suggestion(err error) string {
	var localErr *LocalError
	if errors.As(err, &localErr) {
		return localErr.Suggestion
	}

	return ""
}
