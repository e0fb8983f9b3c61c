package utils

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorKind classifies failures so handlers can map them to responses.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindPersistence  ErrorKind = "persistence"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
)

// HTTPStatus returns the status code responses of this kind are sent with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// AppError is the error every service operation fails with.
type AppError struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func Validation(message string, details ...string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Details: details}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

// genericFailure is the only text clients see for database failures.
const genericFailure = "Something went wrong, please try again later"

// Persistence logs a data-layer failure and hides the driver detail behind a
// generic message.
func Persistence(op string, err error) *AppError {
	logrus.WithError(err).WithField("op", op).Error("database operation failed")
	return &AppError{Kind: KindPersistence, Message: genericFailure, Err: err}
}

// KindOf returns the kind of err, KindPersistence for foreign errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// ErrorResponse is the failure half of Response.
type ErrorResponse struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

// Response is the envelope every JSON endpoint answers with: Data on success,
// Error on failure.
type Response struct {
	Success bool           `json:"success"`
	Data    interface{}    `json:"data,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// OK writes a success envelope.
func OK(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Response{Success: true, Data: data})
}

// Fail writes a failure envelope for err. Errors that are not *AppError are
// logged and reported as generic failures.
func Fail(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		logrus.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		appErr = &AppError{Kind: KindPersistence, Message: genericFailure, Err: err}
	}
	return c.Status(appErr.Kind.HTTPStatus()).JSON(Response{
		Success: false,
		Error: &ErrorResponse{
			Kind:    appErr.Kind,
			Message: appErr.Message,
			Details: appErr.Details,
		},
	})
}

// ErrorHandler is the fiber error handler; it keeps the envelope for errors
// raised by fiber itself (404 routes, body limits).
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := KindPersistence
		switch fe.Code {
		case fiber.StatusNotFound:
			kind = KindNotFound
		case fiber.StatusUnauthorized:
			kind = KindUnauthorized
		case fiber.StatusForbidden:
			kind = KindForbidden
		default:
			if fe.Code < fiber.StatusInternalServerError {
				kind = KindValidation
			}
		}
		return c.Status(fe.Code).JSON(Response{Error: &ErrorResponse{Kind: kind, Message: fe.Message}})
	}
	return Fail(c, err)
}
