// Package shared holds the error kinds and identifier helpers used by every
// domain package. Callers classify errors with IsNotFound and IsValidation.
package shared

import (
	"errors"
	"fmt"
)

// ══════════════════════════════════════════════════════════════════════════════
// ВИДЫ ОШИБОК
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrNotFound = errors.New("entity not found")

	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Группы видов: HTTP-слой переводит группу в статус ответа.
var (
	validationKinds = []error{
		ErrValidation, ErrInvalidID, ErrInvalidInput,
		ErrNegativeValue, ErrValueOutOfRange, ErrInvalidFormat,
	}
	externalKinds = []error{ErrExternalService, ErrServiceUnavailable}
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERROR
// ══════════════════════════════════════════════════════════════════════════════

// DomainError - ошибка с указанием сущности и операции.
// Kind определяет группу, Err (если есть) - первопричина.
type DomainError struct {
	Domain  string
	Op      string
	Kind    error
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	msg := e.Domain + "." + e.Op + ": " + e.Message
	if e.Err == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap отдаёт и вид, и первопричину, поэтому errors.Is и errors.As
// находят любую из них.
func (e *DomainError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	e := NewDomainError(domain, op, kind, message)
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════════
// ИЗВЕСТНЫЕ ОШИБКИ
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrCourseNotFound       = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrCourseTaskNotFound   = NewDomainError("course_task", "Find", ErrNotFound, "course task not found")
	ErrInvalidCourseID      = NewDomainError("course", "Validate", ErrInvalidID, "invalid course ID")
	ErrInvalidStudentID     = NewDomainError("student", "Validate", ErrInvalidID, "invalid student ID")
	ErrInvalidCourseTaskID  = NewDomainError("course_task", "Validate", ErrInvalidID, "invalid course task ID")
	ErrInvalidTaskStatus    = NewDomainError("course_task", "Validate", ErrInvalidInput, "unknown task status filter")
	ErrInvalidTaskWindow    = NewDomainError("course_task", "Validate", ErrValueOutOfRange, "student end date is before start date")
	ErrInvalidChecker       = NewDomainError("course_task", "Validate", ErrInvalidInput, "unknown checker kind")
	ErrNegativeHours        = NewDomainError("course_task", "Validate", ErrNegativeValue, "hours cannot be negative")
	ErrSameCourseCopy       = NewDomainError("schedule", "Copy", ErrInvalidInput, "source and destination course are the same")
	ErrNoCertificateTargets = NewDomainError("certificate", "Generate", ErrNotFound, "no students eligible for certificates")

	ErrCertificateAPIUnavailable = NewDomainError("certificate", "Request", ErrServiceUnavailable, "certificate API is unavailable")
	ErrCertificateAPIRejected    = NewDomainError("certificate", "Request", ErrExternalService, "certificate API rejected the request")
)

// ══════════════════════════════════════════════════════════════════════════════
// КЛАССИФИКАЦИЯ
// ══════════════════════════════════════════════════════════════════════════════

func isAny(err error, kinds []error) bool {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsValidation(err error) bool { return isAny(err, validationKinds) }

func IsExternalService(err error) bool { return isAny(err, externalKinds) }
