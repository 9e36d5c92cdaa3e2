package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrUsernameTaken        = errors.New("username already taken")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserLocked           = errors.New("user is locked")
	ErrEmailNotConfirmed    = errors.New("email not confirmed")
	ErrMailDomainNotAllowed = errors.New("email domain not allowed for university")
	ErrTokenInvalid         = errors.New("token invalid or expired")
	ErrPermissionDenied     = errors.New("permission denied")
)

// ValidationError 字段缺失或取值越界
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type ConflictCode string

const (
	ConflictAnswersMissing          ConflictCode = "answers-missing"
	ConflictTooFewAnswers           ConflictCode = "too-few-answers"
	ConflictTooManyAnswers          ConflictCode = "too-many-answers"
	ConflictCorrectAnswerMissing    ConflictCode = "correct-answer-missing"
	ConflictCorrectAnswerIDCorrupt  ConflictCode = "correct-answer-id-corrupt"
	ConflictCorrectAnswerIDsCorrupt ConflictCode = "correct-answer-ids-corrupt"
	ConflictTooFewCorrectAnswers    ConflictCode = "too-few-correct-answers"
	ConflictIdentifiersMissing      ConflictCode = "identifiers-missing"
	ConflictTooFewIdentifiers       ConflictCode = "too-few-identifiers"
	ConflictTooManyIdentifiers      ConflictCode = "too-many-identifiers"
	ConflictOriginInvalid           ConflictCode = "origin-invalid"
	ConflictApproveOwnUpdate        ConflictCode = "approve-own-update"
	ConflictEmptyQuestionPool       ConflictCode = "empty-question-pool"
	ConflictSessionFinished         ConflictCode = "session-finished"
	ConflictQuestionSubmitted       ConflictCode = "question-submitted"
	ConflictSelectionTypeMismatch   ConflictCode = "selection-type-mismatch"
	ConflictCheckedAndCrossed       ConflictCode = "checked-and-crossed"
	ConflictReportResolved          ConflictCode = "report-resolved"
	ConflictInUse                   ConflictCode = "in-use"
)

// ConflictError 业务规则冲突，Code 标识具体违反的规则
type ConflictError struct {
	Code   ConflictCode
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func NewConflict(code ConflictCode, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func NewNotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown question type %q", e.Type)
}

// ConflictCodeOf 返回错误链中的冲突码，不是冲突时返回空
func ConflictCodeOf(err error) ConflictCode {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
