package util

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrConsentRequired    = errors.New("consent is required to participate")
	ErrAlreadyRated       = errors.New("current sample already rated, advance before rating again")
	ErrResetNotConfirmed  = errors.New("reset requires explicit confirmation")
	ErrTransitionAssessed = errors.New("category transition already assessed")
)

// DatasetError 数据集格式或内容不合法，加载期致命，不允许部分加载
type DatasetError struct {
	Field  string
	Reason string
}

func (e *DatasetError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid dataset: %s", e.Reason)
	}
	return fmt.Sprintf("invalid dataset: %s: %s", e.Field, e.Reason)
}

func NewDatasetError(field, format string, args ...interface{}) *DatasetError {
	return &DatasetError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ValidationError 参与者提交内容违反评分契约，状态不变，可纠正后重新提交
type ValidationError struct {
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func WrapValidationError(cause error) *ValidationError {
	return &ValidationError{Reason: cause.Error(), Cause: cause}
}

// InvalidStateError 当前状态下不允许的操作，调用方修正调用顺序后可恢复
type InvalidStateError struct {
	State     string
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("operation %q not allowed in state %q", e.Operation, e.State)
}

func NewInvalidStateError(operation, state string) *InvalidStateError {
	return &InvalidStateError{State: state, Operation: operation}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsInvalidStateError(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}

func IsDatasetError(err error) bool {
	var de *DatasetError
	return errors.As(err, &de)
}
