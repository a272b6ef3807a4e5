package retry

import (
	"context"
	"errors"
	"strings"
)

// ErrorClass groups provider errors by how they should be handled
type ErrorClass string

const (
	ClassQuota       ErrorClass = "quota"
	ClassAuth        ErrorClass = "auth"
	ClassUnavailable ErrorClass = "unavailable"
	ClassRateLimit   ErrorClass = "rate_limit"
	ClassTransient   ErrorClass = "transient"
	ClassPermanent   ErrorClass = "permanent"
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as never worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Classify inspects an error returned by an external call
func Classify(err error) ErrorClass {
	if err == nil {
		return ""
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return ClassPermanent
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return ClassTransient
	}
	if errors.Is(err, context.Canceled) {
		return ClassPermanent
	}

	e := strings.ToLower(err.Error())
	switch {
	case containsAny(e, "insufficient_quota", "quota", "billing", "credit"):
		return ClassQuota
	case containsAny(e, "status 401", "status 403", "unauthorized", "forbidden", "permission", "invalid api key"):
		return ClassAuth
	case containsAny(e, "video unavailable", "private video", "content unavailable", "status 404", "not found"):
		return ClassUnavailable
	case containsAny(e, "rate limit", "status 429", "too many requests"):
		return ClassRateLimit
	case containsAny(e, "timeout", "timed out", "temporarily", "unavailable", "connection reset",
		"connection refused", "eof", "status 500", "status 502", "status 503", "status 504"):
		return ClassTransient
	default:
		return ClassPermanent
	}
}

// IsRetryable reports whether err is transient or rate limited
func IsRetryable(err error) bool {
	switch Classify(err) {
	case ClassTransient, ClassRateLimit:
		return true
	default:
		return false
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
