// Package apperr defines the policy rejections the service layer returns.
//
// These are terminal: callers surface them as-is and never retry. Anything
// that is not an *Error is an infrastructure failure.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnauthenticated      Kind = "unauthenticated"
	KindUnauthorized         Kind = "unauthorized"
	KindNotFound             Kind = "not_found"
	KindInvalidJoinCode      Kind = "invalid_join_code"
	KindAlreadyMember        Kind = "already_member"
	KindAdminCannotBeRemoved Kind = "admin_cannot_be_removed"
	KindSelfRemovalAsAdmin   Kind = "self_removal_as_admin"
	KindLastAdmin            Kind = "last_admin"
	KindInvalid              Kind = "invalid"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// holds for every NotFound regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrUnauthenticated      = New(KindUnauthenticated, "unauthenticated")
	ErrUnauthorized         = New(KindUnauthorized, "unauthorized")
	ErrNotFound             = New(KindNotFound, "not found")
	ErrInvalidJoinCode      = New(KindInvalidJoinCode, "invalid join code")
	ErrAlreadyMember        = New(KindAlreadyMember, "already a member of this workspace")
	ErrAdminCannotBeRemoved = New(KindAdminCannotBeRemoved, "admin cannot be removed")
	ErrSelfRemovalAsAdmin   = New(KindSelfRemovalAsAdmin, "cannot remove self while admin")
	ErrLastAdmin            = New(KindLastAdmin, "workspace must keep at least one admin")
	ErrInvalid              = New(KindInvalid, "invalid request")
)

// NotFound returns a NotFound error naming the missing entity.
func NotFound(entity string) *Error {
	return Newf(KindNotFound, "%s not found", entity)
}

// Invalid returns an Invalid error with the given reason.
func Invalid(reason string) *Error {
	return New(KindInvalid, reason)
}

// KindOf extracts the Kind of err, or "" if err is not a policy rejection.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
