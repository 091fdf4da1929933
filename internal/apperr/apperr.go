package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

// Reason narrows an Unauthorized error down to the check that failed.
type Reason string

const (
	ReasonMissingHeader       Reason = "missing_header"
	ReasonSecretNotConfigured Reason = "secret_not_configured"
	ReasonTokenExpired        Reason = "token_expired"
	ReasonTokenInvalid        Reason = "token_invalid"
	ReasonStaleIdentity       Reason = "stale_identity"
	ReasonNotOwner            Reason = "not_owner"
	ReasonInvalidCredentials  Reason = "invalid_credentials"
	ReasonProviderFetchFailed Reason = "provider_fetch_failed"
	ReasonProviderAuthFailed  Reason = "provider_auth_failed"
	ReasonNoVerifiedEmail     Reason = "no_verified_email"
	ReasonNoLocalAccount      Reason = "no_local_account"
)

type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to the HTTP status sent to the client.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func Validation(err error) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Err: err}
}

func Unauthorized(reason Reason, message string) *Error {
	return &Error{Kind: KindUnauthorized, Reason: reason, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Wrap attaches a cause to err without changing what the client sees.
func (e *Error) Wrap(err error) *Error {
	clone := *e
	clone.Err = err
	return &clone
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ReasonOf returns the Unauthorized reason carried by err, or "".
func ReasonOf(err error) Reason {
	if appErr, ok := As(err); ok {
		return appErr.Reason
	}
	return ""
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
