package auth

import (
	"context"
	"errors"
	"net"
)

// Kind classifies a login failure for the caller.
type Kind string

const (
	KindInvalidCredentials Kind = "invalid-credentials"
	KindRateLimited        Kind = "rate-limited"
	KindPopupClosed        Kind = "popup-closed"
	KindPopupBlocked       Kind = "popup-blocked"
	KindNetworkError       Kind = "network-error"
	KindUnauthorizedDomain Kind = "unauthorized-domain"
	KindMethodDisabled     Kind = "method-disabled"
	KindUnknown            Kind = "unknown"
)

// Category is the coarse error class a Kind belongs to.
type Category string

const (
	// CategoryCredential covers mistakes the user can fix by retrying.
	CategoryCredential Category = "credential"
	// CategoryProviderUnavailable covers network, popup and configuration problems.
	CategoryProviderUnavailable Category = "provider_unavailable"
)

// Provider error codes. Every provider reports failures with one of these.
const (
	CodeUserNotFound         = "auth/user-not-found"
	CodeWrongPassword        = "auth/wrong-password"
	CodeInvalidCredential    = "auth/invalid-credential"
	CodeInvalidEmail         = "auth/invalid-email"
	CodeTooManyRequests      = "auth/too-many-requests"
	CodePopupClosedByUser    = "auth/popup-closed-by-user"
	CodeCancelledPopup       = "auth/cancelled-popup-request"
	CodePopupBlocked         = "auth/popup-blocked"
	CodeNetworkRequestFailed = "auth/network-request-failed"
	CodeUnauthorizedDomain   = "auth/unauthorized-domain"
	CodeOperationNotAllowed  = "auth/operation-not-allowed"
	CodeUserDisabled         = "auth/user-disabled"
)

var codeKinds = map[string]Kind{ //nolint:gochecknoglobals
	CodeUserNotFound:         KindInvalidCredentials,
	CodeWrongPassword:        KindInvalidCredentials,
	CodeInvalidCredential:    KindInvalidCredentials,
	CodeInvalidEmail:         KindInvalidCredentials,
	CodeTooManyRequests:      KindRateLimited,
	CodePopupClosedByUser:    KindPopupClosed,
	CodeCancelledPopup:       KindPopupClosed,
	CodePopupBlocked:         KindPopupBlocked,
	CodeNetworkRequestFailed: KindNetworkError,
	CodeUnauthorizedDomain:   KindUnauthorizedDomain,
	CodeOperationNotAllowed:  KindMethodDisabled,
}

var kindMessages = map[Kind]string{ //nolint:gochecknoglobals
	KindInvalidCredentials: "Invalid email or password",
	KindRateLimited:        "Too many unsuccessful login attempts. Please try again later.",
	KindPopupClosed:        "Sign-in popup was closed before completing the sign-in process.",
	KindPopupBlocked:       "Sign-in popup was blocked by the browser. Please allow popups for this site.",
	KindNetworkError:       "Network error. Please check your internet connection.",
	KindUnauthorizedDomain: "This domain is not authorized for OAuth operations.",
	KindMethodDisabled:     "This login method is not enabled. Please contact the administrator.",
	KindUnknown:            "An error occurred during login. Please try again.",
}

// KindOf maps a provider code to its Kind. Unmapped codes are KindUnknown.
func KindOf(code string) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}

	return KindUnknown
}

// Message returns the user facing text for k.
func (k Kind) Message() string {
	if m, ok := kindMessages[k]; ok {
		return m
	}

	return kindMessages[KindUnknown]
}

// Category returns the top level error class of k.
func (k Kind) Category() Category {
	switch k {
	case KindInvalidCredentials, KindRateLimited:
		return CategoryCredential
	default:
		return CategoryProviderUnavailable
	}
}

// Error is a normalised login failure.
type Error struct {
	Kind Kind
	// Code is the provider code, empty when the failure had none.
	Code string
	// Message is safe to show to the user.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}

	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// NewError builds an Error for a provider code. raw is kept for unknown codes.
func NewError(code, raw string, err error) *Error {
	kind := KindOf(code)

	msg := kind.Message()
	if kind == KindUnknown {
		if raw == "" {
			raw = code
		}

		if raw != "" {
			msg = "Login error: " + raw
		}
	}

	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

// Normalize turns any provider failure into an *Error. Errors that are
// already normalised pass through unchanged. Errors without a code are
// classified as network errors when they come from the network or a
// deadline, and unknown otherwise.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(CodeNetworkRequestFailed, "", err)
	}

	return &Error{Kind: KindUnknown, Message: KindUnknown.Message(), Err: err}
}
