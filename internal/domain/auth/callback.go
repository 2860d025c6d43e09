package auth

import "strings"

// CallbackCode is the error code the API appends to the OAuth landing route.
type CallbackCode string

const (
	CallbackAuthFailed CallbackCode = "auth_failed"
	CallbackNoUser     CallbackCode = "no_user"
	CallbackTokenError CallbackCode = "token_error"
)

// CallbackParams are the query parameters received on the OAuth landing route.
type CallbackParams struct {
	Token string
	Error string
}

// Empty reports whether neither a token nor an error is present.
func (p CallbackParams) Empty() bool {
	return strings.TrimSpace(p.Token) == "" && strings.TrimSpace(p.Error) == ""
}

// Message returns the user-facing text for a callback error code.
func (c CallbackCode) Message() string {
	switch c {
	case CallbackAuthFailed:
		return "Sign-in with the provider failed. Please try again."
	case CallbackNoUser:
		return "No account could be created or found for this sign-in."
	case CallbackTokenError:
		return "We could not issue a session for this sign-in. Please try again."
	default:
		return "Sign-in did not complete. Please try again."
	}
}
