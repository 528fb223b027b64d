package models

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// Domain-level sentinel errors for the gateway. These carry no
// HTTP-specific information; src/utils maps them to response statuses.

var (
	// ErrEmptyCredentials indicates a missing Authorization header or a
	// record with an empty username/password.
	ErrEmptyCredentials = errors.New("username or password is empty")

	// ErrInvalidCredentials indicates a malformed Authorization header,
	// an unknown scheme, or a token whose payload could not be decoded.
	ErrInvalidCredentials = errors.New("invalid credentials provided")

	// ErrExpiredToken indicates a well-formed, authenticated token whose
	// expiry has passed.
	ErrExpiredToken = errors.New("this key has expired")

	// ErrMaintenance is returned when the upstream service rejects all
	// methods (HTTP 405), which is how it presents scheduled downtime.
	ErrMaintenance = errors.New("StudentVue is currently undergoing maintenance")

	// ErrUnknown covers upstream internal faults whose message is not
	// meaningful to surface (the ".dll" error envelopes).
	ErrUnknown = errors.New("unknown error (code: x_dll)")

	// ErrAccessKey indicates the version-key provider could not be reached.
	ErrAccessKey = errors.New("unable to create access key")

	// ErrNoKey indicates the ENKEY environment variable is absent or not
	// valid base64. A deployment problem, never a client one.
	ErrNoKey = errors.New("no encryption key found")

	// ErrTokenLength indicates a token shorter than the cipher nonce.
	ErrTokenLength = errors.New("token has invalid length")

	// ErrTokenDecoding indicates an authenticated plaintext that is not
	// valid UTF-8 text.
	ErrTokenDecoding = errors.New("token contains an invalid string")

	// ErrTokenAuth indicates the authentication tag check failed: the
	// token was tampered with or sealed under a different key.
	ErrTokenAuth = errors.New("token failed authentication")
)

// StudentVueError is a soft upstream failure: an application-level error
// reported inside a successfully transported response. Its message is safe
// to surface verbatim.
type StudentVueError struct {
	Message string
}

func (e *StudentVueError) Error() string {
	return e.Message
}

// ParsingError is a hard failure decoding an upstream XML payload. The
// underlying parser message may quote raw upstream content, so it is
// base64-obfuscated rather than suppressed.
type ParsingError struct {
	Cause error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("cannot parse response: %s", Mangle(e.Cause))
}

func (e *ParsingError) Unwrap() error {
	return e.Cause
}

// NetworkError is a transport-level failure reaching the upstream service.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return "unable to reach StudentVue"
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// MissingFieldError indicates an upstream payload lacking a field the
// transformation cannot proceed without.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field '%s'", e.Field)
}

// Mangle base64-encodes an error message so diagnostics stay debuggable
// without leaking raw upstream XML into logs or responses.
func Mangle(err error) string {
	return base64.StdEncoding.EncodeToString([]byte(err.Error()))
}
