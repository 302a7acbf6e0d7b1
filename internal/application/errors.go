package application

import "errors"

// Failure kinds the handlers map to HTTP responses. Credential failures are
// deliberately indistinguishable from "no such account" to resist
// account enumeration.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailTaken         = errors.New("email already exists")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidResetLink   = errors.New("reset link is not valid")
	ErrInvalidVerifyLink  = errors.New("verification link is not valid")
)
