package services

import "errors"

// Player-facing redemption errors. Handlers map these to HTTP statuses with
// errors.Is; NotFound is retryable with a different code, the other two are
// terminal for that code.
var (
	ErrCodeNotFound    = errors.New("access code not found")
	ErrCodeDeactivated = errors.New("access code has been deactivated")
	ErrCodeExpired     = errors.New("access code play window has elapsed")
)

// Validation errors. These fail fast with no state mutation.
var (
	ErrGameNotFound   = errors.New("game not found")
	ErrPuzzleNotFound = errors.New("puzzle not found")
	ErrSplashNotFound = errors.New("splash screen not found")
	ErrNotAnOption    = errors.New("answer is not one of the puzzle's options")
	ErrBadAnchor      = errors.New("invalid splash screen anchor")
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
