package core

import "errors"

var (
	// ErrAuthenticationRequired means no usable credential exists and the user must
	// authorize again. It is never absorbed by retry loops.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrNothingPlaying is returned when a trigger arrives while no track is playing.
	ErrNothingPlaying = errors.New("nothing playing")
	// ErrTransientAPI wraps network faults, rate limiting and server errors.
	ErrTransientAPI = errors.New("transient API failure")
	// ErrPlaceholderCredentials is returned when the config still holds the template client id.
	ErrPlaceholderCredentials = errors.New("spotify client credentials are still the template placeholders")
	// ErrInvalidConfig is returned when config validation fails.
	ErrInvalidConfig = errors.New("invalid configuration")
)
