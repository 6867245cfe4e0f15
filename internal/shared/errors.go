package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog and source errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrInvalidPlaylistURL = fmt.Errorf("invalid playlist URL")

	// Play-count store errors
	ErrCorruptState = fmt.Errorf("corrupt play-count state")
	ErrPersist      = fmt.Errorf("failed to persist play counts")

	// Selection and queue errors
	ErrEmptyCatalog      = fmt.Errorf("no tracks available")
	ErrIndexOutOfRange   = fmt.Errorf("queue index out of range")
	ErrInvalidTransition = fmt.Errorf("invalid queue entry transition")
	ErrNothingToRetry    = fmt.Errorf("nothing to retry")

	// Playback errors
	ErrDispatchFailed = fmt.Errorf("playback dispatch failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidPlatform = fmt.Errorf("invalid platform")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
