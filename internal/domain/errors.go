package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrDocumentNotFound indicates the requested document does not exist
	ErrDocumentNotFound = errors.New("document not found")

	// ErrServerOffline indicates the archive server is unreachable
	ErrServerOffline = errors.New("archive server is unreachable")

	// ErrAuthFailed indicates authentication failed
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrNotConfigured indicates no server URL has been set
	ErrNotConfigured = errors.New("archive server is not configured")
)
