package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired is returned when no cloud token is available
	ErrAuthRequired = errors.New("cloud authorization required")

	// ErrProjectNotFound is returned when no project matches a code
	ErrProjectNotFound = errors.New("project not found")

	// ErrUnassignedNotFound is returned when an orphan inbox item id is unknown
	ErrUnassignedNotFound = errors.New("unassigned feedback not found")

	// ErrInvalidFeedbackTransition is returned when a feedback status change
	// is not allowed from the project's current status
	ErrInvalidFeedbackTransition = errors.New("invalid feedback status transition")

	// ErrInvalidStatus is returned for a status outside the progress scale
	ErrInvalidStatus = errors.New("invalid project status")

	// ErrCloseoutBlocked is returned when closing a project whose closeout
	// checklist is incomplete
	ErrCloseoutBlocked = errors.New("project closeout requirements not met")

	// ErrStandingConnection is returned when disconnecting a vault whose
	// access does not come from a stored account token
	ErrStandingConnection = errors.New("vault connection cannot be revoked")
)
