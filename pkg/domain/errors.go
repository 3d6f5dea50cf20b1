package domain

import "errors"

// ErrServiceUnavailable marks a reporting service that cannot be reached.
// Once a launch fails to start, the whole launch is reported as unavailable.
var ErrServiceUnavailable = errors.New("reporting service unavailable")

// ErrItemOperationFailed wraps a failed start or finish of a story, scenario or step.
var ErrItemOperationFailed = errors.New("item operation failed")

// ErrItemNotFound is returned when an item ID is unknown to the reporting backend.
var ErrItemNotFound = errors.New("item not found")

// ErrLaunchNotFound is returned when a launch ID is unknown to the reporting backend.
var ErrLaunchNotFound = errors.New("launch not found")

// ErrNilClient is returned when a reporter is built without a reporting client.
var ErrNilClient = errors.New("reporting client is required")
