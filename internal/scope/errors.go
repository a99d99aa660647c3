package scope

import "errors"

var (
	// ErrShapeMismatch is returned when a submitted sample vector length
	// does not equal the configured channel count.
	ErrShapeMismatch = errors.New("sample length does not match channel count")

	// ErrCapabilityViolation is returned when attaching a data source that
	// does not fulfil the data-source contract, for example one that has
	// not configured the scope.
	ErrCapabilityViolation = errors.New("data source does not fulfil the source contract")

	// ErrNotConfigured is returned by operations that require a prior
	// successful call to Configure.
	ErrNotConfigured = errors.New("scope is not configured")
)
