// Package errs provides standardized error types for the fulfillment service.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping that is used throughout the application.
//
// The package includes error types for common failure scenarios:
//   - ObjectNotFoundError: an object cannot be found by its identifier
//   - ValueIsInvalidError: a value fails validation
//   - ValueIsOutOfRangeError: a numeric value is outside its bounds
//   - ValueIsRequiredError: a required value is missing
//
// Each error type follows the same pattern:
//   - a sentinel error variable (e.g. ErrObjectNotFound)
//   - a struct type with fields for error details
//   - constructor functions with and without cause
//   - Error() for formatting and Unwrap() for errors.Is support
//
// Callers classify failures with errors.Is against the sentinels, which keeps
// error handling consistent across layers: repositories raise
// ObjectNotFoundError, the task dispatcher treats it as non-retryable, and
// command validation raises the value errors.
package errs
