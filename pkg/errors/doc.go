// Package errors provides structured error types for the sync pipeline.
//
// Every fatal condition raised by a pipeline stage carries an ErrorCode so the
// CLI and the run report can classify it without string matching:
//
//   - CONFIGURATION: missing credential or invalid settings
//   - SERVICE_UNAVAILABLE: page fetch or model backend failed after retries
//   - STRUCTURE: the data artifact lacks the collection anchor
//   - MODEL_OUTPUT: empty or undecodable model text
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeModelOutput,
//	    "model did not return valid JSON",
//	    decodeErr,
//	    map[string]any{"raw": raw},
//	)
package errors
