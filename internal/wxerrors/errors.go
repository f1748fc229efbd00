// Package wxerrors defines the error taxonomy shared across the tool.
// Every failure that crosses the orchestration boundary is one of these
// types so the CLI layer can decide what to show the user.
package wxerrors

import (
	"errors"
	"fmt"
)

// ConfigurationError indicates a missing or invalid setting. The user has
// to fix their configuration; retrying without a change is pointless.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("configuration: %s is not set", e.Field)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NetworkError indicates a failed weather API call. The next scheduled or
// manual run retries naturally; there is no automatic retry beyond the
// bounded in-call backoff.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("weather api: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("weather api: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError indicates malformed content: either a note's front-matter
// block or an unexpected API payload. The affected note is left untouched.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("parsing: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError indicates a configured path, typically the note template,
// that does not exist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// WriteError indicates the storage layer rejected a write. The operation
// is aborted, not retried.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Suggestion returns a short user-facing hint for a taxonomy error, or an
// empty string for errors outside the taxonomy.
func Suggestion(err error) string {
	var (
		confErr  *ConfigurationError
		netErr   *NetworkError
		parseErr *ParseError
		nfErr    *NotFoundError
		writeErr *WriteError
	)
	switch {
	case errors.As(err, &confErr):
		return "Check your API key, location, and journal settings in the config file."
	case errors.As(err, &netErr):
		return "Verify your API key and location, then try again. The next scheduled run will also retry."
	case errors.As(err, &parseErr):
		return "The note's front-matter block could not be parsed. Fix the YAML between the --- markers and rerun."
	case errors.As(err, &nfErr):
		return "The configured template file does not exist. Fix the template path or clear it to use default content."
	case errors.As(err, &writeErr):
		return "Ensure the journal folder is writable and has free space."
	default:
		return ""
	}
}
