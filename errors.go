package permalink

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for type checking
var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrInvalidPermalink = errors.New("invalid permalink")
	ErrUnknownCountry   = errors.New("unknown country")
)

// InvalidURLError indicates the input is not an absolute URL.
type InvalidURLError struct {
	Input string // The string that failed to parse
	Err   error  // Underlying parse failure
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %v", e.Input, e.Err)
}

func (e *InvalidURLError) Unwrap() []error {
	return []error{ErrInvalidURL, e.Err}
}

// InvalidPermalinkError indicates the URL path does not match the permalink grammar.
type InvalidPermalinkError struct {
	Path string
	Err  error // Optional cause, e.g. a title that is not valid UTF-8
}

func (e *InvalidPermalinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid permalink %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("invalid permalink %q", e.Path)
}

func (e *InvalidPermalinkError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidPermalink, e.Err}
	}
	return []error{ErrInvalidPermalink}
}

// UnknownCountryError indicates a well-formed path whose country code is not supported.
type UnknownCountryError struct {
	Code string // The code as it appeared in the path
	Err  error
}

func (e *UnknownCountryError) Error() string {
	return fmt.Sprintf("unknown country code %q", e.Code)
}

func (e *UnknownCountryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnknownCountry, e.Err}
	}
	return []error{ErrUnknownCountry}
}

// IsInvalidURL checks if an error is an invalid-url error.
func IsInvalidURL(err error) bool {
	return errors.Is(err, ErrInvalidURL)
}

// IsInvalidPermalink checks if an error is an invalid-permalink error.
func IsInvalidPermalink(err error) bool {
	return errors.Is(err, ErrInvalidPermalink)
}

// IsUnknownCountry checks if an error is an unknown-country error.
func IsUnknownCountry(err error) bool {
	return errors.Is(err, ErrUnknownCountry)
}

// Error kinds reported by ErrorKind.
const (
	KindInvalidURL       = "invalid_url"
	KindInvalidPermalink = "invalid_permalink"
	KindUnknownCountry   = "unknown_country"
	KindInternal         = "internal"
)

// ErrorKind classifies err for machine-readable output. It returns "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidURL(err):
		return KindInvalidURL
	case IsInvalidPermalink(err):
		return KindInvalidPermalink
	case IsUnknownCountry(err):
		return KindUnknownCountry
	}
	return KindInternal
}
