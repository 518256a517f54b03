package domain

import "fmt"

// DateParseError reports a date argument that is not in YYYY-MM-DD form.
type DateParseError struct {
	Field string
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: expected YYYY-MM-DD", e.Field, e.Value)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// HTTPError reports a failed provider round trip. StatusCode is zero when the
// request never produced a response.
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("http request %s: %v", e.URL, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("http status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("http status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPError) Unwrap() error { return e.Err }
