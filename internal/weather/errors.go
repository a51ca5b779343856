package weather

import "fmt"

// NetworkError is a transport-level failure: DNS, timeout, connection reset,
// or an open circuit breaker. No HTTP response was available.
type NetworkError struct {
	Op    string
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Cause)
}

func (e *NetworkError) Unwrap() error { return e.Cause }

// HTTPError is a response with a status outside the 200-299 range.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// DecodeError is a well-delivered response whose body did not match the
// expected shape.
type DecodeError struct {
	Shape string
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Shape, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// EmptyResultError is a well-formed response that contained zero usable
// records. It is non-fatal: the previous value of the source stays in place.
type EmptyResultError struct {
	Message string
}

func (e *EmptyResultError) Error() string { return e.Message }
