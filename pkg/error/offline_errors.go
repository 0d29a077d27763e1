package error

import "net/http"

// UnreachableError means the remote service could not be contacted at all.
// Mutations failing with it are queued instead of surfaced.
type UnreachableError string

func (err UnreachableError) Error() string {
	return string(err)
}

func (err UnreachableError) ErrCode() string {
	return "UNREACHABLE"
}

func (err UnreachableError) StatusCode() int {
	return http.StatusServiceUnavailable
}

// RemoteFailureError means the remote service was reached but answered
// with an error.
type RemoteFailureError string

func (err RemoteFailureError) Error() string {
	return string(err)
}

func (err RemoteFailureError) ErrCode() string {
	return "REMOTE_FAILURE"
}

func (err RemoteFailureError) StatusCode() int {
	return http.StatusBadGateway
}

// RetryExhaustedError marks a queued operation dropped after its last
// allowed replay attempt.
type RetryExhaustedError string

func (err RetryExhaustedError) Error() string {
	return string(err)
}

func (err RetryExhaustedError) ErrCode() string {
	return "RETRY_EXHAUSTED"
}

func (err RetryExhaustedError) StatusCode() int {
	return http.StatusBadGateway
}

// StorageFailureError means the local persistence layer failed a read or
// write. Cache paths swallow it; the mutation queue surfaces it.
type StorageFailureError string

func (err StorageFailureError) Error() string {
	return string(err)
}

func (err StorageFailureError) ErrCode() string {
	return "STORAGE_FAILURE"
}

func (err StorageFailureError) StatusCode() int {
	return http.StatusInsufficientStorage
}

// NotCachedError is returned when a read cannot reach the remote service
// and no cached copy exists either.
type NotCachedError string

func (err NotCachedError) Error() string {
	return string(err)
}

func (err NotCachedError) ErrCode() string {
	return "NOT_CACHED"
}

func (err NotCachedError) StatusCode() int {
	return http.StatusNotFound
}
