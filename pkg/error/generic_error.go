package error

// GenericError is implemented by every typed service error so the REST
// recovery middleware can map it onto an HTTP status and error code.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}
