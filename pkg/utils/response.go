package utils

type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics on a non-nil error so the REST recovery middleware
// can translate typed service errors into the response envelope.
func PanicIfNeeded(err error) {
	if err != nil {
		panic(err)
	}
}
