package server

// HTTPError carries a status code and a user-safe message alongside the
// underlying error, which is logged but never sent to the client.
type HTTPError struct {
	StatusCode int
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.ErrorLog
}
