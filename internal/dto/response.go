package dto

// Response is the uniform JSON envelope. Failures always render
// {"success":false,"message":...}; success responses add data.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

// OK builds a success envelope.
func OK(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Fail builds a failure envelope.
func Fail(message string) Response {
	return Response{Success: false, Message: message}
}
