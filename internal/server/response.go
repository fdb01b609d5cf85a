package server

// BaseResponse is the envelope of every API response
type BaseResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	// Fatal marks configuration errors the client cannot fix by retrying
	Fatal bool `json:"fatal,omitempty"`
}

func SuccessResponse[T any](message string, data T) BaseResponse[T] {
	return BaseResponse[T]{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string, fatal bool) BaseResponse[any] {
	return BaseResponse[any]{Success: false, Message: message, Fatal: fatal}
}
