package serverutils

// Response is the JSON envelope every endpoint returns. ErrorCode carries a
// machine-readable code (e.g. FREE_LIMIT_REACHED) when clients need to branch
// on the failure kind rather than the HTTP status.
type Response[T any] struct {
	Success   bool   `json:"success"`
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Code:    200,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response[any] {
	return Response[any]{
		Success: false,
		Code:    code,
		Message: message,
	}
}

func ErrorResponseWithCode(code int, errorCode, message string) Response[any] {
	return Response[any]{
		Success:   false,
		Code:      code,
		ErrorCode: errorCode,
		Message:   message,
	}
}
