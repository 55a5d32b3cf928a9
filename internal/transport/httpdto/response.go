package httpdto

// Response is the uniform envelope for every REST endpoint. Data is set on
// success, Error/Code on failure, never both.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func NewErrorResponse(err, code string) Response[any] {
	return Response[any]{Success: false, Error: err, Code: code}
}
