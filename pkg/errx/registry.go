package errx

// ErrorCode is a registered code. Its Code is "<PREFIX>_<code>".
type ErrorCode struct {
	Code       string
	Type       Type
	HTTPStatus int
	Message    string
}

// Registry holds the codes of one package under a common prefix.
type Registry struct {
	prefix string
}

func NewRegistry(prefix string) *Registry {
	return &Registry{prefix: prefix}
}

func (r *Registry) Register(code string, errType Type, httpStatus int, message string) *ErrorCode {
	return &ErrorCode{
		Code:       r.prefix + "_" + code,
		Type:       errType,
		HTTPStatus: httpStatus,
		Message:    message,
	}
}

func (r *Registry) New(code *ErrorCode) *Error {
	return r.NewWithMessage(code, code.Message)
}

func (r *Registry) NewWithMessage(code *ErrorCode, message string) *Error {
	return &Error{
		Code:       code.Code,
		Message:    message,
		Type:       code.Type,
		HTTPStatus: code.HTTPStatus,
		Details:    make(map[string]interface{}),
	}
}

func (r *Registry) NewWithCause(code *ErrorCode, cause error) *Error {
	e := r.New(code)
	e.Err = cause
	return e
}
