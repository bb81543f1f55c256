package dto

// BaseError универсальный корневой формат ошибки
// Code — машинно-ориентированный код (snake_case)
// Message — краткое человеко-читаемое описание
// Details — дополнительная строка (пояснение)
// Fields — для валидационных ошибок (имя поля + текст)
type BaseError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details string       `json:"details,omitempty"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag,omitempty"`
}

func NewValidationError(msg string, fields []FieldError) BaseError {
	return BaseError{Code: "validation_error", Message: msg, Fields: fields}
}

// NewConflictError: code уточняет причину (out_of_stock, order_closed, ...).
func NewConflictError(code, msg string) BaseError {
	if code == "" {
		code = "conflict"
	}
	return BaseError{Code: code, Message: msg}
}

func NewNotFoundError(msg string) BaseError {
	return BaseError{Code: "not_found", Message: msg}
}

func NewRateLimitedError(msg string) BaseError {
	return BaseError{Code: "rate_limited", Message: msg}
}

func NewInternalError(details string) BaseError {
	return BaseError{Code: "internal_error", Message: "internal server error", Details: details}
}
