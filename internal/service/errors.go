package service

import "fmt"

// BusinessError carries a stable code the handlers map to an HTTP status and
// a message fit for the UI. Only two remote failures get tailored codes
// (duplicate name, entity in use); the rest stay generic.
type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{Key: key, Payload: payload}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

func NewNotFound(resource string, id string) *BusinessError {
	return &BusinessError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("invalid value for '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewDuplicateName(resource, name string) *BusinessError {
	return &BusinessError{
		Code:    "DUPLICATE_NAME",
		Message: fmt.Sprintf("a %s named '%s' already exists in this company", resource, name),
		Details: map[string]any{
			"resource": resource,
			"name":     name,
		},
	}
}

func NewInUse(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    "RESOURCE_IN_USE",
		Message: fmt.Sprintf("%s %s is still referenced by tasks and cannot be removed", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}
