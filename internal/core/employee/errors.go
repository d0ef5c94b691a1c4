package employee

import "errors"

var (
	ErrInvalidID          = errors.New("employee: invalid id")
	ErrValidation         = errors.New("employee: validation failed")
	ErrEmployeeNotFound   = errors.New("employee: not found")
	ErrEmailAlreadyExists = errors.New("employee: email already exists")
	ErrForbidden          = errors.New("employee: forbidden")
)
