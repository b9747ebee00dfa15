package employee

import "errors"

var (
	ErrInvalidID               = errors.New("employee: invalid id")
	ErrInvalidEmployeeID       = errors.New("employee: invalid employee id")
	ErrInvalidFullName         = errors.New("employee: invalid full name")
	ErrInvalidEmail            = errors.New("employee: invalid email")
	ErrInvalidDepartment       = errors.New("employee: invalid department")
	ErrEmployeeNotFound        = errors.New("employee: not found")
	ErrEmployeeIDAlreadyExists = errors.New("employee: employee id already exists")
	ErrEmailAlreadyExists      = errors.New("employee: email already registered")
)
