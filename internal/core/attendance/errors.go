package attendance

import "errors"

var (
	ErrInvalidStatus       = errors.New("attendance: invalid status")
	ErrInvalidDate         = errors.New("attendance: invalid date")
	ErrEmployeeIDRequired  = errors.New("attendance: employee id is required")
	ErrInvalidEmployeeID   = errors.New("attendance: invalid employee id format")
	ErrEmployeeNotFound    = errors.New("attendance: employee not found")
	ErrRecordNotFound      = errors.New("attendance: record not found")
	ErrRecordAlreadyExists = errors.New("attendance: record already exists for this day")
)
