package employee

import "time"

// Employee は社員エンティティです。
//
// ID はストアが採番する識別子、EmployeeID は業務上の社員番号です。
type Employee struct {
	ID         string
	EmployeeID string
	FullName   string
	Email      string
	Department string
	CreatedAt  time.Time
}
