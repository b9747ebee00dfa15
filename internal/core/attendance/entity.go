package attendance

import "time"

// Status は出欠の状態を表します。
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// Record は勤怠記録エンティティです。
//
// EmployeeID は社員のストア識別子を参照します。Date は UTC の 0 時に正規化された日付です。
type Record struct {
	ID         string
	EmployeeID string
	Status     Status
	Date       time.Time
}
