package handler

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

type dateFormatError struct {
	raw string
	err error
}

func (e *dateFormatError) Error() string {
	return fmt.Sprintf("invalid date %q: %v", e.raw, e.err)
}

func (e *dateFormatError) Unwrap() error {
	return e.err
}

// Date は YYYY-MM-DD 形式で入出力する暦日です。
type Date struct {
	time.Time
}

// UnmarshalJSON は "YYYY-MM-DD" 形式の文字列を解釈します。
func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return &dateFormatError{raw: string(b), err: err}
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return &dateFormatError{raw: raw, err: err}
	}
	d.Time = t
	return nil
}

// MarshalJSON は UTC の暦日を "YYYY-MM-DD" 形式で出力します。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.UTC().Format(dateLayout))
}
