package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
)

type markAttendanceRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=Present Absent"`
	Date       *Date  `json:"date" binding:"required"`
}

type attendanceResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Status     string `json:"status"`
	Date       Date   `json:"date"`
}

// AttendanceHandler は /attendance の HTTP 実装です。
type AttendanceHandler struct {
	svc attendance.UseCase
}

// NewAttendanceHandler は AttendanceHandler を生成します。
func NewAttendanceHandler(svc attendance.UseCase) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// List は勤怠記録を返します。employee_id クエリで絞り込めます。
func (h *AttendanceHandler) List(c *gin.Context) {
	records, err := h.svc.ListAttendance(c.Request.Context(), attendance.ListAttendanceInput{
		EmployeeID: c.Query("employee_id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]attendanceResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, toAttendanceResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Mark は出欠を登録します。同日の記録があれば置き換えます。
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	status, err := attendance.ParseStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	record, err := h.svc.MarkAttendance(c.Request.Context(), attendance.MarkAttendanceInput{
		EmployeeID: req.EmployeeID,
		Status:     status,
		Date:       req.Date.Time,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAttendanceResponse(record))
}

func toAttendanceResponse(r *attendance.Record) attendanceResponse {
	return attendanceResponse{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Status:     string(r.Status),
		Date:       Date{Time: r.Date},
	}
}
