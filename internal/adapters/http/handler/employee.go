package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	"github.com/rs/zerolog"
)

const employeeDeletedMessage = "Employee deleted successfully"

type createEmployeeRequest struct {
	EmployeeID string `json:"employeeId" binding:"required,max=64"`
	FullName   string `json:"fullName" binding:"required,max=200"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required,max=100"`
}

type employeeResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
}

type deleteEmployeeResponse struct {
	Message           string `json:"message"`
	RemovedAttendance int64  `json:"removedAttendance"`
}

// EmployeeHandler は /employees の HTTP 実装です。
type EmployeeHandler struct {
	svc employee.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

// List は全社員を返します。
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.svc.ListEmployees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		resp = append(resp, toEmployeeResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// Create は社員を作成します。
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	created, err := h.svc.CreateEmployee(c.Request.Context(), employee.CreateEmployeeInput{
		EmployeeID: req.EmployeeID,
		FullName:   req.FullName,
		Email:      req.Email,
		Department: req.Department,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(created))
}

// Delete は社員とその勤怠記録を削除します。
func (h *EmployeeHandler) Delete(c *gin.Context) {
	result, err := h.svc.DeleteEmployee(c.Request.Context(), employee.DeleteEmployeeInput{ID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}

	zerolog.Ctx(c.Request.Context()).Info().
		Str("employee_id", result.Employee.EmployeeID).
		Int64("removed_attendance", result.RemovedAttendance).
		Msg("employee deleted")

	c.JSON(http.StatusOK, deleteEmployeeResponse{
		Message:           employeeDeletedMessage,
		RemovedAttendance: result.RemovedAttendance,
	})
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		FullName:   e.FullName,
		Email:      e.Email,
		Department: e.Department,
		CreatedAt:  e.CreatedAt.UTC(),
	}
}
