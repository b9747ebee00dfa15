package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-lite/internal/adapters/http/handler"
	"github.com/ogurasousui/hrms-lite/internal/adapters/http/middleware"
	"github.com/ogurasousui/hrms-lite/internal/core/attendance"
	"github.com/ogurasousui/hrms-lite/internal/core/employee"
	"github.com/rs/zerolog"
)

// Deps はルーター構築に必要な依存です。
type Deps struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	Employees      employee.UseCase
	Attendance     attendance.UseCase
}

// New は HRMS の HTTP ルーターを構築します。
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.Recovery(),
		middleware.CORS(deps.AllowedOrigins),
	)

	employees := handler.NewEmployeeHandler(deps.Employees)
	attendanceHandler := handler.NewAttendanceHandler(deps.Attendance)

	r.GET("/health", handler.Health)

	r.GET("/employees", employees.List)
	r.POST("/employees", employees.Create)
	r.DELETE("/employees/:id", employees.Delete)

	r.GET("/attendance", attendanceHandler.List)
	r.POST("/attendance", attendanceHandler.Mark)

	return r
}
