package handler

import "github.com/gin-gonic/gin"

// Handlers groups every API handler mounted under the API prefix.
type Handlers struct {
	Courses     *CourseHandler
	Assignments *AssignmentHandler
	Grades      *GradeHandler
	Students    *StudentHandler
	Dashboard   *DashboardHandler
	Exports     *ExportHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the API routes on group. Nil handlers are skipped.
func RegisterRoutes(group gin.IRouter, h Handlers) {
	if h.Courses != nil {
		courses := group.Group("/courses")
		courses.GET("", h.Courses.List)
		courses.POST("", h.Courses.Create)
		courses.GET("/:id", h.Courses.Get)
		courses.PUT("/:id", h.Courses.Update)
		courses.DELETE("/:id", h.Courses.Delete)
		courses.GET("/:id/report", h.Courses.Report)
	}

	if h.Assignments != nil {
		assignments := group.Group("/assignments")
		assignments.GET("", h.Assignments.List)
		assignments.POST("", h.Assignments.Create)
		assignments.GET("/grouped", h.Assignments.Grouped)
		assignments.GET("/counts", h.Assignments.Counts)
		assignments.GET("/:id", h.Assignments.Get)
		assignments.PUT("/:id", h.Assignments.Update)
		assignments.PATCH("/:id/toggle", h.Assignments.Toggle)
		assignments.DELETE("/:id", h.Assignments.Delete)
	}

	if h.Grades != nil {
		grades := group.Group("/grades")
		grades.GET("", h.Grades.List)
		grades.POST("", h.Grades.Create)
		grades.GET("/:id", h.Grades.Get)
		grades.PUT("/:id", h.Grades.Update)
		grades.DELETE("/:id", h.Grades.Delete)
	}

	if h.Students != nil {
		students := group.Group("/students")
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
	}

	if h.Dashboard != nil {
		group.GET("/dashboard", h.Dashboard.Summary)
	}

	if h.Exports != nil {
		exports := group.Group("/exports")
		exports.POST("", h.Exports.Create)
		exports.GET("/download/:token", h.Exports.Download)
		exports.GET("/:id", h.Exports.Status)
	}

	if h.Metrics != nil {
		group.GET("/metrics/summary", h.Metrics.Snapshot)
	}
}
