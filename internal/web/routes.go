package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/matcher"
	"github.com/kozaktomas/face-attendance/internal/store"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes(st store.Store, m *matcher.Matcher) {
	facesHandler := handlers.NewFacesHandler(st, m)
	attendanceHandler := handlers.NewAttendanceHandler(st)
	employeesHandler := handlers.NewEmployeesHandler(st)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)

		// Faces
		r.Post("/faces", facesHandler.Register)
		r.Get("/faces", facesHandler.List)
		r.Delete("/faces/{encodingID}", facesHandler.Delete)
		r.Post("/faces/match", facesHandler.Match)

		// Attendance
		r.Post("/attendance", attendanceHandler.Add)
		r.Get("/attendance", attendanceHandler.List)
		r.Put("/attendance/{recordID}", attendanceHandler.UpdateTag)

		// Employees
		r.Get("/employees", employeesHandler.List)
		r.Get("/employees/{employeeID}", employeesHandler.Get)
		r.Put("/employees/{employeeID}", employeesHandler.Update)
		r.Get("/employees/{employeeID}/faces", facesHandler.ListForEmployee)
	})
}
