package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vaxtrack/vaxtrack-api/internal/middleware"
)

// RegisterRoutes wires the full REST surface onto r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/register", h.RegisterUser)
		authRoutes.POST("/login", h.Login)
		authRoutes.POST("/forgot-password", h.ForgotPassword)
		authRoutes.POST("/verify-otp", h.VerifyOTP)
		authRoutes.POST("/reset-password", h.ResetPassword)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/profile", h.GetCurrentUser)
		api.PUT("/profile", h.UpdateCurrentUser)

		admin := middleware.RequireRoles("admin")

		users := api.Group("/users", admin)
		{
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
			users.PUT("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
		}

		api.GET("/vaccines", h.ListVaccines)
		api.GET("/vaccines/:id", h.GetVaccine)
		api.POST("/vaccines", admin, h.CreateVaccine)
		api.PUT("/vaccines/:id", admin, h.UpdateVaccine)
		api.DELETE("/vaccines/:id", admin, h.DeleteVaccine)

		api.GET("/facilities", h.ListFacilities)
		api.GET("/facilities/:id", h.GetFacility)
		api.POST("/facilities", admin, h.CreateFacility)
		api.PUT("/facilities/:id", admin, h.UpdateFacility)
		api.DELETE("/facilities/:id", admin, h.DeleteFacility)

		api.POST("/bookings", middleware.RequireRoles("user"), h.CreateBooking)
		api.GET("/bookings", admin, h.ListBookings)
		api.GET("/bookings/user/:id", h.GetUserBookings)
		api.PUT("/bookings/:id/status", middleware.RequireRoles("doctor", "admin"), h.UpdateBookingStatus)
		api.DELETE("/bookings/:id", h.CancelBooking)

		doctor := api.Group("/doctor", middleware.RequireRoles("doctor"))
		{
			doctor.GET("/shifts", h.ListShifts)
			doctor.POST("/shifts", h.RegisterShift)
			doctor.DELETE("/shifts/:id", h.CancelShift)
			doctor.GET("/shift-bookings", h.ShiftBookings)
			doctor.POST("/bookings/:id/complete", h.CompleteBooking)
		}

		api.GET("/vaccinations", admin, h.ListVaccinations)
		api.GET("/vaccinations/stats", admin, h.VaccinationStats)
		api.GET("/vaccinations/user/:id", h.GetUserVaccinations)
		api.GET("/vaccinations/:id", admin, h.GetVaccination)
		api.PUT("/vaccinations/:id", admin, h.UpdateVaccination)
		api.DELETE("/vaccinations/:id", admin, h.DeleteVaccination)
	}
}
