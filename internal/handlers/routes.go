package handlers

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler of the booking service
type Handlers struct {
	Pages     *PageHandler
	Orders    *OrderHandler
	Bookings  *BookingHandler
	Imports   *ImportHandler
	Tickets   *TicketHandler
	AdminAuth *AdminAuthHandler
}

// RegisterRoutes mounts the booking endpoints. adminOnly guards the listing and upload routes.
func RegisterRoutes(router gin.IRouter, h *Handlers, adminOnly gin.HandlerFunc) {
	router.GET("/", h.Pages.Index)
	router.GET("/index.html", h.Pages.Index)
	router.GET("/thanku.html", h.Pages.ThankYou)

	router.POST("/create-order", h.Orders.CreateOrder)
	router.POST("/post", h.Bookings.CreateBooking)
	router.GET("/tickets/:ticketNumber/pdf", h.Tickets.DownloadPDF)

	router.POST("/admin/login", h.AdminAuth.Login)

	admin := router.Group("/")
	admin.Use(adminOnly)
	{
		admin.GET("/get", h.Bookings.ListBookings)
		admin.POST("/upload-data", h.Imports.Upload)
	}
}
