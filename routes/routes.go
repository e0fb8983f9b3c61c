package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/controllers"
	adminctl "github.com/meinhoongagan/wellness-portal/controllers/admin"
	"github.com/meinhoongagan/wellness-portal/controllers/consumer"
	"github.com/meinhoongagan/wellness-portal/controllers/therapist"
	"github.com/meinhoongagan/wellness-portal/middleware"
	"github.com/meinhoongagan/wellness-portal/models"
)

// Handlers is everything the router mounts. Protected must be the session
// middleware built by middleware.Protected.
type Handlers struct {
	Protected     fiber.Handler
	Auth          *controllers.AuthHandler
	Catalog       *controllers.CatalogHandler
	Notifications *controllers.NotificationHandler
	Appointments  *consumer.AppointmentHandler
	Inquiries     *consumer.InquiryHandler
	Schedule      *therapist.ScheduleHandler
	Admin         *adminctl.Handler
}

// Setup mounts every route group on app.
func Setup(app *fiber.App, h Handlers) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupAuthRoutes(app, h)
	SetupCatalogRoutes(app, h)
	SetupNotificationRoutes(app, h)
	SetupAppointmentRoutes(app, h)
	SetupInquiryRoutes(app, h)
	SetupTherapistRoutes(app, h)
	SetupAdminRoutes(app, h)
}

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, h Handlers) {
	auth := app.Group("/auth")

	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)

	auth.Get("/me", h.Protected, h.Auth.Me)
	auth.Patch("/me", h.Protected, h.Auth.UpdateProfile)
	auth.Post("/change-password", h.Protected, h.Auth.ChangePassword)
	auth.Post("/logout", h.Protected, h.Auth.Logout)
}

func SetupCatalogRoutes(app *fiber.App, h Handlers) {
	app.Get("/services", h.Catalog.ListServices)
	app.Get("/services/:id", h.Catalog.GetService)
	app.Get("/therapists", h.Catalog.ListTherapists)
	app.Get("/therapists/:id", h.Catalog.GetTherapist)
	app.Get("/therapists/:id/slots", h.Catalog.AvailableSlots)
}

func SetupNotificationRoutes(app *fiber.App, h Handlers) {
	n := app.Group("/notifications", h.Protected)
	n.Get("/", h.Notifications.List)
	n.Get("/unread-count", h.Notifications.UnreadCount)
	n.Post("/read-all", h.Notifications.MarkAllRead)
	n.Post("/:id/read", h.Notifications.MarkRead)
}

// SetupAppointmentRoutes configures the client side of booking
func SetupAppointmentRoutes(app *fiber.App, h Handlers) {
	appointment := app.Group("/appointments", h.Protected)
	appointment.Get("/", h.Appointments.GetMyAppointments)
	appointment.Get("/:id", h.Appointments.GetAppointment)
	appointment.Post("/", middleware.RequireRole(models.RoleClient), h.Appointments.CreateAppointment)
	appointment.Post("/validate", middleware.RequireRole(models.RoleClient), h.Appointments.ValidateAppointment)
	appointment.Post("/:id/cancel", h.Appointments.CancelAppointment)
}

func SetupInquiryRoutes(app *fiber.App, h Handlers) {
	inquiry := app.Group("/inquiries", h.Protected)
	inquiry.Get("/", h.Inquiries.GetMyInquiries)
	inquiry.Get("/:id", h.Inquiries.GetInquiry)
	inquiry.Post("/", h.Inquiries.CreateInquiry)
}

func SetupTherapistRoutes(app *fiber.App, h Handlers) {
	// not "/therapist": fiber matches group prefixes literally, which would
	// catch the public /therapists routes
	t := app.Group("/schedule", h.Protected, middleware.RequireRole(models.RoleTherapist))
	t.Get("/profile", h.Schedule.GetProfile)
	t.Get("/dashboard", h.Schedule.GetDashboardOverview)
	t.Get("/appointments", h.Schedule.GetAppointments)
	t.Patch("/appointments/:id/status", h.Schedule.UpdateAppointmentStatus)
}

func SetupAdminRoutes(app *fiber.App, h Handlers) {
	admin := app.Group("/admin", h.Protected, middleware.RequireRole(models.RoleAdmin))

	admin.Get("/dashboard", h.Admin.GetDashboardOverview)

	admin.Get("/users", h.Admin.ListUsers)
	admin.Post("/users", h.Admin.CreateUser)
	admin.Get("/users/:id", h.Admin.GetUser)
	admin.Patch("/users/:id/role", h.Admin.UpdateUserRole)
	admin.Patch("/users/:id/status", h.Admin.UpdateUserStatus)

	admin.Get("/appointments", h.Admin.ListAppointments)
	admin.Patch("/appointments/:id", h.Admin.UpdateAppointment)
	admin.Post("/appointments/reminders", h.Admin.SendReminders)

	admin.Get("/services", h.Admin.ListServices)
	admin.Post("/services", h.Admin.CreateService)
	admin.Patch("/services/:id", h.Admin.UpdateService)
	admin.Delete("/services/:id", h.Admin.DeleteService)

	admin.Get("/therapists", h.Admin.ListTherapists)
	admin.Patch("/therapists/:id", h.Admin.UpdateTherapist)
	admin.Post("/therapists/:id/photo", h.Admin.UploadTherapistPhoto)

	admin.Get("/inquiries", h.Admin.ListInquiries)
	admin.Post("/inquiries/:id/respond", h.Admin.RespondInquiry)
	admin.Post("/inquiries/:id/close", h.Admin.CloseInquiry)

	admin.Get("/settings", h.Admin.ListSettings)
	admin.Get("/settings/:key", h.Admin.GetSetting)
	admin.Put("/settings/:key", h.Admin.UpsertSetting)

	admin.Post("/maintenance/:job", h.Admin.RunMaintenance)
	admin.Get("/logs", h.Admin.ListLogs)
}
