// Package admin holds the back-office handlers. Every route is admin-only.
package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/admin"
	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/booking"
	"github.com/meinhoongagan/wellness-portal/controllers"
	"github.com/meinhoongagan/wellness-portal/inquiry"
	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/notify"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type Handler struct {
	admin         *admin.Service
	bookings      *booking.Service
	inquiries     *inquiry.Service
	notifications *notify.Service
}

func NewHandler(a *admin.Service, bookings *booking.Service, inquiries *inquiry.Service, notifications *notify.Service) *Handler {
	return &Handler{admin: a, bookings: bookings, inquiries: inquiries, notifications: notifications}
}

var timeNow = time.Now

func adminID(c *fiber.Ctx) uint {
	return controllers.Session(c).UserID
}

func (h *Handler) GetDashboardOverview(c *fiber.Ctx) error {
	overview, err := h.bookings.Overview(c.UserContext(), 0)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, overview)
}

// Users

// ListUsers answers GET /admin/users?role=&status=&q=&page=&limit=.
func (h *Handler) ListUsers(c *fiber.Ctx) error {
	page, limit := controllers.PageParams(c)
	users, total, err := h.admin.ListUsers(c.UserContext(), repository.UserFilter{
		Role:   models.Role(c.Query("role")),
		Status: models.EntityStatus(c.Query("status")),
		Search: c.Query("q"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, controllers.Paged{Items: users, Total: total, Page: page, Limit: limit})
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	user, err := h.admin.GetUser(c.UserContext(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, user)
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var in auth.RegisterInput
	if err := controllers.ParseBody(c, &in); err != nil {
		return utils.Fail(c, err)
	}
	user, err := h.admin.CreateUser(c.UserContext(), adminID(c), in)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusCreated, user)
}

func (h *Handler) UpdateUserRole(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := controllers.ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	user, err := h.admin.UpdateRole(c.UserContext(), adminID(c), id, req.Role)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, user)
}

func (h *Handler) UpdateUserStatus(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var req struct {
		Status models.EntityStatus `json:"status"`
	}
	if err := controllers.ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	user, err := h.admin.SetStatus(c.UserContext(), adminID(c), id, req.Status)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, user)
}

// Appointments

// ListAppointments answers GET /admin/appointments?user_id=&therapist_id=&status=&from=&to=.
func (h *Handler) ListAppointments(c *fiber.Ctx) error {
	page, limit := controllers.PageParams(c)
	appointments, total, err := h.bookings.List(c.UserContext(), repository.AppointmentFilter{
		UserID:      uint(c.QueryInt("user_id")),
		TherapistID: uint(c.QueryInt("therapist_id")),
		Status:      models.AppointmentStatus(c.Query("status")),
		DateFrom:    c.Query("from"),
		DateTo:      c.Query("to"),
		Page:        page,
		Limit:       limit,
	})
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, controllers.Paged{Items: appointments, Total: total, Page: page, Limit: limit})
}

func (h *Handler) UpdateAppointment(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var req struct {
		Status     models.AppointmentStatus `json:"status"`
		AdminNotes *string                  `json:"admin_notes"`
	}
	if err := controllers.ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	appointment, err := h.bookings.UpdateStatus(c.UserContext(), id, req.Status, req.AdminNotes)
	if err != nil {
		return utils.Fail(c, err)
	}
	aid := adminID(c)
	h.admin.LogAction(c.UserContext(), &aid, admin.ActionUpdateAppointment, fiber.Map{
		"appointment_id": id, "status": appointment.Status,
	})
	return utils.OK(c, fiber.StatusOK, appointment)
}

// SendReminders emails tomorrow's confirmed appointments that were not
// reminded yet.
func (h *Handler) SendReminders(c *fiber.Ctx) error {
	sent, err := h.notifications.SendReminders(c.UserContext(), timeNow())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"sent": sent})
}

// Inquiries

func (h *Handler) ListInquiries(c *fiber.Ctx) error {
	page, limit := controllers.PageParams(c)
	inquiries, total, err := h.inquiries.List(c.UserContext(), repository.InquiryFilter{
		Status:   models.InquiryStatus(c.Query("status")),
		Priority: models.InquiryPriority(c.Query("priority")),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, controllers.Paged{Items: inquiries, Total: total, Page: page, Limit: limit})
}

func (h *Handler) RespondInquiry(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var req struct {
		Response string `json:"response"`
	}
	if err := controllers.ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	inq, err := h.inquiries.Respond(c.UserContext(), adminID(c), id, req.Response)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, inq)
}

func (h *Handler) CloseInquiry(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	inq, err := h.inquiries.Close(c.UserContext(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, inq)
}
