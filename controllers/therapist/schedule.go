// Package therapist holds the handlers therapists use to manage the
// appointments booked with them.
package therapist

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/booking"
	"github.com/meinhoongagan/wellness-portal/controllers"
	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type ScheduleHandler struct {
	bookings *booking.Service
}

func NewScheduleHandler(bookings *booking.Service) *ScheduleHandler {
	return &ScheduleHandler{bookings: bookings}
}

// GetProfile returns the caller's therapist profile.
func (h *ScheduleHandler) GetProfile(c *fiber.Ctx) error {
	t, err := h.bookings.TherapistOf(c.UserContext(), controllers.Session(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, t)
}

// GetDashboardOverview summarises the caller's appointments.
func (h *ScheduleHandler) GetDashboardOverview(c *fiber.Ctx) error {
	t, err := h.bookings.TherapistOf(c.UserContext(), controllers.Session(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	overview, err := h.bookings.Overview(c.UserContext(), t.ID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, overview)
}

// GetAppointments answers GET /schedule/appointments?status=&from=&to=&page=&limit=.
func (h *ScheduleHandler) GetAppointments(c *fiber.Ctx) error {
	page, limit := controllers.PageParams(c)
	f := repository.AppointmentFilter{
		Status:   models.AppointmentStatus(c.Query("status")),
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
		Page:     page,
		Limit:    limit,
	}
	appointments, total, err := h.bookings.ListForTherapist(c.UserContext(), controllers.Session(c).UserID, f)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, controllers.Paged{Items: appointments, Total: total, Page: page, Limit: limit})
}

func (h *ScheduleHandler) UpdateAppointmentStatus(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var req struct {
		Status models.AppointmentStatus `json:"status"`
	}
	if err := controllers.ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	appointment, err := h.bookings.UpdateStatusAsTherapist(c.UserContext(), controllers.Session(c).UserID, id, req.Status)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, appointment)
}
