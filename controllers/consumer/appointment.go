// Package consumer holds the handlers clients use to book appointments and
// ask questions.
package consumer

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/booking"
	"github.com/meinhoongagan/wellness-portal/controllers"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type AppointmentHandler struct {
	bookings *booking.Service
}

func NewAppointmentHandler(bookings *booking.Service) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings}
}

func (h *AppointmentHandler) request(c *fiber.Ctx) (booking.BookingRequest, error) {
	var req booking.BookingRequest
	if err := controllers.ParseBody(c, &req); err != nil {
		return req, err
	}
	req.UserID = controllers.Session(c).UserID
	return req, nil
}

// CreateAppointment books a slot for the caller.
func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	req, err := h.request(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	appointment, err := h.bookings.Book(c.UserContext(), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusCreated, appointment)
}

// ValidateAppointment runs the booking rules without booking and lists every
// problem found.
func (h *AppointmentHandler) ValidateAppointment(c *fiber.Ctx) error {
	req, err := h.request(c)
	if err != nil {
		return utils.Fail(c, err)
	}
	problems, err := h.bookings.Validator().ValidateBooking(c.UserContext(), req)
	if err != nil {
		return utils.Fail(c, err)
	}
	if problems == nil {
		problems = []string{}
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"valid": len(problems) == 0, "errors": problems})
}

func (h *AppointmentHandler) GetMyAppointments(c *fiber.Ctx) error {
	appointments, err := h.bookings.ListForUser(c.UserContext(), controllers.Session(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, appointments)
}

func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	sess := controllers.Session(c)
	appointment, err := h.bookings.Get(c.UserContext(), sess.UserID, sess.IsAdmin(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, appointment)
}

func (h *AppointmentHandler) CancelAppointment(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	appointment, err := h.bookings.Cancel(c.UserContext(), controllers.Session(c).UserID, id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, appointment)
}
