package consumer

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/controllers"
	"github.com/meinhoongagan/wellness-portal/inquiry"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type InquiryHandler struct {
	inquiries *inquiry.Service
}

func NewInquiryHandler(inquiries *inquiry.Service) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries}
}

func (h *InquiryHandler) CreateInquiry(c *fiber.Ctx) error {
	var in inquiry.CreateInput
	if err := controllers.ParseBody(c, &in); err != nil {
		return utils.Fail(c, err)
	}
	inq, err := h.inquiries.Create(c.UserContext(), controllers.Session(c).UserID, in)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusCreated, inq)
}

func (h *InquiryHandler) GetMyInquiries(c *fiber.Ctx) error {
	inquiries, err := h.inquiries.ListMine(c.UserContext(), controllers.Session(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, inquiries)
}

func (h *InquiryHandler) GetInquiry(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	sess := controllers.Session(c)
	inq, err := h.inquiries.Get(c.UserContext(), sess.UserID, sess.IsAdmin(), id)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, inq)
}
