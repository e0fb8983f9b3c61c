package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/notify"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type NotificationHandler struct {
	notifications *notify.Service
}

func NewNotificationHandler(notifications *notify.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List answers GET /notifications?unread=true.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	items, err := h.notifications.List(c.UserContext(), Session(c).UserID, c.QueryBool("unread", false))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, items)
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(c.UserContext(), Session(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := h.notifications.MarkRead(c.UserContext(), Session(c).UserID, id); err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"id": id, "is_read": true})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.notifications.MarkAllRead(c.UserContext(), Session(c).UserID)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"updated": n})
}
