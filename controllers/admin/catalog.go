package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/admin"
	"github.com/meinhoongagan/wellness-portal/controllers"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// maxPhotoSize caps therapist photo uploads.
const maxPhotoSize = 5 << 20

func (h *Handler) ListServices(c *fiber.Ctx) error {
	services, err := h.admin.ListServices(c.UserContext(), false)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, services)
}

func (h *Handler) CreateService(c *fiber.Ctx) error {
	var in admin.ServiceInput
	if err := controllers.ParseBody(c, &in); err != nil {
		return utils.Fail(c, err)
	}
	svc, err := h.admin.CreateService(c.UserContext(), adminID(c), in)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusCreated, svc)
}

func (h *Handler) UpdateService(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var in admin.ServiceInput
	if err := controllers.ParseBody(c, &in); err != nil {
		return utils.Fail(c, err)
	}
	svc, err := h.admin.UpdateService(c.UserContext(), adminID(c), id, in)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, svc)
}

func (h *Handler) DeleteService(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	if err := h.admin.DeleteService(c.UserContext(), adminID(c), id); err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"message": "Service deactivated"})
}

func (h *Handler) ListTherapists(c *fiber.Ctx) error {
	therapists, err := h.admin.ListTherapists(c.UserContext(), false)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, therapists)
}

func (h *Handler) UpdateTherapist(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	var in admin.TherapistInput
	if err := controllers.ParseBody(c, &in); err != nil {
		return utils.Fail(c, err)
	}
	t, err := h.admin.UpdateTherapist(c.UserContext(), adminID(c), id, in)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, t)
}

// UploadTherapistPhoto takes a multipart "photo" field.
func (h *Handler) UploadTherapistPhoto(c *fiber.Ctx) error {
	id, err := controllers.ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	header, err := c.FormFile("photo")
	if err != nil {
		return utils.Fail(c, utils.Validation("A photo file is required"))
	}
	if header.Size > maxPhotoSize {
		return utils.Fail(c, utils.Validation("Photo must be 5MB or smaller"))
	}
	file, err := header.Open()
	if err != nil {
		return utils.Fail(c, utils.Validation("Cannot read the uploaded photo"))
	}
	defer file.Close()

	t, err := h.admin.UploadPhoto(c.UserContext(), adminID(c), id, file)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, t)
}

// Settings

func (h *Handler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.admin.ListSettings(c.UserContext())
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, settings)
}

func (h *Handler) GetSetting(c *fiber.Ctx) error {
	setting, err := h.admin.GetSetting(c.UserContext(), c.Params("key"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, setting)
}

func (h *Handler) UpsertSetting(c *fiber.Ctx) error {
	var req struct {
		Value string `json:"value"`
	}
	if err := controllers.ParseBody(c, &req); err != nil {
		return utils.Fail(c, err)
	}
	setting, err := h.admin.UpsertSetting(c.UserContext(), adminID(c), c.Params("key"), req.Value)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, setting)
}

// Maintenance and audit

// RunMaintenance answers POST /admin/maintenance/:job.
func (h *Handler) RunMaintenance(c *fiber.Ctx) error {
	aid := adminID(c)
	report, err := h.admin.RunJob(c.UserContext(), &aid, c.Params("job"))
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, report)
}

func (h *Handler) ListLogs(c *fiber.Ctx) error {
	logs, err := h.admin.ListLogs(c.UserContext(), admin.LogFilter{
		AdminID: uint(c.QueryInt("admin_id")),
		Action:  c.Query("action"),
		Limit:   c.QueryInt("limit", 100),
	})
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, logs)
}
