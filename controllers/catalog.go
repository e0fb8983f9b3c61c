package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// Catalog reads services and therapists.
type Catalog interface {
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	ListTherapists(ctx context.Context, activeOnly bool) ([]models.Therapist, error)
	GetTherapist(ctx context.Context, id uint) (*models.Therapist, error)
}

// SlotFinder lists a therapist's free start times on a date.
type SlotFinder interface {
	AvailableSlots(ctx context.Context, therapistID uint, date string) ([]string, error)
}

// CatalogHandler serves the public, read-only view of services and therapists.
// Inactive entries are hidden.
type CatalogHandler struct {
	catalog Catalog
	slots   SlotFinder
}

func NewCatalogHandler(catalog Catalog, slots SlotFinder) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, slots: slots}
}

func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	services, err := h.catalog.ListServices(c.UserContext(), true)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, services)
}

func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	id, err := ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	svc, err := h.catalog.GetService(c.UserContext(), id)
	if err == nil && !svc.IsActive() {
		err = utils.NotFound("Service not found")
	}
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, svc)
}

func (h *CatalogHandler) ListTherapists(c *fiber.Ctx) error {
	therapists, err := h.catalog.ListTherapists(c.UserContext(), true)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, therapists)
}

func (h *CatalogHandler) GetTherapist(c *fiber.Ctx) error {
	id, err := ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	t, err := h.catalog.GetTherapist(c.UserContext(), id)
	if err == nil && !t.IsActive() {
		err = utils.NotFound("Therapist not found")
	}
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, t)
}

// AvailableSlots answers GET /therapists/:id/slots?date=YYYY-MM-DD.
func (h *CatalogHandler) AvailableSlots(c *fiber.Ctx) error {
	id, err := ParamID(c, "id")
	if err != nil {
		return utils.Fail(c, err)
	}
	date := c.Query("date")
	slots, err := h.slots.AvailableSlots(c.UserContext(), id, date)
	if err != nil {
		return utils.Fail(c, err)
	}
	return utils.OK(c, fiber.StatusOK, fiber.Map{"therapist_id": id, "date": date, "slots": slots})
}
