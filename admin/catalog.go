package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/utils"
)

type ServiceInput struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Price       *float64             `json:"price"`
	Duration    *int                 `json:"duration"`
	Status      *models.EntityStatus `json:"status"`
}

func (in ServiceInput) fields() (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	var problems []string
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			problems = append(problems, "Name is required")
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			problems = append(problems, "Price cannot be negative")
		}
		fields["price"] = *in.Price
	}
	if in.Duration != nil {
		if *in.Duration <= 0 {
			problems = append(problems, "Duration must be a positive number of minutes")
		}
		fields["duration"] = *in.Duration
	}
	if in.Status != nil {
		if *in.Status != models.StatusActive && *in.Status != models.StatusInactive {
			problems = append(problems, "Status must be active or inactive")
		}
		fields["status"] = *in.Status
	}
	if len(problems) > 0 {
		return nil, utils.Validation("Service data is invalid", problems...)
	}
	return fields, nil
}

// ListServices returns the catalog; clients only ever see active services.
func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	services, err := s.services.List(ctx, activeOnly)
	if err != nil {
		return nil, utils.Persistence("list services", err)
	}
	return services, nil
}

func (s *Service) GetService(ctx context.Context, id uint) (*models.Service, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr("load service", "Service not found", err)
	}
	return svc, nil
}

func (s *Service) CreateService(ctx context.Context, adminID uint, in ServiceInput) (*models.Service, error) {
	if in.Name == nil || in.Duration == nil || in.Price == nil {
		return nil, utils.Validation("Service data is invalid", "Name, price and duration are required")
	}
	if _, err := in.fields(); err != nil {
		return nil, err
	}

	svc := &models.Service{
		Name:     strings.TrimSpace(*in.Name),
		Price:    *in.Price,
		Duration: *in.Duration,
		Status:   models.StatusActive,
	}
	if in.Description != nil {
		svc.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		svc.Status = *in.Status
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, utils.Persistence("create service", err)
	}
	s.LogAction(ctx, &adminID, ActionCreateService, map[string]interface{}{"service_id": svc.ID, "name": svc.Name})
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, adminID, id uint, in ServiceInput) (*models.Service, error) {
	fields, err := in.fields()
	if err != nil {
		return nil, err
	}
	if _, err := s.GetService(ctx, id); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.services.UpdateFields(ctx, id, fields); err != nil {
			return nil, utils.Persistence("update service", err)
		}
		s.LogAction(ctx, &adminID, ActionUpdateService, map[string]interface{}{"service_id": id, "fields": fields})
	}
	return s.GetService(ctx, id)
}

// DeleteService retires a service. Existing appointments keep pointing at it.
func (s *Service) DeleteService(ctx context.Context, adminID, id uint) error {
	if _, err := s.GetService(ctx, id); err != nil {
		return err
	}
	if err := s.services.UpdateFields(ctx, id, map[string]interface{}{"status": models.StatusInactive}); err != nil {
		return utils.Persistence("delete service", err)
	}
	s.LogAction(ctx, &adminID, ActionDeleteService, map[string]interface{}{"service_id": id})
	return nil
}

func (s *Service) ListTherapists(ctx context.Context, activeOnly bool) ([]models.Therapist, error) {
	therapists, err := s.therapists.List(ctx, activeOnly)
	if err != nil {
		return nil, utils.Persistence("list therapists", err)
	}
	return therapists, nil
}

func (s *Service) GetTherapist(ctx context.Context, id uint) (*models.Therapist, error) {
	t, err := s.therapists.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr("load therapist", "Therapist not found", err)
	}
	return t, nil
}

// TherapistInput holds the editable profile fields. Status follows the
// owning user and is changed through SetStatus or UpdateRole.
type TherapistInput struct {
	Name            *string `json:"name"`
	Specialization  *string `json:"specialization"`
	Bio             *string `json:"bio"`
	ExperienceYears *int    `json:"experience_years"`
}

func (s *Service) UpdateTherapist(ctx context.Context, adminID, id uint, in TherapistInput) (*models.Therapist, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.Validation("Name is required")
		}
		fields["name"] = name
	}
	if in.Specialization != nil {
		fields["specialization"] = strings.TrimSpace(*in.Specialization)
	}
	if in.Bio != nil {
		fields["bio"] = strings.TrimSpace(*in.Bio)
	}
	if in.ExperienceYears != nil {
		if *in.ExperienceYears < 0 {
			return nil, utils.Validation("Experience cannot be negative")
		}
		fields["experience_years"] = *in.ExperienceYears
	}

	if _, err := s.GetTherapist(ctx, id); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.therapists.UpdateFields(ctx, id, fields); err != nil {
			return nil, utils.Persistence("update therapist", err)
		}
		s.LogAction(ctx, &adminID, ActionUpdateTherapist, map[string]interface{}{"therapist_id": id, "fields": fields})
	}
	return s.GetTherapist(ctx, id)
}

// UploadPhoto stores a therapist photo with the image uploader and saves its URL.
func (s *Service) UploadPhoto(ctx context.Context, adminID, id uint, file interface{}) (*models.Therapist, error) {
	if s.uploader == nil {
		return nil, utils.Validation("Photo uploads are not configured")
	}
	if _, err := s.GetTherapist(ctx, id); err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, file, fmt.Sprintf("therapist_%d", id), "therapists")
	if err != nil {
		return nil, fmt.Errorf("upload therapist photo: %w", err)
	}
	if err := s.therapists.UpdateFields(ctx, id, map[string]interface{}{"photo_url": url}); err != nil {
		return nil, utils.Persistence("save therapist photo", err)
	}
	s.LogAction(ctx, &adminID, ActionUploadPhoto, map[string]interface{}{"therapist_id": id, "url": url})
	return s.GetTherapist(ctx, id)
}
