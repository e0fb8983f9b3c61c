// Package inquiry handles client questions and the staff answers to them.
package inquiry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// Notifier delivers the in-app message a client gets when answered.
type Notifier interface {
	Notify(ctx context.Context, userID uint, title, message, kind string) error
}

type Service struct {
	inquiries *repository.InquiryRepository
	notifier  Notifier
	now       func() time.Time
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{
		inquiries: repository.NewInquiryRepository(db),
		notifier:  notifier,
		now:       time.Now,
	}
}

type CreateInput struct {
	Subject  string                 `json:"subject"`
	Message  string                 `json:"message"`
	Priority models.InquiryPriority `json:"priority"`
}

func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Inquiry, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	var problems []string
	if in.Subject == "" {
		problems = append(problems, "Subject is required")
	} else if len(in.Subject) > 200 {
		problems = append(problems, "Subject must be at most 200 characters")
	}
	if in.Message == "" {
		problems = append(problems, "Message is required")
	}
	switch in.Priority {
	case "", models.PriorityLow, models.PriorityNormal, models.PriorityHigh:
	default:
		problems = append(problems, fmt.Sprintf("Unknown priority %q", in.Priority))
	}
	if len(problems) > 0 {
		return nil, utils.Validation("Inquiry is invalid", problems...)
	}

	inq := &models.Inquiry{UserID: userID, Subject: in.Subject, Message: in.Message, Priority: in.Priority}
	if err := s.inquiries.Create(ctx, inq); err != nil {
		return nil, utils.Persistence("create inquiry", err)
	}
	logrus.WithFields(logrus.Fields{"inquiry_id": inq.ID, "user_id": userID}).Info("inquiry created")
	return inq, nil
}

func (s *Service) ListMine(ctx context.Context, userID uint) ([]models.Inquiry, error) {
	inquiries, _, err := s.inquiries.List(ctx, repository.InquiryFilter{UserID: userID, Limit: 100})
	if err != nil {
		return nil, utils.Persistence("list own inquiries", err)
	}
	return inquiries, nil
}

func (s *Service) List(ctx context.Context, f repository.InquiryFilter) ([]models.Inquiry, int64, error) {
	inquiries, total, err := s.inquiries.List(ctx, f)
	if err != nil {
		return nil, 0, utils.Persistence("list inquiries", err)
	}
	return inquiries, total, nil
}

// Get returns an inquiry; clients only see their own.
func (s *Service) Get(ctx context.Context, userID uint, isAdmin bool, id uint) (*models.Inquiry, error) {
	inq, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && inq.UserID != userID {
		return nil, utils.NotFound("Inquiry not found")
	}
	return inq, nil
}

// Respond stores a staff answer and tells the client about it.
func (s *Service) Respond(ctx context.Context, adminID, id uint, response string) (*models.Inquiry, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, utils.Validation("Response is required")
	}

	inq, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if inq.Status == models.InquiryClosed {
		return nil, utils.Conflict("Inquiry is closed")
	}

	now := s.now()
	err = s.inquiries.UpdateFields(ctx, id, map[string]interface{}{
		"status":       models.InquiryAnswered,
		"response":     response,
		"responded_by": adminID,
		"responded_at": now,
	})
	if err != nil {
		return nil, utils.Persistence("respond to inquiry", err)
	}

	err = s.notifier.Notify(ctx, inq.UserID, "Your inquiry was answered",
		fmt.Sprintf("We replied to %q.", inq.Subject), "inquiry")
	if err != nil {
		logrus.WithError(err).WithField("inquiry_id", id).Warn("inquiry notification not stored")
	}
	return s.find(ctx, id)
}

// Close marks an inquiry as done. Closing twice is a no-op.
func (s *Service) Close(ctx context.Context, id uint) (*models.Inquiry, error) {
	inq, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if inq.Status == models.InquiryClosed {
		return inq, nil
	}
	if err := s.inquiries.UpdateFields(ctx, id, map[string]interface{}{"status": models.InquiryClosed}); err != nil {
		return nil, utils.Persistence("close inquiry", err)
	}
	inq.Status = models.InquiryClosed
	return inq, nil
}

func (s *Service) find(ctx context.Context, id uint) (*models.Inquiry, error) {
	inq, err := s.inquiries.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, utils.NotFound("Inquiry not found")
	}
	if err != nil {
		return nil, utils.Persistence("load inquiry", err)
	}
	return inq, nil
}
