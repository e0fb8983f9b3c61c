package notify

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/models"
	"github.com/meinhoongagan/wellness-portal/utils"
)

// Mailer delivers an HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer when a host is configured and the logging
// stub otherwise.
func NewMailer(db *gorm.DB, smtp utils.SMTPConfig) Mailer {
	if smtp.Host == "" {
		return &LogMailer{db: db}
	}
	return &SMTPMailer{db: db, smtp: smtp}
}

// LogMailer records emails in email_logs instead of sending them. It always
// reports success.
type LogMailer struct {
	db *gorm.DB
}

func NewLogMailer(db *gorm.DB) *LogMailer {
	return &LogMailer{db: db}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	writeEmailLog(ctx, m.db, models.EmailLog{Recipient: to, Subject: subject, Body: body, Status: "logged"})
	return nil
}

// SMTPMailer sends through an SMTP server and records the outcome.
type SMTPMailer struct {
	db   *gorm.DB
	smtp utils.SMTPConfig
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	entry := models.EmailLog{Recipient: to, Subject: subject, Body: body, Status: "sent"}
	err := utils.SendEmail(m.smtp, to, subject, body)
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()
	}
	writeEmailLog(ctx, m.db, entry)
	return err
}

func writeEmailLog(ctx context.Context, db *gorm.DB, entry models.EmailLog) {
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		logrus.WithError(err).WithField("recipient", entry.Recipient).Error("failed to write email log")
	}
}
