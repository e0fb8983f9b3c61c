package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/meinhoongagan/wellness-portal/admin"
	"github.com/meinhoongagan/wellness-portal/auth"
	"github.com/meinhoongagan/wellness-portal/booking"
	"github.com/meinhoongagan/wellness-portal/config"
	"github.com/meinhoongagan/wellness-portal/controllers"
	adminctl "github.com/meinhoongagan/wellness-portal/controllers/admin"
	"github.com/meinhoongagan/wellness-portal/controllers/consumer"
	"github.com/meinhoongagan/wellness-portal/controllers/therapist"
	"github.com/meinhoongagan/wellness-portal/cron"
	"github.com/meinhoongagan/wellness-portal/db"
	"github.com/meinhoongagan/wellness-portal/inquiry"
	"github.com/meinhoongagan/wellness-portal/logger"
	"github.com/meinhoongagan/wellness-portal/middleware"
	"github.com/meinhoongagan/wellness-portal/notify"
	"github.com/meinhoongagan/wellness-portal/redis"
	"github.com/meinhoongagan/wellness-portal/repository"
	"github.com/meinhoongagan/wellness-portal/routes"
	"github.com/meinhoongagan/wellness-portal/utils"
)

const usage = `usage: wellness-portal [command]

commands:
  serve                         run the HTTP API (default)
  migrate                       create or update the database schema
  maintenance <job>             run a data-repair job: sync-therapists, migrate-roles
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogFile, cfg.LogLevel)

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "serve"
	}

	switch cmd {
	case "serve":
		err = serve(cfg)
	case "migrate":
		err = migrate(cfg)
	case "maintenance":
		err = maintenance(cfg, flag.Arg(1))
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logrus.WithError(err).Fatalf("%s failed", cmd)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	gdb, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

func migrate(cfg *config.Config) error {
	if _, err := openDB(cfg); err != nil {
		return err
	}
	logrus.Info("database schema is up to date")
	return nil
}

// maintenance runs one job without an HTTP server or Redis.
func maintenance(cfg *config.Config, job string) error {
	gdb, err := openDB(cfg)
	if err != nil {
		return err
	}
	report, err := admin.NewService(gdb, nil, nil).RunJob(context.Background(), nil, job)
	if err != nil {
		return err
	}
	fmt.Printf("%s: fixed %d, created %d, unchanged %d\n",
		report.Job, report.Fixed, report.Created, len(report.Unchanged))
	for _, u := range report.Unchanged {
		fmt.Println("  unchanged", u)
	}
	return nil
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := openDB(cfg)
	if err != nil {
		return err
	}
	rdb, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	loc := cfg.Location()
	mailer := notify.NewMailer(gdb, utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		From:     cfg.MailFrom,
	})
	notifications := notify.NewService(gdb, mailer, loc)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	accounts := auth.NewService(gdb, issuer, redis.NewSessionStore(rdb), notifications,
		auth.WithResetURL(cfg.ResetURL))

	validator := booking.NewValidator(
		repository.NewAppointmentRepository(gdb),
		repository.NewTherapistRepository(gdb),
		repository.NewServiceRepository(gdb),
		booking.WithLocation(loc),
	)
	bookings := booking.NewService(gdb, validator, notifications)
	inquiries := inquiry.NewService(gdb, notifications)

	var uploader utils.ImageUploader
	if cfg.CloudinaryURL != "" {
		cld, err := utils.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			return err
		}
		uploader = cld
	}
	admins := admin.NewService(gdb, accounts, uploader)

	scheduler := cron.New()
	if cfg.MaintenanceSchedule != "" {
		if err := cron.AddMaintenance(scheduler, cfg.MaintenanceSchedule, admins); err != nil {
			return err
		}
	}
	// Reminders are marked as sent per appointment, so repeated runs are safe.
	if cfg.ReminderSchedule != "" {
		if err := cron.AddReminders(scheduler, cfg.ReminderSchedule, notifications); err != nil {
			return err
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := routes.NewApp(routes.Handlers{
		Protected:     middleware.Protected(issuer, accounts, cfg.CookieSecure),
		Auth:          controllers.NewAuthHandler(accounts, cfg.CookieSecure),
		Catalog:       controllers.NewCatalogHandler(admins, bookings),
		Notifications: controllers.NewNotificationHandler(notifications),
		Appointments:  consumer.NewAppointmentHandler(bookings),
		Inquiries:     consumer.NewInquiryHandler(inquiries),
		Schedule:      therapist.NewScheduleHandler(bookings),
		Admin:         adminctl.NewHandler(admins, bookings, inquiries, notifications),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		logrus.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Error("shutdown failed")
		}
	}()

	logrus.WithField("port", cfg.Port).Info("server starting")
	return app.Listen(":" + cfg.Port)
}
