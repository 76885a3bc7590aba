package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/meinhoongagan/smart-clinic/config"
	"github.com/meinhoongagan/smart-clinic/controllers"
	"github.com/meinhoongagan/smart-clinic/cron"
	"github.com/meinhoongagan/smart-clinic/db"
	"github.com/meinhoongagan/smart-clinic/docstore"
	"github.com/meinhoongagan/smart-clinic/events"
	"github.com/meinhoongagan/smart-clinic/redis"
	"github.com/meinhoongagan/smart-clinic/repository"
	"github.com/meinhoongagan/smart-clinic/routes"
	"github.com/meinhoongagan/smart-clinic/services"
	"github.com/meinhoongagan/smart-clinic/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return serve(ctx, cfg, log)
		},
	}
}

func serve(parent context.Context, cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.IsDev(), log)
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	mongoClient, mdb, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())
	if err := docstore.EnsureIndexes(ctx, mdb); err != nil {
		return err
	}

	store := repository.NewStore(gdb)
	checks := map[string]controllers.Check{
		"postgres": store.Ping,
		"mongo": func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		},
	}

	var marker cron.Marker
	if cfg.RedisAddr != "" {
		client, err := redis.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer client.Close()
		marker = redis.NewMarker(client, "smart-clinic:")
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing domain events")
	}

	var uploader services.Uploader
	if cfg.CloudinaryEnabled() {
		u, err := utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryUploadPreset)
		if err != nil {
			return fmt.Errorf("cloudinary: %w", err)
		}
		uploader = u
	} else {
		log.Warn().Msg("cloudinary not configured, file uploads are disabled")
	}

	loc := utils.LoadZone(cfg.TimeZone)
	tokens := services.NewTokenService([]byte(cfg.JWTSecret), cfg.JWTExpiration, nil)
	prescriptions := repository.NewPrescriptionRepo(mdb)
	histories := repository.NewMedicalHistoryRepo(mdb)

	app := routes.NewApp(routes.Options{
		Tokens: tokens,
		Handlers: routes.Handlers{
			Auth: controllers.NewAuthController(
				services.NewAuthService(store, tokens, services.BcryptHasher{Cost: cfg.BcryptCost}, log)),
			Appointment: controllers.NewAppointmentController(
				services.NewAppointmentService(store, publisher, nil, log), loc),
			Prescription: controllers.NewPrescriptionController(
				services.NewPrescriptionService(prescriptions, store, nil)),
			MedicalHistory: controllers.NewMedicalHistoryController(
				services.NewMedicalHistoryService(histories, store, nil)),
			File: controllers.NewFileController(
				services.NewFileService(uploader, store, cfg.CloudinaryFolder, nil)),
			Health: controllers.NewHealthController(checks),
		},
		Log:         log,
		CORSOrigins: cfg.AllowedOrigins(),
		BodyLimit:   10 << 20,
	})

	if cfg.MailEnabled() {
		mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
		reminder := cron.NewReminder(store, mailer, marker, cron.ReminderOptions{
			Lead:     cfg.ReminderLead,
			Location: loc,
		}, log)
		scheduler, err := cron.Start(cfg.ReminderSchedule, reminder, log)
		if err != nil {
			return err
		}
		defer func() { <-scheduler.Stop().Done() }()
	} else {
		log.Warn().Msg("SMTP not configured, appointment reminders are disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	return nil
}
