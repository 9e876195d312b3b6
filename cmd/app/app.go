package main

import (
	"github.com/dar44/reserva-municipal-sub001/internal/booking"
	"github.com/dar44/reserva-municipal-sub001/internal/config"
	"github.com/dar44/reserva-municipal-sub001/internal/conflict"
	"github.com/dar44/reserva-municipal-sub001/internal/course"
	"github.com/dar44/reserva-municipal-sub001/internal/coursebooking"
	"github.com/dar44/reserva-municipal-sub001/internal/db"
	"github.com/dar44/reserva-municipal-sub001/internal/email"
	"github.com/dar44/reserva-municipal-sub001/internal/logger"
	"github.com/dar44/reserva-municipal-sub001/internal/mq"
	"github.com/dar44/reserva-municipal-sub001/internal/notify"
	"github.com/dar44/reserva-municipal-sub001/internal/payment"
	"github.com/dar44/reserva-municipal-sub001/internal/provider"
	"github.com/dar44/reserva-municipal-sub001/internal/server"
	"github.com/dar44/reserva-municipal-sub001/internal/user"
	"github.com/dar44/reserva-municipal-sub001/internal/venue"
	"github.com/jmoiron/sqlx"
)

// app holds the wired services shared by the commands.
type app struct {
	email     *email.Service
	publisher *mq.Publisher

	users          user.Service
	venues         venue.Service
	courses        course.Service
	bookings       booking.Service
	courseBookings coursebooking.Service
	payments       payment.Service
}

func newApp(cfg *config.Config, database *sqlx.DB) (*app, error) {
	a := &app{}

	a.email = email.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)

	var pub notify.Publisher
	if cfg.AMQPURL != "" {
		p, err := mq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			a.email.Close()
			return nil, err
		}
		a.publisher = p
		pub = p
		logger.Info("Event publisher connected", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP_URL not set, domain events disabled")
	}

	notifier := notify.NewService(pub, a.email, notify.NewRecipientStore(database))

	providerClient := provider.New(provider.Config{
		BaseURL:       cfg.PaymentAPIURL,
		APIKey:        cfg.PaymentAPIKey,
		StoreID:       cfg.PaymentStoreID,
		VariantID:     cfg.PaymentVariantID,
		WebhookSecret: cfg.PaymentWebhookSecret,
		RedirectURL:   cfg.PaymentRedirectURL,
		Timeout:       cfg.PaymentTimeout,
	})

	txRunner := db.NewVenueTxRunner(database)
	venueRepo := venue.NewRepository(database)
	courseRepo := course.NewRepository(database)

	a.users = user.NewService(user.NewRepository(database), cfg.JWTSecret)
	a.venues = venue.NewService(venueRepo)
	a.courses = course.NewService(courseRepo)
	a.bookings = booking.NewService(
		booking.NewRepository(database),
		venueRepo,
		txRunner,
		conflict.NewSQLChecker,
		a.email,
	)
	a.courseBookings = coursebooking.NewService(
		coursebooking.NewRepository(database),
		courseRepo,
		venueRepo,
		txRunner,
		conflict.NewSQLChecker,
		notifier,
	)
	a.payments = payment.NewService(payment.NewRepository(database), providerClient, notifier, cfg.PaymentTimeout)

	return a, nil
}

func (a *app) handlers() server.Handlers {
	return server.Handlers{
		User:          user.NewHandler(a.users),
		Venue:         venue.NewHandler(a.venues),
		Course:        course.NewHandler(a.courses),
		Booking:       booking.NewHandler(a.bookings),
		CourseBooking: coursebooking.NewHandler(a.courseBookings),
		Payment:       payment.NewHandler(a.payments),
	}
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Warn("Failed to close event publisher", "error", err)
		}
	}
	if err := a.email.Close(); err != nil {
		logger.Warn("Failed to close email service", "error", err)
	}
}
