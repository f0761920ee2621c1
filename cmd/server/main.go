package main

import (
	bookinghandler "rentora/internal/bookings/handler"
	bookingrepo "rentora/internal/bookings/repository"
	bookingservice "rentora/internal/bookings/service"
	bookingvalidator "rentora/internal/bookings/validator"
	"rentora/internal/lifecycle"
	notifhandler "rentora/internal/notifications/handler"
	notifrepo "rentora/internal/notifications/repository"
	notifservice "rentora/internal/notifications/service"
	paymenthandler "rentora/internal/payments/handler"
	paymentrepo "rentora/internal/payments/repository"
	paymentservice "rentora/internal/payments/service"
	paymentvalidator "rentora/internal/payments/validator"
	prophandler "rentora/internal/properties/handler"
	proprepo "rentora/internal/properties/repository"
	propservice "rentora/internal/properties/service"
	propvalidator "rentora/internal/properties/validator"
	rentalhandler "rentora/internal/rentals/handler"
	rentalrepo "rentora/internal/rentals/repository"
	rentalservice "rentora/internal/rentals/service"
	"rentora/pkg/app"
	"rentora/pkg/config"
	"rentora/pkg/kafka"
	kafka_config "rentora/pkg/kafka/config"

	"github.com/joho/godotenv"
)

const ServiceName = "rentora"

func main() {
	_ = godotenv.Load()

	cfg := config.Load(ServiceName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Rentora service")

	notificationService := initNotifications(cfg)

	propRepo := proprepo.NewMongoPropertyRepository(cfg)
	propService := propservice.NewPropertyService(
		propRepo,
		propvalidator.NewPropertyValidator(cfg.Log),
		cfg,
	)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	bookingLockRepo := bookingrepo.NewBookingLockRepository(cfg)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		bookingLockRepo,
		propRepo,
		notificationService,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	rentalRepo := rentalrepo.NewMongoRentalRepository(cfg)
	rentalService := rentalservice.NewRentalService(rentalRepo, cfg)

	coordinator := lifecycle.NewCoordinator(
		bookingRepo,
		rentalRepo,
		propRepo,
		notificationService,
		cfg,
	)

	paymentRepo := paymentrepo.NewMongoPaymentRepository(cfg)
	paymentService := paymentservice.NewPaymentService(
		paymentRepo,
		rentalRepo,
		notificationService,
		paymentvalidator.NewPaymentValidator(cfg.Log),
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		prophandler.NewPropertyHandler(propService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, coordinator, cfg.Log),
		rentalhandler.NewRentalHandler(rentalService, coordinator, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentService, cfg.Log),
		notifhandler.NewNotificationHandler(notificationService, cfg.Log),
	)
	serverApp.Run()
}

func initNotifications(cfg *config.Config) notifservice.NotificationService {
	var publisher notifservice.Publisher
	if cfg.KafkaEnabled {
		producer, err := kafka.NewProducer(kafka_config.Load(), cfg.KafkaTopic, cfg.KafkaDLQTopic)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize Kafka producer", "error", err)
		}
		publisher = producer
		cfg.Log.Info("Kafka notification publisher initialized", "topic", cfg.KafkaTopic)
	} else {
		cfg.Log.Info("Kafka disabled, notifications are in-app only")
	}

	repo := notifrepo.NewMongoNotificationRepository(cfg)
	return notifservice.NewNotificationService(repo, publisher, cfg)
}
