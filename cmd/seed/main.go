package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/config"
	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/container"
	pginfra "github.com/oksasatya/blood-donor-registry/internal/infrastructure/postgres"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
)

const demoPassword = "password123"

func f64(v float64) *float64 { return &v }

// demoUsers covers each search outcome: visible donors in two cities, a donor
// hidden by the consent gate and a plain user.
func demoUsers() []application.RegisterInput {
	donor := func(email, first, last, phone, city, group, lastDonation string, available, consent bool, lat, lng *float64) application.RegisterInput {
		return application.RegisterInput{
			Email: email, Password: demoPassword,
			FirstName: first, LastName: last, PhoneNumber: phone, City: city,
			IsDonor: true,
			Donor: application.DonorFields{
				BloodGroup:           group,
				LastDonationDate:     lastDonation,
				AvailableForDonation: available,
				ConsentToContact:     consent,
				Latitude:             lat,
				Longitude:            lng,
			},
		}
	}
	return []application.RegisterInput{
		donor("amaka@example.com", "Amaka", "Eze", "+2348030000001", "Lagos", "O+", "2024-05-10", true, true, f64(6.5244), f64(3.3792)),
		donor("tunde@example.com", "Tunde", "Bakare", "+2348030000002", "Lagos Island", "A+", "", true, true, nil, nil),
		donor("halima@example.com", "Halima", "Musa", "+2348030000003", "Abuja", "O+", "2023-11-02", true, true, f64(9.0765), f64(7.3986)),
		donor("chidi@example.com", "Chidi", "Okafor", "+2348030000004", "Enugu", "B-", "", true, false, nil, nil),
		{
			Email: "visitor@example.com", Password: demoPassword,
			FirstName: "Ngozi", LastName: "Ade", PhoneNumber: "+2348030000005", City: "Ibadan",
		},
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	// seeding should not enqueue welcome emails
	cfg.MailSendEnabled = false
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("STORE_DRIVER=memory: seeded data will not outlive this process")
	} else if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	ctx := context.Background()
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build application")
	}
	defer c.Close()

	if err := seed(ctx, c.AuthSvc, demoUsers(), logger); err != nil {
		logger.WithError(err).Error("seed failed")
		c.Close()
		os.Exit(1)
	}
}

// seed registers every input, skipping accounts that already exist.
func seed(ctx context.Context, auth *application.AuthService, users []application.RegisterInput, logger *logrus.Logger) error {
	for _, in := range users {
		u, err := auth.Register(ctx, in)
		switch {
		case errors.Is(err, application.ErrDuplicateEmail):
			logger.WithField("email", in.Email).Info("already seeded")
		case err != nil:
			return err
		default:
			logger.WithFields(logrus.Fields{"id": u.ID, "email": u.Email, "donor": in.IsDonor}).Info("seeded user")
		}
	}
	logger.WithField("password", demoPassword).Info("seed complete")
	return nil
}
