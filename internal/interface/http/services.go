package handlers

//go:generate mockgen -destination=mocks/services_mock.go -package=mocks . AuthService,ProfileService,DonorService

import (
	"context"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
)

// AuthService is the part of application.AuthService the handlers call.
type AuthService interface {
	Register(ctx context.Context, in application.RegisterInput) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*application.LoginResult, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*application.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in application.UpdateProfileInput) (*application.Profile, error)
}

type DonorService interface {
	Search(ctx context.Context, f repository.DonorFilter) ([]entity.PublicDonorView, error)
	GetByID(ctx context.Context, donorID string) (*entity.PublicDonorView, error)
}

var (
	_ AuthService    = (*application.AuthService)(nil)
	_ ProfileService = (*application.ProfileService)(nil)
	_ DonorService   = (*application.DonorService)(nil)
)
