package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
	"github.com/oksasatya/blood-donor-registry/pkg/metrics"
)

// AuthService owns registration, credential checks and token subjects.
type AuthService struct {
	Users   repo.UserRepository
	Donors  repo.DonorRepository
	Tx      repo.Transactor
	Tokens  TokenIssuer
	Logger  *logrus.Logger
	Metrics *metrics.Metrics

	after afterCommit
}

func NewAuthService(users repo.UserRepository, donors repo.DonorRepository, tx repo.Transactor, tokens TokenIssuer, hooks Hooks, logger *logrus.Logger, m *metrics.Metrics) *AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthService{
		Users:   users,
		Donors:  donors,
		Tx:      tx,
		Tokens:  tokens,
		Logger:  logger,
		Metrics: m,
		after:   afterCommit{hooks: hooks, donors: donors, logger: logger, metrics: m},
	}
}

// DonorFields are the donor attributes supplied when a record is created.
// LastDonationDate is the raw YYYY-MM-DD input; unparsable values are dropped.
type DonorFields struct {
	BloodGroup           string
	LastDonationDate     string
	AvailableForDonation bool
	ConsentToContact     bool
	Latitude             *float64
	Longitude            *float64
}

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	City        string
	IsDonor     bool
	Donor       DonorFields
}

// Register creates the identity and, when IsDonor is set, its donor record
// in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if in.IsDonor && strings.TrimSpace(in.Donor.BloodGroup) == "" {
		return nil, ErrBloodGroupRequired
	}
	// cheap early exit; the unique index still decides races
	if _, err := s.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		City:         in.City,
	}

	var donor *entity.Donor
	err = s.Tx.RunInTx(ctx, func(st repo.Stores) error {
		if err := st.Users.Create(ctx, u); err != nil {
			return err
		}
		if !in.IsDonor {
			return nil
		}
		d, err := createDonor(ctx, st.Donors, u.ID, in.Donor)
		if err != nil {
			return err
		}
		donor = d
		return nil
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	s.Metrics.IncRegistrations()
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "donor": donor != nil}).Info("user registered")
	if donor != nil {
		s.after.donorChanged(ctx, donor.ID)
	}
	s.after.welcome(ctx, *u, donor)
	return u, nil
}

// Authenticate returns the user for a matching email/password pair. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      entity.User
	IsDonor   bool
}

// Login authenticates and issues an identity token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		s.Metrics.IncLogin(false)
		return nil, err
	}
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return nil, fmt.Errorf("issue token: %w", err)
	}
	isDonor, err := hasDonor(ctx, s.Donors, u.ID)
	if err != nil {
		return nil, err
	}
	s.Metrics.IncLogin(true)
	return &LoginResult{Token: token, ExpiresAt: exp, User: *u, IsDonor: isDonor}, nil
}

// ResolveSubject loads the user a verified token refers to.
func (s *AuthService) ResolveSubject(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("resolve subject: %w", err)
	}
	return u, nil
}

func hasDonor(ctx context.Context, donors repo.DonorRepository, userID string) (bool, error) {
	_, err := donors.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("lookup donor: %w", err)
	}
}

// createDonor attaches a new donor record to userID.
func createDonor(ctx context.Context, donors repo.DonorRepository, userID string, f DonorFields) (*entity.Donor, error) {
	if strings.TrimSpace(f.BloodGroup) == "" {
		return nil, ErrBloodGroupRequired
	}
	d := &entity.Donor{
		UserID:               userID,
		BloodGroup:           f.BloodGroup,
		AvailableForDonation: f.AvailableForDonation,
		ConsentToContact:     f.ConsentToContact,
		Latitude:             f.Latitude,
		Longitude:            f.Longitude,
	}
	if date, ok := helpers.ParseDonationDate(f.LastDonationDate); ok {
		d.LastDonationDate = date
	}
	if err := donors.Create(ctx, d); err != nil {
		if errors.Is(err, repo.ErrDonorExists) {
			return nil, ErrDonorAlreadyExists
		}
		return nil, err
	}
	return d, nil
}
