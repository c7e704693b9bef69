package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/pkg/metrics"
)

// DonorService answers public donor queries.
type DonorService struct {
	Donors  repo.DonorRepository
	Cache   SearchCache
	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

func NewDonorService(donors repo.DonorRepository, cache SearchCache, logger *logrus.Logger, m *metrics.Metrics) *DonorService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DonorService{Donors: donors, Cache: cache, Logger: logger, Metrics: m}
}

// Search returns public views of available, consenting donors matching f,
// in registration order. The result is never nil.
func (s *DonorService) Search(ctx context.Context, f repo.DonorFilter) ([]entity.PublicDonorView, error) {
	useCache := s.Cache != nil
	var gen int64
	if useCache {
		views, g, ok, err := s.Cache.Get(ctx, f)
		switch {
		case err != nil:
			s.Metrics.IncSideEffectFailure("cache")
			s.Logger.WithError(err).Warn("donor search cache read failed")
			useCache = false
		case ok:
			s.Metrics.IncSearch(f.BloodGroup != "", f.City != "", true)
			return views, nil
		}
		gen = g
	}

	listings, err := s.Donors.Search(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("search donors: %w", err)
	}
	views := make([]entity.PublicDonorView, 0, len(listings))
	for _, l := range listings {
		views = append(views, l.PublicView(true))
	}
	s.Metrics.IncSearch(f.BloodGroup != "", f.City != "", false)

	if useCache {
		if err := s.Cache.Set(ctx, f, gen, views); err != nil {
			s.Metrics.IncSideEffectFailure("cache")
			s.Logger.WithError(err).Warn("donor search cache write failed")
		}
	}
	return views, nil
}

// GetByID returns the public view of one donor without coordinates. Unlike
// Search it does not require the donor to be available or consenting.
func (s *DonorService) GetByID(ctx context.Context, donorID string) (*entity.PublicDonorView, error) {
	l, err := s.Donors.GetListing(ctx, donorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("load donor: %w", err)
	}
	v := l.PublicView(false)
	return &v, nil
}
