package repository

import (
	"context"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
)

// DonorFilter narrows a donor search. Empty fields are not applied.
type DonorFilter struct {
	BloodGroup string // exact, case-sensitive
	City       string // case-insensitive substring of the owner's city
}

// DonorRepository defines storage operations for donor records.
type DonorRepository interface {
	// Create stores a donor record. Returns ErrDonorExists when the user
	// already owns one.
	Create(ctx context.Context, d *entity.Donor) error
	GetByUserID(ctx context.Context, userID string) (*entity.Donor, error)
	// GetListing loads a donor with its owner by donor id, without any
	// visibility gate.
	GetListing(ctx context.Context, donorID string) (*entity.DonorListing, error)
	Update(ctx context.Context, d *entity.Donor) error
	// Search returns searchable donors (available and consenting) matching
	// the filter, in insertion order.
	Search(ctx context.Context, f DonorFilter) ([]entity.DonorListing, error)
}
