package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oapi-codegen/nullable"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
	"github.com/oksasatya/blood-donor-registry/pkg/metrics"
)

// ProfileService reads and merge-patches a user's own profile.
type ProfileService struct {
	Users  repo.UserRepository
	Donors repo.DonorRepository
	Tx     repo.Transactor
	Logger *logrus.Logger

	after afterCommit
}

func NewProfileService(users repo.UserRepository, donors repo.DonorRepository, tx repo.Transactor, hooks Hooks, logger *logrus.Logger, m *metrics.Metrics) *ProfileService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProfileService{
		Users:  users,
		Donors: donors,
		Tx:     tx,
		Logger: logger,
		after:  afterCommit{hooks: hooks, donors: donors, logger: logger, metrics: m},
	}
}

// Profile is a user with its donor record, if any.
type Profile struct {
	User  entity.User
	Donor *entity.Donor
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	p := &Profile{User: *u}
	d, err := s.Donors.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		p.Donor = d
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("load donor: %w", err)
	}
	return p, nil
}

// DonorPatch carries donor fields of a profile update. Nil pointers and
// unspecified nullables leave the stored value alone; an explicit null
// clears it.
type DonorPatch struct {
	BloodGroup           *string
	LastDonationDate     nullable.Nullable[string]
	AvailableForDonation *bool
	ConsentToContact     *bool
	Latitude             nullable.Nullable[float64]
	Longitude            nullable.Nullable[float64]
}

type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
	City        *string
	// IsDonor=true creates a donor record when none exists. false is a no-op.
	IsDonor *bool
	Donor   DonorPatch
}

// UpdateProfile applies in to the user's profile in one transaction and
// returns the result.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*Profile, error) {
	if in.Donor.BloodGroup != nil && strings.TrimSpace(*in.Donor.BloodGroup) == "" {
		return nil, ErrBloodGroupRequired
	}

	var (
		out          Profile
		changes      = map[string]string{}
		donorTouched bool
	)
	err := s.Tx.RunInTx(ctx, func(st repo.Stores) error {
		u, err := st.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUnknownSubject
			}
			return err
		}
		if applyUserPatch(u, in, changes) {
			if err := st.Users.Update(ctx, u); err != nil {
				return err
			}
		}
		out.User = *u

		d, err := st.Donors.GetByUserID(ctx, userID)
		switch {
		case err == nil:
			if applyDonorPatch(d, in.Donor, changes) {
				if err := st.Donors.Update(ctx, d); err != nil {
					return err
				}
				donorTouched = true
			}
			out.Donor = d
		case errors.Is(err, repo.ErrNotFound):
			if in.IsDonor == nil || !*in.IsDonor {
				return nil
			}
			d, err := createDonor(ctx, st.Donors, userID, in.Donor.fields())
			if err != nil {
				return err
			}
			changes["isDonor"] = "true"
			changes["bloodGroup"] = d.BloodGroup
			donorTouched = true
			out.Donor = d
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": userID, "changed": len(changes)}).Info("profile updated")
	// owner name, phone and city are part of the public listing too
	if out.Donor != nil && (donorTouched || len(changes) > 0) {
		s.after.donorChanged(ctx, out.Donor.ID)
	}
	s.after.profileUpdated(ctx, out.User, changes)
	return &out, nil
}

func applyUserPatch(u *entity.User, in UpdateProfileInput, changes map[string]string) bool {
	changed := false
	set := func(dst *string, v *string, key string) {
		if v == nil {
			return
		}
		if *dst != *v {
			changes[key] = *v
		}
		*dst = *v
		changed = true
	}
	set(&u.FirstName, in.FirstName, "firstName")
	set(&u.LastName, in.LastName, "lastName")
	set(&u.PhoneNumber, in.PhoneNumber, "phoneNumber")
	set(&u.City, in.City, "city")
	return changed
}

func applyDonorPatch(d *entity.Donor, p DonorPatch, changes map[string]string) bool {
	changed := false
	if p.BloodGroup != nil {
		if d.BloodGroup != *p.BloodGroup {
			changes["bloodGroup"] = *p.BloodGroup
		}
		d.BloodGroup = *p.BloodGroup
		changed = true
	}
	if p.LastDonationDate.IsSpecified() {
		if p.LastDonationDate.IsNull() {
			d.LastDonationDate = nil
			changes["lastDonationDate"] = "cleared"
			changed = true
		} else if date, ok := helpers.ParseDonationDate(p.LastDonationDate.MustGet()); ok {
			d.LastDonationDate = date
			changes["lastDonationDate"] = date.Format(entity.DateLayout)
			changed = true
		}
	}
	if p.AvailableForDonation != nil {
		if d.AvailableForDonation != *p.AvailableForDonation {
			changes["availableForDonation"] = strconv.FormatBool(*p.AvailableForDonation)
		}
		d.AvailableForDonation = *p.AvailableForDonation
		changed = true
	}
	if p.ConsentToContact != nil {
		if d.ConsentToContact != *p.ConsentToContact {
			changes["consentToContact"] = strconv.FormatBool(*p.ConsentToContact)
		}
		d.ConsentToContact = *p.ConsentToContact
		changed = true
	}
	if patchCoordinate(&d.Latitude, p.Latitude) {
		changes["latitude"] = coordinateText(d.Latitude)
		changed = true
	}
	if patchCoordinate(&d.Longitude, p.Longitude) {
		changes["longitude"] = coordinateText(d.Longitude)
		changed = true
	}
	return changed
}

func patchCoordinate(dst **float64, v nullable.Nullable[float64]) bool {
	if !v.IsSpecified() {
		return false
	}
	if v.IsNull() {
		*dst = nil
		return true
	}
	f := v.MustGet()
	*dst = &f
	return true
}

func coordinateText(f *float64) string {
	if f == nil {
		return "cleared"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// fields converts a patch into creation fields; unspecified and null values
// become zero values.
func (p DonorPatch) fields() DonorFields {
	f := DonorFields{}
	if p.BloodGroup != nil {
		f.BloodGroup = *p.BloodGroup
	}
	if p.LastDonationDate.IsSpecified() && !p.LastDonationDate.IsNull() {
		f.LastDonationDate = p.LastDonationDate.MustGet()
	}
	if p.AvailableForDonation != nil {
		f.AvailableForDonation = *p.AvailableForDonation
	}
	if p.ConsentToContact != nil {
		f.ConsentToContact = *p.ConsentToContact
	}
	if p.Latitude.IsSpecified() && !p.Latitude.IsNull() {
		v := p.Latitude.MustGet()
		f.Latitude = &v
	}
	if p.Longitude.IsSpecified() && !p.Longitude.IsNull() {
		v := p.Longitude.MustGet()
		f.Longitude = &v
	}
	return f
}
