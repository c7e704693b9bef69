// Package contracttest holds behavior checks shared by every store adapter.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
)

// Store bundles the adapter under test.
type Store struct {
	Tx     repository.Transactor
	Users  repository.UserRepository
	Donors repository.DonorRepository
}

type StoreFactory func(t *testing.T) (Store, func())

var errBoom = errors.New("boom")

func ptr[T any](v T) *T { return &v }

// RunStore runs the repository contract against a fresh store per subtest.
func RunStore(t *testing.T, newStore StoreFactory) {
	t.Helper()

	run := func(name string, fn func(t *testing.T, s Store)) {
		t.Run(name, func(t *testing.T) {
			s, cleanup := newStore(t)
			if cleanup != nil {
				t.Cleanup(cleanup)
			}
			fn(t, s)
		})
	}

	run("create and lookup user", func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("ada@example.com", "Lagos")
		require.NoError(t, s.Users.Create(ctx, u))
		require.NotEmpty(t, u.ID)

		byID, err := s.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, byID.Email)
		assert.Equal(t, u.PasswordHash, byID.PasswordHash)

		byEmail, err := s.Users.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = s.Users.GetByEmail(ctx, "ADA@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = s.Users.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	run("duplicate email is rejected, case-sensitive", func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Users.Create(ctx, newUser("dup@example.com", "Abuja")))

		err := s.Users.Create(ctx, newUser("dup@example.com", "Kano"))
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

		assert.NoError(t, s.Users.Create(ctx, newUser("Dup@example.com", "Kano")))
	})

	run("update user", func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("upd@example.com", "Lagos")
		require.NoError(t, s.Users.Create(ctx, u))

		u.City = "Ibadan"
		u.PhoneNumber = "+234111"
		require.NoError(t, s.Users.Update(ctx, u))

		got, err := s.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ibadan", got.City)
		assert.Equal(t, "+234111", got.PhoneNumber)

		missing := newUser("nobody@example.com", "x")
		missing.ID = uuid.NewString()
		assert.ErrorIs(t, s.Users.Update(ctx, missing), repository.ErrNotFound)
	})

	run("one donor record per user", func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("donor@example.com", "Lagos")
		require.NoError(t, s.Users.Create(ctx, u))

		date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		d := &entity.Donor{UserID: u.ID, BloodGroup: "O+", LastDonationDate: &date,
			AvailableForDonation: true, ConsentToContact: true, Latitude: ptr(6.5), Longitude: ptr(3.3)}
		require.NoError(t, s.Donors.Create(ctx, d))
		require.NotEmpty(t, d.ID)

		err := s.Donors.Create(ctx, &entity.Donor{UserID: u.ID, BloodGroup: "A+"})
		assert.ErrorIs(t, err, repository.ErrDonorExists)

		got, err := s.Donors.GetByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, d.ID, got.ID)
		assert.Equal(t, "O+", got.BloodGroup)
		require.NotNil(t, got.LastDonationDate)
		assert.Equal(t, "2024-01-15", got.LastDonationDate.Format(entity.DateLayout))
		require.NotNil(t, got.Latitude)
		assert.InDelta(t, 6.5, *got.Latitude, 1e-9)
	})

	run("update donor keeps unrelated fields", func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("patch@example.com", "Lagos")
		require.NoError(t, s.Users.Create(ctx, u))
		d := &entity.Donor{UserID: u.ID, BloodGroup: "B+", AvailableForDonation: true, Latitude: ptr(1.0)}
		require.NoError(t, s.Donors.Create(ctx, d))

		d.ConsentToContact = true
		d.Latitude = nil
		require.NoError(t, s.Donors.Update(ctx, d))

		got, err := s.Donors.GetByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "B+", got.BloodGroup)
		assert.True(t, got.ConsentToContact)
		assert.True(t, got.AvailableForDonation)
		assert.Nil(t, got.Latitude)
	})

	run("search applies gate and filters in insertion order", func(t *testing.T, s Store) {
		ctx := context.Background()
		a := seedDonor(t, s, "a@example.com", "Lagos", "O+", true, true)
		b := seedDonor(t, s, "b@example.com", "Lagos Island", "A+", true, true)
		seedDonor(t, s, "c@example.com", "Lagos", "O+", true, false)
		seedDonor(t, s, "d@example.com", "Lagos", "O+", false, true)
		e := seedDonor(t, s, "e@example.com", "Abuja", "O+", true, true)

		all, err := s.Donors.Search(ctx, repository.DonorFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b, e}, donorIDs(all))

		byGroup, err := s.Donors.Search(ctx, repository.DonorFilter{BloodGroup: "O+"})
		require.NoError(t, err)
		assert.Equal(t, []string{a, e}, donorIDs(byGroup))

		lower, err := s.Donors.Search(ctx, repository.DonorFilter{BloodGroup: "o+"})
		require.NoError(t, err)
		assert.Empty(t, lower)

		byCity, err := s.Donors.Search(ctx, repository.DonorFilter{City: "lag"})
		require.NoError(t, err)
		assert.Equal(t, []string{a, b}, donorIDs(byCity))

		both, err := s.Donors.Search(ctx, repository.DonorFilter{BloodGroup: "A+", City: "ISLAND"})
		require.NoError(t, err)
		assert.Equal(t, []string{b}, donorIDs(both))

		for _, l := range all {
			assert.True(t, l.Donor.Searchable())
			assert.NotEmpty(t, l.Owner.City)
		}
	})

	run("search city treats wildcards literally", func(t *testing.T, s Store) {
		ctx := context.Background()
		seedDonor(t, s, "w1@example.com", "Port_Harcourt", "O+", true, true)
		seedDonor(t, s, "w2@example.com", "PortXHarcourt", "O+", true, true)

		got, err := s.Donors.Search(ctx, repository.DonorFilter{City: "t_h"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Port_Harcourt", got[0].Owner.City)

		none, err := s.Donors.Search(ctx, repository.DonorFilter{City: "%"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	run("listing lookup bypasses the gate", func(t *testing.T, s Store) {
		ctx := context.Background()
		hidden := seedDonor(t, s, "hidden@example.com", "Kano", "AB-", false, false)

		l, err := s.Donors.GetListing(ctx, hidden)
		require.NoError(t, err)
		assert.Equal(t, "AB-", l.Donor.BloodGroup)
		assert.Equal(t, "Kano", l.Owner.City)

		_, err = s.Donors.GetListing(ctx, uuid.NewString())
		assert.ErrorIs(t, err, repository.ErrNotFound)
		_, err = s.Donors.GetListing(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	run("transaction commits user and donor together", func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("tx@example.com", "Lagos")
		err := s.Tx.RunInTx(ctx, func(st repository.Stores) error {
			if err := st.Users.Create(ctx, u); err != nil {
				return err
			}
			return st.Donors.Create(ctx, &entity.Donor{UserID: u.ID, BloodGroup: "O-"})
		})
		require.NoError(t, err)

		_, err = s.Users.GetByEmail(ctx, "tx@example.com")
		require.NoError(t, err)
		_, err = s.Donors.GetByUserID(ctx, u.ID)
		require.NoError(t, err)
	})

	run("failed transaction leaves no partial write", func(t *testing.T, s Store) {
		ctx := context.Background()
		u := newUser("partial@example.com", "Lagos")
		err := s.Tx.RunInTx(ctx, func(st repository.Stores) error {
			if err := st.Users.Create(ctx, u); err != nil {
				return err
			}
			if err := st.Donors.Create(ctx, &entity.Donor{UserID: u.ID, BloodGroup: "O-"}); err != nil {
				return err
			}
			return errBoom
		})
		require.ErrorIs(t, err, errBoom)

		_, err = s.Users.GetByEmail(ctx, "partial@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		all, err := s.Donors.Search(ctx, repository.DonorFilter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func newUser(email, city string) *entity.User {
	return &entity.User{
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FirstName:    "Test",
		LastName:     "User",
		PhoneNumber:  "+2348000000000",
		City:         city,
	}
}

func seedDonor(t *testing.T, s Store, email, city, group string, available, consent bool) string {
	t.Helper()
	ctx := context.Background()
	u := newUser(email, city)
	require.NoError(t, s.Users.Create(ctx, u))
	d := &entity.Donor{UserID: u.ID, BloodGroup: group, AvailableForDonation: available, ConsentToContact: consent}
	require.NoError(t, s.Donors.Create(ctx, d))
	return d.ID
}

func donorIDs(ls []entity.DonorListing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Donor.ID)
	}
	return out
}
