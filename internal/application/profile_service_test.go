package application_test

import (
	"context"
	"testing"

	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
)

func registerDonor(t *testing.T, e *env, email string) *entity.User {
	t.Helper()
	in := donorInput(email, "Lagos", "O+", true, false)
	in.Donor.LastDonationDate = "2024-01-15"
	in.Donor.Latitude = ptr(6.5)
	in.Donor.Longitude = ptr(3.3)
	u, err := e.auth.Register(context.Background(), in)
	require.NoError(t, err)
	return u
}

func TestGetProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	donor := registerDonor(t, e, "p1@x.com")
	plain, err := e.auth.Register(ctx, application.RegisterInput{Email: "p2@x.com", Password: "pw", City: "Kano"})
	require.NoError(t, err)

	p, err := e.profile.GetProfile(ctx, donor.ID)
	require.NoError(t, err)
	require.NotNil(t, p.Donor)
	assert.Equal(t, "O+", p.Donor.BloodGroup)

	p, err = e.profile.GetProfile(ctx, plain.ID)
	require.NoError(t, err)
	assert.Nil(t, p.Donor)
	assert.Equal(t, "Kano", p.User.City)

	_, err = e.profile.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, application.ErrUnknownSubject)
}

func TestUpdateProfile_MergePatchTouchesOnlyGivenFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := registerDonor(t, e, "merge@x.com")

	p, err := e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{ConsentToContact: ptr(true)},
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", p.User.FirstName)
	assert.Equal(t, "Lagos", p.User.City)
	require.NotNil(t, p.Donor)
	assert.True(t, p.Donor.ConsentToContact)
	assert.Equal(t, "O+", p.Donor.BloodGroup)
	assert.True(t, p.Donor.AvailableForDonation)
	assert.Equal(t, "2024-01-15", *p.Donor.LastDonated())
	assert.Equal(t, &[2]float64{6.5, 3.3}, p.Donor.Coordinates())

	stored, err := e.profile.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Donor.ConsentToContact, stored.Donor.ConsentToContact)
	assert.Equal(t, []map[string]string{{"consentToContact": "true"}}, e.notifier.updates)
}

func TestUpdateProfile_UserFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := registerDonor(t, e, "user@x.com")

	p, err := e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		City:        ptr("Ibadan"),
		PhoneNumber: ptr("+234999"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ibadan", p.User.City)
	assert.Equal(t, "+234999", p.User.PhoneNumber)
	assert.Equal(t, "Obi", p.User.LastName)

	reloaded, err := e.store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ibadan", reloaded.City)
	assert.Equal(t, u.PasswordHash, reloaded.PasswordHash)
	assert.Equal(t, u.Email, reloaded.Email)
}

func TestUpdateProfile_Coordinates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := registerDonor(t, e, "coords@x.com")

	p, err := e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{Latitude: nullable.NewNullableWithValue(7.0)},
	})
	require.NoError(t, err)
	assert.Equal(t, &[2]float64{7.0, 3.3}, p.Donor.Coordinates())

	p, err = e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{Longitude: nullable.NewNullNullable[float64]()},
	})
	require.NoError(t, err)
	assert.Nil(t, p.Donor.Longitude)
	require.NotNil(t, p.Donor.Latitude)
	assert.Nil(t, p.Donor.Coordinates())

	p, err = e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{Longitude: nullable.NewNullableWithValue(0.0)},
	})
	require.NoError(t, err)
	assert.Equal(t, &[2]float64{7.0, 0}, p.Donor.Coordinates(), "zero is a real coordinate")
}

func TestUpdateProfile_LastDonationDate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := registerDonor(t, e, "date@x.com")

	p, err := e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{LastDonationDate: nullable.NewNullableWithValue("not-a-date")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", *p.Donor.LastDonated(), "unparsable date leaves the value unchanged")

	p, err = e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{LastDonationDate: nullable.NewNullableWithValue("2025-03-01")},
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", *p.Donor.LastDonated())

	p, err = e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{LastDonationDate: nullable.NewNullNullable[string]()},
	})
	require.NoError(t, err)
	assert.Nil(t, p.Donor.LastDonationDate)
}

func TestUpdateProfile_BecomeDonor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.auth.Register(ctx, application.RegisterInput{Email: "late@x.com", Password: "pw", City: "Jos"})
	require.NoError(t, err)

	p, err := e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		IsDonor: ptr(true),
		Donor: application.DonorPatch{
			BloodGroup:           ptr("B+"),
			AvailableForDonation: ptr(true),
			ConsentToContact:     ptr(true),
			LastDonationDate:     nullable.NewNullableWithValue("garbage"),
			Latitude:             nullable.NewNullableWithValue(9.9),
			Longitude:            nullable.NewNullableWithValue(8.8),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, p.Donor)
	assert.Equal(t, "B+", p.Donor.BloodGroup)
	assert.Nil(t, p.Donor.LastDonationDate)
	assert.Equal(t, &[2]float64{9.9, 8.8}, p.Donor.Coordinates())

	res, err := e.donors.Search(ctx, repoFilter("B+", ""))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, p.Donor.ID, res[0].ID)
}

func TestUpdateProfile_BecomeDonorWithoutGroupRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u, err := e.auth.Register(ctx, application.RegisterInput{Email: "rb@x.com", Password: "pw", FirstName: "Old"})
	require.NoError(t, err)

	_, err = e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		FirstName: ptr("New"),
		IsDonor:   ptr(true),
	})
	assert.ErrorIs(t, err, application.ErrBloodGroupRequired)

	p, err := e.profile.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", p.User.FirstName)
	assert.Nil(t, p.Donor)
	assert.Empty(t, e.notifier.updates)
}

func TestUpdateProfile_IsDonorFalseNeverDeletes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := registerDonor(t, e, "keep@x.com")

	p, err := e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{IsDonor: ptr(false)})
	require.NoError(t, err)
	require.NotNil(t, p.Donor)
	assert.Equal(t, "O+", p.Donor.BloodGroup)
}

func TestUpdateProfile_IsDonorTrueWithExistingRecordPatches(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := registerDonor(t, e, "again@x.com")
	before, err := e.profile.GetProfile(ctx, u.ID)
	require.NoError(t, err)

	p, err := e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		IsDonor: ptr(true),
		Donor:   application.DonorPatch{BloodGroup: ptr("AB+")},
	})
	require.NoError(t, err)
	assert.Equal(t, before.Donor.ID, p.Donor.ID)
	assert.Equal(t, "AB+", p.Donor.BloodGroup)
}

func TestUpdateProfile_BlankBloodGroupRejected(t *testing.T) {
	e := newEnv(t)
	u := registerDonor(t, e, "blank@x.com")

	_, err := e.profile.UpdateProfile(context.Background(), u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{BloodGroup: ptr(" ")},
	})
	assert.ErrorIs(t, err, application.ErrBloodGroupRequired)
}

func TestUpdateProfile_InvalidatesSearchCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := registerDonor(t, e, "cache@x.com")

	res, err := e.donors.Search(ctx, repoFilter("O+", ""))
	require.NoError(t, err)
	assert.Empty(t, res, "consent is still false")

	_, err = e.profile.UpdateProfile(ctx, u.ID, application.UpdateProfileInput{
		Donor: application.DonorPatch{ConsentToContact: ptr(true)},
	})
	require.NoError(t, err)

	res, err = e.donors.Search(ctx, repoFilter("O+", ""))
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	e := newEnv(t)
	_, err := e.profile.UpdateProfile(context.Background(), "missing", application.UpdateProfileInput{City: ptr("x")})
	assert.ErrorIs(t, err, application.ErrUnknownSubject)
}
