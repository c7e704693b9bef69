package entity

import "time"

// DateLayout is the calendar-date format used on the wire for donation dates.
const DateLayout = "2006-01-02"

// Donor holds donor attributes owned by exactly one User.
// BloodGroup is a free-form code; it is not checked against a fixed set.
type Donor struct {
	ID                   string
	UserID               string
	BloodGroup           string
	LastDonationDate     *time.Time
	AvailableForDonation bool
	ConsentToContact     bool
	Latitude             *float64
	Longitude            *float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Searchable reports whether the donor may appear in public search results.
func (d Donor) Searchable() bool {
	return d.AvailableForDonation && d.ConsentToContact
}

// Coordinates returns the [lat, lng] pair only when both are set.
func (d Donor) Coordinates() *[2]float64 {
	if d.Latitude == nil || d.Longitude == nil {
		return nil
	}
	return &[2]float64{*d.Latitude, *d.Longitude}
}

// LastDonated returns the formatted last donation date, or nil when unknown.
func (d Donor) LastDonated() *string {
	if d.LastDonationDate == nil {
		return nil
	}
	s := d.LastDonationDate.Format(DateLayout)
	return &s
}

// DonorListing is a donor joined with the owner fields needed for public views.
type DonorListing struct {
	Donor Donor
	Owner User
}

// PublicDonorView is the public-safe projection of a donor.
type PublicDonorView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	BloodGroup    string      `json:"bloodGroup"`
	Location      string      `json:"location"`
	LastDonated   *string     `json:"lastDonated,omitempty"`
	ContactNumber string      `json:"contactNumber"`
	Available     bool        `json:"available"`
	Coordinates   *[2]float64 `json:"coordinates,omitempty"`
}

// PublicView projects the listing. Coordinates are included only when
// withCoordinates is set and both latitude and longitude are present.
func (l DonorListing) PublicView(withCoordinates bool) PublicDonorView {
	v := PublicDonorView{
		ID:            l.Donor.ID,
		Name:          l.Owner.DisplayName(),
		BloodGroup:    l.Donor.BloodGroup,
		Location:      l.Owner.City,
		LastDonated:   l.Donor.LastDonated(),
		ContactNumber: l.Owner.PhoneNumber,
		Available:     l.Donor.AvailableForDonation,
	}
	if withCoordinates {
		v.Coordinates = l.Donor.Coordinates()
	}
	return v
}
