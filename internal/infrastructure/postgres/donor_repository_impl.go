package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
)

const donorColumns = `d.id, d.user_id, d.blood_group, d.last_donation_date, d.available_for_donation,
	d.consent_to_contact, d.latitude, d.longitude, d.created_at, d.updated_at`

const listingColumns = donorColumns + `,
	u.id, u.email, u.first_name, u.last_name, u.phone_number, u.city, u.created_at, u.updated_at`

type DonorRepository struct {
	db DBTX
}

func NewDonorRepository(db DBTX) *DonorRepository {
	return &DonorRepository{db: db}
}

func (r *DonorRepository) Create(ctx context.Context, d *entity.Donor) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO donors (id, user_id, blood_group, last_donation_date, available_for_donation,
			consent_to_contact, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, d.ID, d.UserID, d.BloodGroup, d.LastDonationDate, d.AvailableForDonation,
		d.ConsentToContact, d.Latitude, d.Longitude)

	if err := row.Scan(&d.CreatedAt, &d.UpdatedAt); err != nil {
		if isUniqueViolation(err, "donors_user_id_unique") {
			return repository.ErrDonorExists
		}
		return fmt.Errorf("insert donor: %w", err)
	}
	return nil
}

func (r *DonorRepository) GetByUserID(ctx context.Context, userID string) (*entity.Donor, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+donorColumns+` FROM donors d WHERE d.user_id = $1`, userID)
	d := &entity.Donor{}
	if err := row.Scan(donorDest(d)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *DonorRepository) GetListing(ctx context.Context, donorID string) (*entity.DonorListing, error) {
	if _, err := uuid.Parse(donorID); err != nil {
		return nil, repository.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM donors d
		JOIN users u ON u.id = d.user_id
		WHERE d.id = $1
	`, donorID)

	l := &entity.DonorListing{}
	if err := row.Scan(listingDest(l)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *DonorRepository) Update(ctx context.Context, d *entity.Donor) error {
	d.UpdatedAt = time.Now().UTC()

	res, err := r.db.Exec(ctx, `
		UPDATE donors
		SET blood_group = $1, last_donation_date = $2, available_for_donation = $3,
			consent_to_contact = $4, latitude = $5, longitude = $6, updated_at = $7
		WHERE id = $8
	`, d.BloodGroup, d.LastDonationDate, d.AvailableForDonation, d.ConsentToContact,
		d.Latitude, d.Longitude, d.UpdatedAt, d.ID)
	if err != nil {
		return fmt.Errorf("update donor: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DonorRepository) Search(ctx context.Context, f repository.DonorFilter) ([]entity.DonorListing, error) {
	where := []string{"d.available_for_donation", "d.consent_to_contact"}
	args := []any{}
	if f.BloodGroup != "" {
		args = append(args, f.BloodGroup)
		where = append(where, "d.blood_group = $"+strconv.Itoa(len(args)))
	}
	if f.City != "" {
		args = append(args, containsPattern(f.City))
		where = append(where, "u.city ILIKE $"+strconv.Itoa(len(args))+` ESCAPE '\'`)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+listingColumns+`
		FROM donors d
		JOIN users u ON u.id = d.user_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY d.seq
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("search donors: %w", err)
	}
	defer rows.Close()

	out := make([]entity.DonorListing, 0)
	for rows.Next() {
		var l entity.DonorListing
		if err := rows.Scan(listingDest(&l)...); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func donorDest(d *entity.Donor) []any {
	return []any{&d.ID, &d.UserID, &d.BloodGroup, &d.LastDonationDate, &d.AvailableForDonation,
		&d.ConsentToContact, &d.Latitude, &d.Longitude, &d.CreatedAt, &d.UpdatedAt}
}

func listingDest(l *entity.DonorListing) []any {
	u := &l.Owner
	return append(donorDest(&l.Donor),
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.City, &u.CreatedAt, &u.UpdatedAt)
}

var _ repository.DonorRepository = (*DonorRepository)(nil)
