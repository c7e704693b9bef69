package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
)

// Store is an in-memory backing for the user and donor repositories.
// It is safe for concurrent use. Transactions take the write lock for their
// whole duration and work on a copy that replaces the live data on success.
type Store struct {
	mu   sync.RWMutex
	data *dataset
	now  func() time.Time
}

type dataset struct {
	users       map[string]entity.User
	idByEmail   map[string]string
	donors      map[string]entity.Donor
	donorByUser map[string]string
	donorOrder  []string
}

func NewStore() *Store {
	return &Store{
		data: &dataset{
			users:       make(map[string]entity.User),
			idByEmail:   make(map[string]string),
			donors:      make(map[string]entity.Donor),
			donorByUser: make(map[string]string),
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Users returns a UserRepository over the live data.
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

// Donors returns a DonorRepository over the live data.
func (s *Store) Donors() *DonorRepository { return &DonorRepository{store: s} }

func (s *Store) RunInTx(ctx context.Context, fn func(st repository.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	err := fn(repository.Stores{
		Users:  &UserRepository{store: s, tx: work},
		Donors: &DonorRepository{store: s, tx: work},
	})
	if err != nil {
		return err
	}
	s.data = work
	return nil
}

// read runs fn against tx when set, otherwise against live data under a read lock.
func (s *Store) read(tx *dataset, fn func(d *dataset)) {
	if tx != nil {
		fn(tx)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(tx *dataset, fn func(d *dataset) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (d *dataset) clone() *dataset {
	out := &dataset{
		users:       make(map[string]entity.User, len(d.users)),
		idByEmail:   make(map[string]string, len(d.idByEmail)),
		donors:      make(map[string]entity.Donor, len(d.donors)),
		donorByUser: make(map[string]string, len(d.donorByUser)),
		donorOrder:  append([]string(nil), d.donorOrder...),
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.idByEmail {
		out.idByEmail[k] = v
	}
	for k, v := range d.donors {
		out.donors[k] = cloneDonor(v)
	}
	for k, v := range d.donorByUser {
		out.donorByUser[k] = v
	}
	return out
}

func cloneDonor(d entity.Donor) entity.Donor {
	out := d
	if d.LastDonationDate != nil {
		v := *d.LastDonationDate
		out.LastDonationDate = &v
	}
	if d.Latitude != nil {
		v := *d.Latitude
		out.Latitude = &v
	}
	if d.Longitude != nil {
		v := *d.Longitude
		out.Longitude = &v
	}
	return out
}

type UserRepository struct {
	store *Store
	tx    *dataset
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_ = ctx
	return r.store.write(r.tx, func(d *dataset) error {
		if _, ok := d.idByEmail[u.Email]; ok {
			return repository.ErrDuplicateEmail
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		now := r.store.now()
		u.CreatedAt, u.UpdatedAt = now, now
		d.users[u.ID] = *u
		d.idByEmail[u.Email] = u.ID
		return nil
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	_ = ctx
	var (
		out *entity.User
		err = repository.ErrNotFound
	)
	r.store.read(r.tx, func(d *dataset) {
		if u, ok := d.users[id]; ok {
			out, err = &u, nil
		}
	})
	return out, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	_ = ctx
	var (
		out *entity.User
		err = repository.ErrNotFound
	)
	r.store.read(r.tx, func(d *dataset) {
		if id, ok := d.idByEmail[email]; ok {
			u := d.users[id]
			out, err = &u, nil
		}
	})
	return out, err
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	_ = ctx
	return r.store.write(r.tx, func(d *dataset) error {
		existing, ok := d.users[u.ID]
		if !ok {
			return repository.ErrNotFound
		}
		// email and digest are not changed by profile updates
		existing.FirstName = u.FirstName
		existing.LastName = u.LastName
		existing.PhoneNumber = u.PhoneNumber
		existing.City = u.City
		existing.UpdatedAt = r.store.now()
		d.users[u.ID] = existing
		u.UpdatedAt = existing.UpdatedAt
		return nil
	})
}

type DonorRepository struct {
	store *Store
	tx    *dataset
}

func (r *DonorRepository) Create(ctx context.Context, dn *entity.Donor) error {
	_ = ctx
	return r.store.write(r.tx, func(d *dataset) error {
		if _, ok := d.users[dn.UserID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := d.donorByUser[dn.UserID]; ok {
			return repository.ErrDonorExists
		}
		if dn.ID == "" {
			dn.ID = uuid.NewString()
		}
		now := r.store.now()
		dn.CreatedAt, dn.UpdatedAt = now, now
		d.donors[dn.ID] = cloneDonor(*dn)
		d.donorByUser[dn.UserID] = dn.ID
		d.donorOrder = append(d.donorOrder, dn.ID)
		return nil
	})
}

func (r *DonorRepository) GetByUserID(ctx context.Context, userID string) (*entity.Donor, error) {
	_ = ctx
	var (
		out *entity.Donor
		err = repository.ErrNotFound
	)
	r.store.read(r.tx, func(d *dataset) {
		if id, ok := d.donorByUser[userID]; ok {
			dn := cloneDonor(d.donors[id])
			out, err = &dn, nil
		}
	})
	return out, err
}

func (r *DonorRepository) GetListing(ctx context.Context, donorID string) (*entity.DonorListing, error) {
	_ = ctx
	var (
		out *entity.DonorListing
		err = repository.ErrNotFound
	)
	r.store.read(r.tx, func(d *dataset) {
		dn, ok := d.donors[donorID]
		if !ok {
			return
		}
		out = &entity.DonorListing{Donor: cloneDonor(dn), Owner: d.users[dn.UserID]}
		err = nil
	})
	return out, err
}

func (r *DonorRepository) Update(ctx context.Context, dn *entity.Donor) error {
	_ = ctx
	return r.store.write(r.tx, func(d *dataset) error {
		existing, ok := d.donors[dn.ID]
		if !ok {
			return repository.ErrNotFound
		}
		dn.UserID = existing.UserID
		dn.CreatedAt = existing.CreatedAt
		dn.UpdatedAt = r.store.now()
		d.donors[dn.ID] = cloneDonor(*dn)
		return nil
	})
}

func (r *DonorRepository) Search(ctx context.Context, f repository.DonorFilter) ([]entity.DonorListing, error) {
	_ = ctx
	city := strings.ToLower(f.City)
	out := make([]entity.DonorListing, 0)
	r.store.read(r.tx, func(d *dataset) {
		for _, id := range d.donorOrder {
			dn := d.donors[id]
			if !dn.Searchable() {
				continue
			}
			if f.BloodGroup != "" && dn.BloodGroup != f.BloodGroup {
				continue
			}
			owner := d.users[dn.UserID]
			if city != "" && !strings.Contains(strings.ToLower(owner.City), city) {
				continue
			}
			out = append(out, entity.DonorListing{Donor: cloneDonor(dn), Owner: owner})
		}
	})
	return out, nil
}

var (
	_ repository.Transactor      = (*Store)(nil)
	_ repository.UserRepository  = (*UserRepository)(nil)
	_ repository.DonorRepository = (*DonorRepository)(nil)
)
