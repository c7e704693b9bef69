package repository

import "context"

// Stores groups the repositories bound to a single transaction.
type Stores struct {
	Users  UserRepository
	Donors DonorRepository
}

// Transactor runs fn atomically: either every write made through the given
// stores is committed, or none is.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(s Stores) error) error
}
