package application

import (
	"context"
	"time"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
)

// TokenIssuer mints identity tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// SearchCache stores projected search results per filter, scoped to a
// generation. Get reports the generation it looked in; Set must be given
// that generation so results computed before an Invalidate are never served
// after it.
type SearchCache interface {
	Get(ctx context.Context, f repo.DonorFilter) (views []entity.PublicDonorView, gen int64, ok bool, err error)
	Set(ctx context.Context, f repo.DonorFilter, gen int64, views []entity.PublicDonorView) error
	Invalidate(ctx context.Context) error
}

// DonorIndexer mirrors donor listings into a secondary search index.
type DonorIndexer interface {
	IndexDonor(ctx context.Context, l entity.DonorListing) error
}

// Notifier queues account emails.
type Notifier interface {
	Welcome(ctx context.Context, u entity.User, d *entity.Donor) error
	ProfileUpdated(ctx context.Context, u entity.User, changes map[string]string) error
}

// Hooks are the optional collaborators run after a write commits. Any of
// them may be nil.
type Hooks struct {
	Cache    SearchCache
	Indexer  DonorIndexer
	Notifier Notifier
}
