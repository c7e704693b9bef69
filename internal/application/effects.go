package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/pkg/metrics"
)

// afterCommit runs the best-effort side effects of a committed write.
// Failures are logged and counted, never returned.
type afterCommit struct {
	hooks   Hooks
	donors  repo.DonorRepository
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// donorChanged drops cached searches and re-indexes the user's donor record.
func (a *afterCommit) donorChanged(ctx context.Context, donorID string) {
	if a.hooks.Cache != nil {
		if err := a.hooks.Cache.Invalidate(ctx); err != nil {
			a.fail("cache", "invalidate donor search cache failed", err, logrus.Fields{"donor_id": donorID})
		}
	}
	if a.hooks.Indexer == nil || donorID == "" {
		return
	}
	l, err := a.donors.GetListing(ctx, donorID)
	if err != nil {
		a.fail("index", "load donor for indexing failed", err, logrus.Fields{"donor_id": donorID})
		return
	}
	if err := a.hooks.Indexer.IndexDonor(ctx, *l); err != nil {
		a.fail("index", "index donor failed", err, logrus.Fields{"donor_id": donorID})
	}
}

func (a *afterCommit) welcome(ctx context.Context, u entity.User, d *entity.Donor) {
	if a.hooks.Notifier == nil {
		return
	}
	if err := a.hooks.Notifier.Welcome(ctx, u, d); err != nil {
		a.fail("email", "queue welcome email failed", err, logrus.Fields{"user_id": u.ID})
	}
}

func (a *afterCommit) profileUpdated(ctx context.Context, u entity.User, changes map[string]string) {
	if a.hooks.Notifier == nil || len(changes) == 0 {
		return
	}
	if err := a.hooks.Notifier.ProfileUpdated(ctx, u, changes); err != nil {
		a.fail("email", "queue profile updated email failed", err, logrus.Fields{"user_id": u.ID})
	}
}

func (a *afterCommit) fail(kind, msg string, err error, fields logrus.Fields) {
	a.metrics.IncSideEffectFailure(kind)
	a.logger.WithError(err).WithFields(fields).Warn(msg)
}
