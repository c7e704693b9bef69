package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/memory"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
	"github.com/oksasatya/blood-donor-registry/pkg/metrics"
)

const testSecret = "test-secret"

// memCache is a generation-scoped SearchCache held in a map.
type memCache struct {
	mu      sync.Mutex
	gen     int64
	entries map[int64]map[repo.DonorFilter][]entity.PublicDonorView
	sets    int
	failGet error
}

func newMemCache() *memCache {
	return &memCache{entries: map[int64]map[repo.DonorFilter][]entity.PublicDonorView{}}
}

func (c *memCache) Get(_ context.Context, f repo.DonorFilter) ([]entity.PublicDonorView, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet != nil {
		return nil, 0, false, c.failGet
	}
	v, ok := c.entries[c.gen][f]
	return v, c.gen, ok, nil
}

func (c *memCache) Set(_ context.Context, f repo.DonorFilter, gen int64, views []entity.PublicDonorView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[gen] == nil {
		c.entries[gen] = map[repo.DonorFilter][]entity.PublicDonorView{}
	}
	c.entries[gen][f] = views
	c.sets++
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return nil
}

type recordingIndexer struct {
	mu      sync.Mutex
	indexed []entity.DonorListing
}

func (x *recordingIndexer) IndexDonor(_ context.Context, l entity.DonorListing) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.indexed = append(x.indexed, l)
	return nil
}

type welcomeCall struct {
	User  entity.User
	Donor *entity.Donor
}

type recordingNotifier struct {
	welcomes []welcomeCall
	updates  []map[string]string
	err      error
}

func (n *recordingNotifier) Welcome(_ context.Context, u entity.User, d *entity.Donor) error {
	n.welcomes = append(n.welcomes, welcomeCall{User: u, Donor: d})
	return n.err
}

func (n *recordingNotifier) ProfileUpdated(_ context.Context, _ entity.User, changes map[string]string) error {
	n.updates = append(n.updates, changes)
	return n.err
}

var errQueueDown = errors.New("queue down")

type env struct {
	store    *memory.Store
	auth     *application.AuthService
	profile  *application.ProfileService
	donors   *application.DonorService
	jwt      *helpers.JWTManager
	cache    *memCache
	indexer  *recordingIndexer
	notifier *recordingNotifier
	logs     *test.Hook
	metrics  *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store := memory.NewStore()
	jwt := helpers.NewJWTManager(testSecret, time.Hour)
	m := metrics.New()
	e := &env{
		store:    store,
		jwt:      jwt,
		cache:    newMemCache(),
		indexer:  &recordingIndexer{},
		notifier: &recordingNotifier{},
		logs:     hook,
		metrics:  m,
	}
	hooks := application.Hooks{Cache: e.cache, Indexer: e.indexer, Notifier: e.notifier}
	e.auth = application.NewAuthService(store.Users(), store.Donors(), store, jwt, hooks, logger, m)
	e.profile = application.NewProfileService(store.Users(), store.Donors(), store, hooks, logger, m)
	e.donors = application.NewDonorService(store.Donors(), e.cache, logger, m)
	return e
}

func ptr[T any](v T) *T { return &v }

func donorInput(email, city, group string, available, consent bool) application.RegisterInput {
	return application.RegisterInput{
		Email:       email,
		Password:    "pw123",
		FirstName:   "Ada",
		LastName:    "Obi",
		PhoneNumber: "+2348000000001",
		City:        city,
		IsDonor:     true,
		Donor: application.DonorFields{
			BloodGroup:           group,
			AvailableForDonation: available,
			ConsentToContact:     consent,
		},
	}
}
