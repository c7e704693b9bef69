package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/contracttest"
)

func TestContract_MemoryStore(t *testing.T) {
	contracttest.RunStore(t, func(t *testing.T) (contracttest.Store, func()) {
		t.Helper()
		s := NewStore()
		return contracttest.Store{Tx: s, Users: s.Users(), Donors: s.Donors()}, nil
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	u := &entity.User{Email: "copy@example.com", City: "Lagos"}
	require.NoError(t, s.Users().Create(ctx, u))
	lat := 6.5
	require.NoError(t, s.Donors().Create(ctx, &entity.Donor{UserID: u.ID, BloodGroup: "O+", Latitude: &lat}))

	got, err := s.Donors().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	*got.Latitude = 99
	got.BloodGroup = "changed"

	again, err := s.Donors().GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "O+", again.BloodGroup)
	assert.InDelta(t, 6.5, *again.Latitude, 1e-9)
}

func TestStore_DonorRequiresOwner(t *testing.T) {
	s := NewStore()
	err := s.Donors().Create(context.Background(), &entity.Donor{UserID: "ghost", BloodGroup: "O+"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_ConcurrentRegistrationsKeepEmailUnique(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.RunInTx(ctx, func(st repository.Stores) error {
				return st.Users.Create(ctx, &entity.User{Email: "race@example.com"})
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, created)
}
