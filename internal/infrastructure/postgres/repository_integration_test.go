//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/contracttest"
	"github.com/oksasatya/blood-donor-registry/internal/infrastructure/postgres"
	"github.com/oksasatya/blood-donor-registry/pkg/testutil/containers"
)

func TestContract_PostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.NewPostgresContainer(t)

	contracttest.RunStore(t, func(t *testing.T) (contracttest.Store, func()) {
		t.Helper()
		require.NoError(t, pg.TruncateTables(context.Background(), "donors", "users"))
		return contracttest.Store{
			Tx:     postgres.NewTransactor(pg.Pool),
			Users:  postgres.NewUserRepository(pg.Pool),
			Donors: postgres.NewDonorRepository(pg.Pool),
		}, nil
	})
}
