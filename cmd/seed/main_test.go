package main

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/config"
	"github.com/oksasatya/blood-donor-registry/internal/container"
	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
)

func TestSeed_IsRepeatableAndSearchable(t *testing.T) {
	logger, _ := test.NewNullLogger()
	c := container.NewInMemory(&config.Config{JWTSecret: "x", TokenTTL: time.Hour}, logger)
	ctx := context.Background()

	require.NoError(t, seed(ctx, c.AuthSvc, demoUsers(), logger))
	require.NoError(t, seed(ctx, c.AuthSvc, demoUsers(), logger))

	all, err := c.DonorSvc.Search(ctx, repository.DonorFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lagos, err := c.DonorSvc.Search(ctx, repository.DonorFilter{City: "lagos"})
	require.NoError(t, err)
	assert.Len(t, lagos, 2)

	res, err := c.AuthSvc.Login(ctx, "visitor@example.com", demoPassword)
	require.NoError(t, err)
	assert.False(t, res.IsDonor)
}
