package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDonationDate(t *testing.T) {
	got, ok := ParseDonationDate("2024-01-15")
	require.True(t, ok)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *got)

	for _, in := range []string{"", "   ", "15/01/2024", "2024-13-01", "yesterday"} {
		got, ok := ParseDonationDate(in)
		assert.False(t, ok, in)
		assert.Nil(t, got, in)
	}
}
