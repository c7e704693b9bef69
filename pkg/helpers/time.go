package helpers

import (
	"strings"
	"time"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
)

// ParseDonationDate parses a YYYY-MM-DD calendar date. ok is false for empty
// or unparsable input; callers treat that as "no usable date".
func ParseDonationDate(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	t, err := time.ParseInLocation(entity.DateLayout, s, time.UTC)
	if err != nil {
		return nil, false
	}
	return &t, true
}
