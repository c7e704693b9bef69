package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	repo "github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
)

const (
	keyPrefix     = "donors:search:"
	generationKey = keyPrefix + "gen"
)

// DonorSearchCache keeps donor search results in Redis. Entries live under
// the current generation; Invalidate bumps the generation so older entries
// are never read again and expire on their TTL.
type DonorSearchCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewDonorSearchCache(rdb redis.Cmdable, ttl time.Duration) *DonorSearchCache {
	return &DonorSearchCache{rdb: rdb, ttl: ttl}
}

func (c *DonorSearchCache) Get(ctx context.Context, f repo.DonorFilter) ([]entity.PublicDonorView, int64, bool, error) {
	gen, err := helpers.RedisGetInt64(ctx, c.rdb, generationKey)
	if err != nil {
		return nil, 0, false, fmt.Errorf("read cache generation: %w", err)
	}
	var views []entity.PublicDonorView
	found, err := helpers.RedisGetJSON(ctx, c.rdb, entryKey(gen, f), &views)
	if err != nil || !found {
		return nil, gen, false, err
	}
	if views == nil {
		views = []entity.PublicDonorView{}
	}
	return views, gen, true, nil
}

func (c *DonorSearchCache) Set(ctx context.Context, f repo.DonorFilter, gen int64, views []entity.PublicDonorView) error {
	return helpers.RedisSetJSON(ctx, c.rdb, entryKey(gen, f), views, c.ttl)
}

func (c *DonorSearchCache) Invalidate(ctx context.Context) error {
	_, err := helpers.RedisBump(ctx, c.rdb, generationKey)
	return err
}

// entryKey hashes the filter; city is folded since matching ignores case.
func entryKey(gen int64, f repo.DonorFilter) string {
	sum := sha256.Sum256([]byte(f.BloodGroup + "\x00" + strings.ToLower(f.City)))
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, hex.EncodeToString(sum[:12]))
}
