package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// VelocityRepository keeps a sliding window of placed orders per client IP in
// a sorted set scored by unix milliseconds.
type VelocityRepository struct {
	client *redis.Client
}

func NewVelocityRepository(client *redis.Client) *VelocityRepository {
	return &VelocityRepository{
		client: client,
	}
}

func velocityKey(ip string) string {
	// key format: "velocity:ip:{ip}"
	return fmt.Sprintf("velocity:ip:%s", ip)
}

func score(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Count returns how many orders the IP placed inside the window ending at now.
// Entries older than the window are pruned on the way.
func (r *VelocityRepository) Count(ctx context.Context, ip string, window time.Duration, now time.Time) (int64, error) {
	key := velocityKey(ip)
	from := score(now.Add(-window))

	var count *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+from)
		count = pipe.ZCount(ctx, key, from, "+inf")
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count velocity window: %w", err)
	}

	return count.Val(), nil
}

func (r *VelocityRepository) Record(ctx context.Context, ip, orderNumber string, window time.Duration, now time.Time) error {
	key := velocityKey(ip)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(now.UnixMilli()),
			Member: orderNumber,
		})
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record order in velocity window: %w", err)
	}

	return nil
}
