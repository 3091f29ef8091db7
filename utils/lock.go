package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VehicleLock serializes reservation creation per vehicle. The engine's
// availability check is read-then-insert; holding this lock across both
// steps is what prevents two concurrent bookings from double-booking the
// same dates.
type VehicleLock struct {
	Redis *redis.Client
}

func NewVehicleLock(redisClient *redis.Client) *VehicleLock {
	return &VehicleLock{Redis: redisClient}
}

// releaseScript deletes the lock key only when it still holds our token, so
// an expired lock reacquired by another request is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func lockKey(vehicleID string) string {
	return fmt.Sprintf("lock:vehicle:%s", vehicleID)
}

// Acquire takes the per-vehicle lock, retrying briefly before giving up.
// The returned token must be passed back to Release.
func (l *VehicleLock) Acquire(ctx context.Context, vehicleID string, ttl time.Duration) (string, error) {
	token, err := GenerateCode(8)
	if err != nil {
		return "", err
	}

	key := lockKey(vehicleID)
	for attempt := 0; attempt < 5; attempt++ {
		ok, err := l.Redis.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(50 * time.Millisecond << attempt):
		}
	}

	return "", fmt.Errorf("vehicle %s is locked by another request", vehicleID)
}

func (l *VehicleLock) Release(ctx context.Context, vehicleID, token string) error {
	return releaseScript.Run(ctx, l.Redis, []string{lockKey(vehicleID)}, token).Err()
}
