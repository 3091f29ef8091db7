package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow_WithinLimit(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)
	ctx := context.Background()

	redisMock.ExpectIncr("ratelimit:booking:user:u1").SetVal(1)
	redisMock.ExpectExpire("ratelimit:booking:user:u1", time.Minute).SetVal(true)

	assert.True(t, limiter.allow(ctx, "ratelimit:booking:user:u1", 10, time.Minute))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRateLimiter_Allow_OverLimit(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)
	ctx := context.Background()

	redisMock.ExpectIncr("ratelimit:booking:user:u1").SetVal(11)

	assert.False(t, limiter.allow(ctx, "ratelimit:booking:user:u1", 10, time.Minute))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestRateLimiter_Allow_FailsOpenWhenRedisDown(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)
	ctx := context.Background()

	redisMock.ExpectIncr("ratelimit:booking:user:u1").SetErr(errors.New("connection refused"))

	assert.True(t, limiter.allow(ctx, "ratelimit:booking:user:u1", 10, time.Minute))
}

func TestRateLimiter_Allow_DropsCounterWhenExpireFails(t *testing.T) {
	db, redisMock := redismock.NewClientMock()
	limiter := NewRateLimiter(db)
	ctx := context.Background()

	// A fresh counter whose TTL cannot be set is deleted; otherwise the
	// identity would stay throttled forever once it crossed the limit.
	redisMock.ExpectIncr("ratelimit:booking:user:u1").SetVal(1)
	redisMock.ExpectExpire("ratelimit:booking:user:u1", time.Minute).SetErr(errors.New("connection reset"))
	redisMock.ExpectDel("ratelimit:booking:user:u1").SetVal(1)

	assert.True(t, limiter.allow(ctx, "ratelimit:booking:user:u1", 10, time.Minute))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	suspicious := []string{
		"Googlebot/2.1",
		"my-crawler/1.0",
		"SPIDER agent",
		"price-scraper",
		"Mozilla/5.0 (compatible; bingbot/2.0)",
	}

	for _, ua := range suspicious {
		assert.True(t, isSuspiciousUserAgent(ua), "user agent %q should be flagged", ua)
	}

	legitimate := []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		"curl/8.4.0",
		"",
	}

	for _, ua := range legitimate {
		assert.False(t, isSuspiciousUserAgent(ua), "user agent %q should pass", ua)
	}
}
