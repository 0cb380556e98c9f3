package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	uploadIPWindow   = time.Minute
	uploadUserWindow = 24 * time.Hour
)

// UploadLimiter caps resume uploads per IP per minute and per user per day
// with a redis sliding window. Without a client every upload is allowed.
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int
	maxPerDay    int
	now          func() time.Time
}

// KEYS[1] = window key
// ARGV[1] = limit, ARGV[2] = window seconds, ARGV[3] = now (unix millis)
// Returns 1 when the upload is admitted.
var uploadWindowScript = goredis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window * 1000)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`)

// NewUploadLimiter creates an upload limiter. client may be nil.
// Defaults: 10 uploads/min per IP, 50 uploads/day per user.
func NewUploadLimiter(client *goredis.Client, perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		client:       client,
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		now:          time.Now,
	}
}

// AllowUpload reports whether ip/userID may upload now, and if not how many
// seconds to wait. Redis errors deny the upload.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	if ul == nil || ul.client == nil {
		return true, 0, nil
	}

	now := ul.now().UnixMilli()

	allowed, err := ul.admit(ctx, "rl:upload:ip:"+ip, ul.maxPerMinute, uploadIPWindow, now)
	if err != nil {
		return false, int(uploadIPWindow.Seconds()), err
	}
	if !allowed {
		return false, int(uploadIPWindow.Seconds()), nil
	}

	if userID == "" {
		return true, 0, nil
	}
	allowed, err = ul.admit(ctx, "rl:upload:user:"+userID, ul.maxPerDay, uploadUserWindow, now)
	if err != nil {
		return false, 3600, err
	}
	if !allowed {
		return false, 3600, nil
	}
	return true, 0, nil
}

func (ul *UploadLimiter) admit(ctx context.Context, key string, limit int, window time.Duration, now int64) (bool, error) {
	result, err := uploadWindowScript.Run(ctx, ul.client, []string{key}, limit, int(window.Seconds()), now).Int64()
	if err != nil {
		return false, fmt.Errorf("upload limit check: %w", err)
	}
	return result == 1, nil
}
