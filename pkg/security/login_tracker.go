package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed signins before a block
	AttemptWindow time.Duration // window the failures are counted in
	BlockDuration time.Duration // how long a block lasts
	UseIPTracking bool          // also block the source IP
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		UseIPTracking: true,
	}
}

// LoginTracker counts failed signins in redis and blocks a username (and
// optionally its IP) once the limit is reached. Without a redis client every
// method is a no-op and nothing is ever blocked.
type LoginTracker struct {
	client *goredis.Client
	config LoginTrackerConfig
	logger *SecurityLogger
}

// NewLoginTracker creates a new login tracker. client may be nil.
func NewLoginTracker(client *goredis.Client, config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginTrackerConfig().MaxAttempts
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = DefaultLoginTrackerConfig().AttemptWindow
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = DefaultLoginTrackerConfig().BlockDuration
	}
	return &LoginTracker{
		client: client,
		config: config,
		logger: logger,
	}
}

// Redis key patterns
const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: current count after increment
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

var incrWithTTL = goredis.NewScript(incrWithTTLScript)

// Enabled reports whether attempts are actually tracked.
func (lt *LoginTracker) Enabled() bool {
	return lt != nil && lt.client != nil
}

// IsBlocked reports whether the username or IP is currently blocked.
func (lt *LoginTracker) IsBlocked(ctx context.Context, username, ip string) (bool, error) {
	if !lt.Enabled() {
		return false, nil
	}

	keys := []string{blockedLoginUserPrefix + userKey(username)}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}
	n, err := lt.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return n > 0, nil
}

// RecordFailedAttempt records a failed signin and reports whether it caused a block.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, username, ip, userAgent, requestID string) (bool, int, error) {
	lt.logger.LogLoginFailed(ctx, username, ip, userAgent, requestID, "invalid_credentials")
	if !lt.Enabled() {
		return false, 0, nil
	}

	ttlSeconds := int(lt.config.AttemptWindow.Seconds())

	count, err := lt.atomicIncrement(ctx, failLoginUserPrefix+userKey(username), ttlSeconds)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment user counter: %w", err)
	}
	if lt.config.UseIPTracking && ip != "" {
		_, _ = lt.atomicIncrement(ctx, failLoginIPPrefix+ip, ttlSeconds) // best effort
	}

	if count < lt.config.MaxAttempts {
		return false, count, nil
	}
	if err := lt.createBlock(ctx, username, ip, requestID); err != nil {
		return true, count, fmt.Errorf("failed to create block: %w", err)
	}
	return true, count, nil
}

// ClearAttempts resets the counters after a successful signin.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, username, ip string) error {
	if !lt.Enabled() {
		return nil
	}
	keys := []string{failLoginUserPrefix + userKey(username)}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, failLoginIPPrefix+ip)
	}
	if err := lt.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear attempts: %w", err)
	}
	return nil
}

// BlockTTL returns how long until the username's block expires.
func (lt *LoginTracker) BlockTTL(ctx context.Context, username string) (time.Duration, error) {
	if !lt.Enabled() {
		return 0, nil
	}
	ttl, err := lt.client.TTL(ctx, blockedLoginUserPrefix+userKey(username)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get block TTL: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (lt *LoginTracker) atomicIncrement(ctx context.Context, key string, ttlSeconds int) (int, error) {
	result, err := incrWithTTL.Run(ctx, lt.client, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) createBlock(ctx context.Context, username, ip, requestID string) error {
	if err := lt.client.Set(ctx, blockedLoginUserPrefix+userKey(username), "1", lt.config.BlockDuration).Err(); err != nil {
		return fmt.Errorf("failed to set user block: %w", err)
	}

	if lt.config.UseIPTracking && ip != "" {
		if err := lt.client.Set(ctx, blockedLoginIPPrefix+ip, "1", lt.config.BlockDuration).Err(); err != nil {
			// user is already blocked
			if lt.logger != nil {
				lt.logger.zapLogger.Warn("failed to set IP block", zap.Error(err))
			}
		}
	}

	lt.logger.LogBlockCreated(ctx, SubjectUsername, username, ip, requestID, lt.config.BlockDuration)
	return nil
}

// Usernames are case-sensitive for signin, but hashing keeps raw names out of redis.
func userKey(username string) string {
	return HashValue(strings.TrimSpace(username))
}
