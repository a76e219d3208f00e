package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisClient 介面定義
type RedisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RsTokenBucket 多個實例共用的 token bucket, 狀態放在 redis hash
type RsTokenBucket struct {
	LimiterConfig
	client RedisClient
}

func NewRsTokenBucket(client RedisClient, config *LimiterConfig) *RsTokenBucket {
	rb := &RsTokenBucket{
		client: client,
	}

	if config != nil {
		rb.LimiterConfig = config.normalize()
	} else {
		rb.LimiterConfig = GetDefaultLimiterConfig()
	}

	return rb
}

const tokenBucketScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])

	-- key 不存在, 以滿容量初始化
	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
	end

	local elapsedSeconds = math.max(0, now - lastRefill) / 1000
	currentTokens = math.min(capacity, currentTokens + elapsedSeconds * rate)

	local allowed = 0
	if currentTokens >= 1 then
		currentTokens = currentTokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'tokens', tostring(currentTokens), 'last_refill', now)
	redis.call('EXPIRE', key, 60)
	return allowed
`

// Allow redis 失敗時放行, 限流不應該讓服務不可用
func (r *RsTokenBucket) Allow(ctx context.Context) bool {
	result, err := r.client.Eval(
		ctx,
		tokenBucketScript,
		[]string{"ratelimit:" + r.Key},
		r.Capacity,
		r.RatePS,
		time.Now().UnixMilli(),
	).Int64()
	if err != nil {
		log.Warn().Err(err).Str("key", r.Key).Msg("redis token bucket eval failed")
		return true
	}

	return result == 1
}

var _ Limiter = (*RsTokenBucket)(nil)
