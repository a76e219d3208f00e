package redis_repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPending = "pending"
	// DefaultPendingTTL 處理中標記的存活時間, 行程中途結束時 key 會自行過期
	DefaultPendingTTL = time.Minute
)

/*
結帳冪等鍵
key 不存在: 寫入 pending 並取得執行權
key 為 pending: 相同請求仍在處理
key 為數字: 已完成, 值為 orderID
pending 使用較短的 pendingTTL, 完成後改用 ttl
*/
type IdempotencyRedisRepo struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

type IdempotencyOption func(*IdempotencyRedisRepo)

func WithPendingTTL(d time.Duration) IdempotencyOption {
	return func(r *IdempotencyRedisRepo) {
		if d > 0 {
			r.pendingTTL = d
		}
	}
}

func NewIdempotencyRedisRepo(client *redis.Client, ttl time.Duration, opts ...IdempotencyOption) *IdempotencyRedisRepo {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	r := &IdempotencyRedisRepo{client: client, ttl: ttl, pendingTTL: DefaultPendingTTL}
	for _, opt := range opts {
		opt(r)
	}
	if r.pendingTTL > r.ttl {
		r.pendingTTL = r.ttl
	}
	return r
}

func (r *IdempotencyRedisRepo) redisKey(key string) string {
	return fmt.Sprintf("checkout:idempotency:%s", key)
}

func (r *IdempotencyRedisRepo) Claim(ctx context.Context, key string) (int64, bool, error) {
	const claimScript = `
    local current = redis.call('GET', KEYS[1])
    if not current then
        redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
        return {1, ''}
    end
    return {0, current}
    `

	result, err := r.client.Eval(ctx, claimScript, []string{r.redisKey(key)}, idempotencyPending, r.pendingTTL.Milliseconds()).Slice()
	if err != nil {
		return 0, false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if len(result) != 2 {
		return 0, false, fmt.Errorf("unexpected claim result: %v", result)
	}

	claimed, ok := result[0].(int64)
	if !ok {
		return 0, false, fmt.Errorf("unexpected result type: %T", result[0])
	}
	if claimed == 1 {
		return 0, true, nil
	}

	current, _ := result[1].(string)
	if current == idempotencyPending {
		return 0, false, nil
	}
	orderID, err := strconv.ParseInt(current, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value %q: %w", current, err)
	}
	return orderID, false, nil
}

func (r *IdempotencyRedisRepo) Complete(ctx context.Context, key string, orderID int64) error {
	return r.client.Set(ctx, r.redisKey(key), strconv.FormatInt(orderID, 10), r.ttl).Err()
}

func (r *IdempotencyRedisRepo) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.redisKey(key)).Err()
}
