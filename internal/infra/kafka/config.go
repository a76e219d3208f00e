package kafka

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// Config 生產者設定
type Config struct {
	Brokers []string
	Topic   string

	// 生產者配置
	RequiredAcks int
	BatchSize    int
	BatchTimeout time.Duration
	WriteTimeout time.Duration

	// 重試
	RetryAttempts int
	RetryDelay    time.Duration

	// 分區策略, nil 使用 Hash, 相同 key 進同一分區
	Balancer kafka.Balancer
}

func (c *Config) GetBalancer() kafka.Balancer {
	if c.Balancer != nil {
		return c.Balancer
	}
	return &kafka.Hash{}
}

func DefaultConfig() *Config {
	return &Config{
		RequiredAcks:  -1, // 等待所有副本確認
		BatchSize:     100,
		BatchTimeout:  50 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    200 * time.Millisecond,
	}
}

func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return ErrInvalidateParameter
	}
	for _, b := range c.Brokers {
		if b == "" {
			return ErrInvalidateParameter
		}
	}
	if c.Topic == "" {
		return ErrInvalidateParameter
	}
	if c.BatchSize <= 0 || c.RetryAttempts < 0 {
		return ErrInvalidateParameter
	}
	return nil
}
