package logger

import (
	"context"
	"encoding/binary"
	"errors"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kafka"
)

// KafkaWriter 把 zerolog 的輸出送到 kafka topic
type KafkaWriter struct {
	p       kafka.Producer
	timeout time.Duration
	logId   atomic.Int64
}

func NewKafkaWriter(p kafka.Producer) *KafkaWriter {
	if p == nil {
		panic("kafka writer dependency producer is nil")
	}
	return &KafkaWriter{
		p:       p,
		timeout: 5 * time.Second,
	}
}

func (kw *KafkaWriter) Write(p []byte) (n int, err error) {
	if kw == nil {
		return 0, errors.New("kafka writer is not init")
	}

	// 以流水號當 key, 平均分配到各分區
	kbuf := make([]byte, 8)
	binary.BigEndian.PutUint64(kbuf, uint64(kw.logId.Add(1)))

	// zerolog 會重用 buffer
	value := make([]byte, len(p))
	copy(value, p)

	ctx, cancel := context.WithTimeout(context.Background(), kw.timeout)
	defer cancel()
	err = kw.p.Produce(ctx, []kafka.Message{
		{
			Key:   kbuf,
			Value: value,
			Time:  time.Now(),
		},
	})
	if err != nil {
		return 0, err
	}

	return len(p), nil
}

func (kw *KafkaWriter) Close() error {
	return kw.p.Close()
}
