package logger

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/infra/kafka"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type captureProducer struct {
	msgs []kafka.Message
	err  error
}

func (c *captureProducer) Produce(ctx context.Context, msgs []kafka.Message) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func (c *captureProducer) Close() error { return nil }

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNewTeesIntoExtraWriters(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", "storefront", &buf)

	l.Info().Msg("dropped")
	l.Warn().Str("k", "v").Msg("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "storefront", line["moduler"])
	require.Equal(t, "v", line["k"])
}

func TestKafkaWriter(t *testing.T) {
	p := &captureProducer{}
	w := NewKafkaWriter(p)

	n, err := w.Write([]byte(`{"level":"info"}`))
	require.NoError(t, err)
	require.Equal(t, 16, n)
	_, err = w.Write([]byte(`{"level":"warn"}`))
	require.NoError(t, err)

	require.Len(t, p.msgs, 2)
	require.EqualValues(t, 1, binary.BigEndian.Uint64(p.msgs[0].Key))
	require.EqualValues(t, 2, binary.BigEndian.Uint64(p.msgs[1].Key))
	require.Equal(t, `{"level":"warn"}`, string(p.msgs[1].Value))

	p.err = errors.New("broker down")
	n, err = w.Write([]byte("x"))
	require.Error(t, err)
	require.Zero(t, n)
}
