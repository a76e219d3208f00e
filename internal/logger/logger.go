package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New 建立 JSON logger, 額外的 writer 會一起輸出 (ex: KafkaWriter)
// 同時設定為全域 logger, service 直接使用 zerolog/log
func New(level string, moduler string, writers ...io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	outs := make([]io.Writer, 0, len(writers)+1)
	outs = append(outs, os.Stdout)
	for _, w := range writers {
		if w != nil {
			outs = append(outs, w)
		}
	}

	var out io.Writer = outs[0]
	if len(outs) > 1 {
		out = zerolog.MultiLevelWriter(outs...)
	}

	l := zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("moduler", moduler).
		Logger()

	log.Logger = l
	return l
}

// ParseLevel 無法解析時回傳 info
func ParseLevel(level string) zerolog.Level {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel
	}
	lv, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lv
}
