package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New - 서비스 기본 zerolog 로거 생성
// development: debug 레벨 + 콘솔 출력, 그 외: info 레벨 JSON 출력
func New(appEnv string) zerolog.Logger {
	return newWithWriter(appEnv, os.Stdout)
}

func newWithWriter(appEnv string, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	l := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "pet-portrait-server").
		Logger()

	if appEnv == "development" {
		l = l.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return l
}
