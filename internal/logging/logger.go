package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"aoqbot/internal/config"

	"github.com/rs/zerolog"
)

// New собирает zerolog-логгер по настройкам конфига.
// Пустые поля дают JSON, уровень info, вывод в stdout.
func New(cfg config.LoggingConfig, app config.AppConfig) (*zerolog.Logger, io.Closer, error) {
	output, closer, err := selectOutput(cfg)
	if err != nil {
		return nil, nil, err
	}

	if norm(cfg.Format) == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	base := zerolog.New(output).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", app.Name).
		Str("env", app.Environment).
		Str("version", app.Version).
		Logger()

	return &base, closer, nil
}

func parseLevel(raw string) zerolog.Level {
	if parsed, err := zerolog.ParseLevel(norm(raw)); err == nil {
		return parsed
	}
	return zerolog.InfoLevel
}

func selectOutput(cfg config.LoggingConfig) (io.Writer, io.Closer, error) {
	switch norm(cfg.Output) {
	case "stderr":
		return os.Stderr, nil, nil
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging.output=file requires logging.file_path")
		}
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return file, file, nil
	default:
		return os.Stdout, nil, nil
	}
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
