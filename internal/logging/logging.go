package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ppe-gate/config"
)

// Setup настраивает глобальный логгер: консоль, уровень и, если включён, Logdy.
func Setup(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.LogdyEnabled {
		w, url, err := StartLogdy(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Logdy is not available")
		} else {
			out = zerolog.MultiLevelWriter(out, w)
			log.Info().Str("url", url).Msg("Logdy UI available")
		}
	}
	log.Logger = log.Output(out)

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// NewServiceLogger логгер компонента с номером поста.
func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("gate_id", cfg.GateID).Str("service", service).Logger()
}
