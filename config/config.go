package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/inspection"
)

type Config struct {
	// Application
	GateID   string
	LogLevel string
	HTTPPort int // 0 выключает REST

	// Telegram
	TelegramToken string

	// Logdy (встроенный веб-просмотр логов)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// NATS, пустой URL выключает публикацию
	NatsURL            string
	NatsSubject        string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int

	// Хранилища, пустой путь выключает
	DBPath     string
	ArchiveDir string

	// Пост досмотра
	RequiredPPE   entity.RequiredSet
	GateCooldown  time.Duration
	GateIdleReset time.Duration

	// Детектор
	ModelConfig      string
	ModelWeights     string
	DetectConfidence float64
	DetectNMS        float64
	DetectInput      int

	// Повтор записи вместо камеры
	ReplayPath          string
	ReplayMinVisibility float64
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	required, err := entity.ParseRequiredSet(getEnv("REQUIRED_PPE", entity.AllRequired().String()))
	if err != nil {
		return nil, fmt.Errorf("REQUIRED_PPE: %w", err)
	}

	gate := inspection.DefaultGateConfig()
	cfg := &Config{
		GateID:   getEnv("GATE_ID", "gate-01"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "127.0.0.1"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8081),

		NatsURL:            getEnv("NATS_URL", ""),
		NatsSubject:        getEnv("NATS_SUBJECT", "ppe"),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 5*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", 60),

		DBPath:     getEnv("DB_PATH", "ppe-gate.db"),
		ArchiveDir: getEnv("ARCHIVE_DIR", ""),

		RequiredPPE:   required,
		GateCooldown:  getEnvDuration("GATE_COOLDOWN", gate.Cooldown),
		GateIdleReset: getEnvDuration("GATE_IDLE_RESET", gate.IdleReset),

		ModelConfig:      getEnv("MODEL_CONFIG", "model/yolov4-ppe.cfg"),
		ModelWeights:     getEnv("MODEL_WEIGHTS", "model/yolov4-ppe.weights"),
		DetectConfidence: getEnvFloat("DETECT_CONFIDENCE", 0.9),
		DetectNMS:        getEnvFloat("DETECT_NMS", 0.3),
		DetectInput:      getEnvInt("DETECT_INPUT", 416),

		ReplayPath:          getEnv("REPLAY_PATH", ""),
		ReplayMinVisibility: getEnvFloat("REPLAY_MIN_VISIBILITY", 0.5),
	}

	return cfg, nil
}

// Validate отсекает настройки, с которыми пост не может работать.
func (c *Config) Validate() error {
	var errs []error

	if err := c.RequiredPPE.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("REQUIRED_PPE: %w", err))
	}
	if err := c.Gate().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.DetectConfidence <= 0 || c.DetectConfidence >= 1 {
		errs = append(errs, fmt.Errorf("DETECT_CONFIDENCE must be in (0,1), got %v", c.DetectConfidence))
	}
	if c.DetectNMS < 0 || c.DetectNMS > 1 {
		errs = append(errs, fmt.Errorf("DETECT_NMS must be in [0,1], got %v", c.DetectNMS))
	}
	if c.DetectInput <= 0 || c.DetectInput%32 != 0 {
		errs = append(errs, fmt.Errorf("DETECT_INPUT must be a positive multiple of 32, got %d", c.DetectInput))
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort))
	}
	if c.NatsURL != "" && c.NatsSubject == "" {
		errs = append(errs, errors.New("NATS_SUBJECT is required when NATS_URL is set"))
	}

	return errors.Join(errs...)
}

// Gate пороги гейта с таймерами из окружения.
func (c *Config) Gate() inspection.GateConfig {
	g := inspection.DefaultGateConfig()
	g.Cooldown = c.GateCooldown
	g.IdleReset = c.GateIdleReset
	return g
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
