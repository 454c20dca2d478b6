// Пакет config — загрузка и валидация конфигурации Planner Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Planner Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимальное число соединений в пуле
	DBMaxConns int32

	// --- Аутентификация ---

	// Ключ шифрования cookie-сессий (пустой — случайный ключ на время жизни процесса)
	SessionSecret string
	// Секрет подписи API-токенов (HS256)
	TokenSecret string
	// Предыдущий секрет подписи (принимается при проверке во время ротации)
	TokenPreviousSecret string
	// Время жизни API-токена и сессии
	TokenTTL time.Duration
	// Secure flag для cookie (true за HTTPS)
	SecureCookie bool

	// --- Мониторинг ---

	// Группа topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration

	// --- Календарь ---

	// Количество лет, хранимых в кэше праздников
	HolidayCacheSize int
	// Количество недель на одной странице планировщика
	PlannerWeeks int

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// PL_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("PL_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("PL_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PL_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// PL_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("PL_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("PL_LOG_LEVEL: %w", err)
	}

	// PL_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("PL_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("PL_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("PL_DB_HOST")
	if err != nil {
		return nil, err
	}

	cfg.DBPort, err = getEnvInt("PL_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("PL_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("PL_DB_NAME")
	if err != nil {
		return nil, err
	}

	cfg.DBUser, err = getEnvRequired("PL_DB_USER")
	if err != nil {
		return nil, err
	}

	cfg.DBPassword, err = getEnvRequired("PL_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("PL_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("PL_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// PL_DB_MAX_CONNS — размер пула (по умолчанию 10)
	maxConns, err := getEnvInt("PL_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("PL_DB_MAX_CONNS: %w", err)
	}
	if maxConns < 1 || maxConns > 100 {
		return nil, fmt.Errorf("PL_DB_MAX_CONNS: значение %d вне допустимого диапазона 1-100", maxConns)
	}
	cfg.DBMaxConns = int32(maxConns)

	// --- Аутентификация ---

	cfg.SessionSecret = getEnvDefault("PL_SESSION_SECRET", "")

	// PL_TOKEN_SECRET — обязательный, минимум 32 символа
	cfg.TokenSecret, err = getEnvRequired("PL_TOKEN_SECRET")
	if err != nil {
		return nil, err
	}
	if len(cfg.TokenSecret) < 32 {
		return nil, fmt.Errorf("PL_TOKEN_SECRET: длина %d меньше 32 символов", len(cfg.TokenSecret))
	}

	// PL_TOKEN_PREVIOUS_SECRET — опциональный, токены с ним только проверяются
	cfg.TokenPreviousSecret = getEnvDefault("PL_TOKEN_PREVIOUS_SECRET", "")
	if cfg.TokenPreviousSecret != "" && len(cfg.TokenPreviousSecret) < 32 {
		return nil, fmt.Errorf("PL_TOKEN_PREVIOUS_SECRET: длина %d меньше 32 символов", len(cfg.TokenPreviousSecret))
	}

	cfg.TokenTTL, err = getEnvDuration("PL_TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("PL_TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL < time.Minute {
		return nil, fmt.Errorf("PL_TOKEN_TTL: значение %s меньше 1m", cfg.TokenTTL)
	}

	cfg.SecureCookie, err = getEnvBool("PL_SECURE_COOKIE", false)
	if err != nil {
		return nil, fmt.Errorf("PL_SECURE_COOKIE: %w", err)
	}

	// --- Мониторинг ---

	cfg.DephealthGroup = getEnvDefault("PL_DEPHEALTH_GROUP", "planner")

	cfg.DephealthCheckInterval, err = getEnvDuration("PL_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PL_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Календарь ---

	cfg.HolidayCacheSize, err = getEnvInt("PL_HOLIDAY_CACHE_SIZE", 16)
	if err != nil {
		return nil, fmt.Errorf("PL_HOLIDAY_CACHE_SIZE: %w", err)
	}
	if cfg.HolidayCacheSize < 1 || cfg.HolidayCacheSize > 101 {
		return nil, fmt.Errorf("PL_HOLIDAY_CACHE_SIZE: значение %d вне допустимого диапазона 1-101", cfg.HolidayCacheSize)
	}

	cfg.PlannerWeeks, err = getEnvInt("PL_PLANNER_WEEKS", 4)
	if err != nil {
		return nil, fmt.Errorf("PL_PLANNER_WEEKS: %w", err)
	}
	if cfg.PlannerWeeks < 1 || cfg.PlannerWeeks > 12 {
		return nil, fmt.Errorf("PL_PLANNER_WEEKS: значение %d вне допустимого диапазона 1-12", cfg.PlannerWeeks)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("PL_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("PL_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для лейблов topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// MigrateURL возвращает URL для golang-migrate (драйвер pgx5).
func (c *Config) MigrateURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
